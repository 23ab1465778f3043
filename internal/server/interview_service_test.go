package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-tracker/internal/db"
	"github.com/jonathan/interview-tracker/internal/rounds"
	"github.com/jonathan/interview-tracker/internal/schedule"
)

// testClock lets round and interview services share a movable now.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time   { return c.t }
func (c *testClock) advance(days int) { c.t = c.t.AddDate(0, 0, days) }

func intp(n int) *int { return &n }

func newTestServices(store *memStore) (*RoundService, *InterviewService, *testClock) {
	clock := &testClock{t: serviceNow}
	roundsSvc := NewRoundService(store, schedule.DefaultIntervalDays)
	roundsSvc.now = clock.now
	ivSvc := NewInterviewService(store, roundsSvc)
	ivSvc.now = clock.now
	return roundsSvc, ivSvc, clock
}

func TestStartRound_FirstRound(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)
	require.NotNil(t, iv)

	assert.Equal(t, contact.ID, iv.ContactID)
	assert.Equal(t, interviewer, iv.InterviewerID)
	assert.Equal(t, rounds.InterviewInProgress, iv.Status)
	assert.Equal(t, 1, iv.Stage)
	assert.Equal(t, 0, iv.CurrentQuestionIndex)
	require.NotNil(t, iv.InterviewRoundID)

	// The round set was created lazily by the start.
	all, err := store.ListRounds(context.Background(), contact.ID)
	require.NoError(t, err)
	require.Len(t, all, rounds.NumRounds)
	assert.Equal(t, *iv.InterviewRoundID, all[0].ID)

	updated, err := store.GetContact(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, rounds.StatusRound1, updated.Status)
}

func TestStartRound_ContactMissing(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)

	_, err := svc.StartRound(context.Background(), uuid.New(), 1, uuid.New())
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "contact", nf.Kind)
}

func TestStartRound_InvalidRoundNumber(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	for _, n := range []int{0, 5, -1} {
		_, err := svc.StartRound(context.Background(), contact.ID, n, uuid.New())
		var nf *ErrNotFound
		assert.ErrorAs(t, err, &nf, "round %d", n)
	}
}

func TestStartRound_LaterRoundBlockedWhileEarlierLive(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	_, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	_, err = svc.StartRound(context.Background(), contact.ID, 3, uuid.New())
	require.Error(t, err)

	var ne *ErrRoundNotEligible
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, 3, ne.RoundNumber)
	assert.Equal(t, rounds.RoundPending, ne.Status)
}

func TestStartRound_ResumesLiveInterview(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	first, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)

	second, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "live interview is resumed, not duplicated")

	interviews, err := store.ListInterviews(context.Background(), db.InterviewFilters{InterviewerID: interviewer})
	require.NoError(t, err)
	assert.Len(t, interviews, 1)
}

func TestStartRound_ResumesPausedInterview(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	first, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), first.ID, rounds.InterviewPaused, intp(2), intp(5))
	require.NoError(t, err)

	resumed, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)
	assert.Equal(t, first.ID, resumed.ID)
	assert.Equal(t, rounds.InterviewPaused, resumed.Status)
	assert.Equal(t, 2, resumed.Stage)
	assert.Equal(t, 5, resumed.CurrentQuestionIndex)
}

func TestUpdateStatus_CompletionKeepsNextRoundPendingUntilDate(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	done, err := svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewCompleted, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, rounds.InterviewCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	all, err := store.ListRounds(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, rounds.RoundCompleted, rounds.ByNumber(all, 1).Status)
	// Round 2's date is ninety days out, so it stays pending.
	assert.Equal(t, rounds.RoundPending, rounds.ByNumber(all, 2).Status)

	updated, err := store.GetContact(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, rounds.StatusRound2, updated.Status)
}

func TestUpdateStatus_CompletionActivatesNextRoundWhenDue(t *testing.T) {
	store := newMemStore()
	_, svc, clock := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)

	// Finish round 1 after round 2's scheduled date has already passed.
	clock.advance(120)

	_, err = svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewCompleted, nil, nil)
	require.NoError(t, err)

	all, err := store.ListRounds(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, rounds.RoundCompleted, rounds.ByNumber(all, 1).Status)
	assert.Equal(t, rounds.RoundActive, rounds.ByNumber(all, 2).Status)
	// Round 3 stays pending: its predecessor only just completed and its
	// date has not arrived.
	assert.Equal(t, rounds.RoundPending, rounds.ByNumber(all, 3).Status)

	// Round 2 is now startable.
	iv2, err := svc.StartRound(context.Background(), contact.ID, 2, interviewer)
	require.NoError(t, err)
	assert.NotEqual(t, iv.ID, iv2.ID)
}

func TestFullLifecycle_ContactCompletes(t *testing.T) {
	store := newMemStore()
	_, svc, clock := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	for n := 1; n <= rounds.NumRounds; n++ {
		iv, err := svc.StartRound(context.Background(), contact.ID, n, interviewer)
		require.NoError(t, err, "starting round %d", n)

		clock.advance(100)
		_, err = svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewCompleted, nil, nil)
		require.NoError(t, err, "completing round %d", n)
	}

	updated, err := store.GetContact(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, rounds.StatusCompleted, updated.Status)

	all, err := store.ListRounds(context.Background(), contact.ID)
	require.NoError(t, err)
	for i := range all {
		assert.Equal(t, rounds.RoundCompleted, all[i].Status)
	}
}

func TestUpdateStatus_CompletedInterviewIsFrozen(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewCompleted, nil, nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewInProgress, nil, nil)
	require.Error(t, err)

	var vc *ErrValidationConflict
	assert.ErrorAs(t, err, &vc)
}

func TestUpdateStatus_UnknownInterview(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), rounds.InterviewPaused, nil, nil)
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "interview", nf.Kind)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), rounds.InterviewStatus("abandoned"), nil, nil)
	var ev *ErrValidation
	require.ErrorAs(t, err, &ev)
}

func seedQuestion(t *testing.T, store *memStore, qType string, options []string) *db.Question {
	t.Helper()
	q, err := store.UpsertQuestion(context.Background(), &db.Question{
		Text:    "How is the process going?",
		Type:    qType,
		Stage:   1,
		Options: db.StringArray(options),
		Order:   1,
	})
	require.NoError(t, err)
	return q
}

func TestRecordAnswer(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	question := seedQuestion(t, store, "text", nil)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	resp, err := svc.RecordAnswer(context.Background(), iv.ID, question.ID, json.RawMessage(`"going well"`))
	require.NoError(t, err)
	assert.Equal(t, iv.ID, resp.InterviewID)
	assert.Equal(t, question.ID, resp.QuestionID)

	// Answering the same question again overwrites in place.
	again, err := svc.RecordAnswer(context.Background(), iv.ID, question.ID, json.RawMessage(`"changed my mind"`))
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)
	assert.JSONEq(t, `"changed my mind"`, string(again.Answer))

	count, err := store.CountResponses(context.Background(), iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordAnswer_SchemaMismatch(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	question := seedQuestion(t, store, "scale", nil)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	_, err = svc.RecordAnswer(context.Background(), iv.ID, question.ID, json.RawMessage(`"eleven"`))
	require.Error(t, err)

	var ev *ErrValidation
	require.ErrorAs(t, err, &ev)
	assert.Equal(t, "answer", ev.Field)
}

func TestRecordAnswer_UnknownQuestion(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	_, err = svc.RecordAnswer(context.Background(), iv.ID, uuid.New(), json.RawMessage(`"x"`))
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "question", nf.Kind)
}

func TestGetInterview_NotFound(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)

	_, err := svc.GetInterview(context.Background(), uuid.New())
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)
}

func TestStartRound_ConcurrentStartsCreateOneInterview(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	const workers = 8
	ids := make(chan uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iv, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
			if assert.NoError(t, err) {
				ids <- iv.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uuid.UUID]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1, "every start resolves to the same interview")
	assert.Len(t, store.interviews, 1)
}

// staleLiveStore hides an existing live interview from the first lookups,
// mimicking a reader that raced another session's insert. The embedded store
// handles everything else, including the duplicate-insert rejection.
type staleLiveStore struct {
	db.Store
	misses *int
}

func (s *staleLiveStore) FindLiveInterview(ctx context.Context, contactID, roundID uuid.UUID) (*db.Interview, error) {
	if *s.misses > 0 {
		*s.misses--
		return nil, nil
	}
	return s.Store.FindLiveInterview(ctx, contactID, roundID)
}

func (s *staleLiveStore) InContactTx(ctx context.Context, contactID uuid.UUID, fn func(db.Store) error) error {
	return s.Store.InContactTx(ctx, contactID, func(tx db.Store) error {
		return fn(&staleLiveStore{Store: tx, misses: s.misses})
	})
}

func TestStartRound_ResolvesDuplicateInsertToWinner(t *testing.T) {
	store := newMemStore()
	roundsSvc, svc, clock := newTestServices(store)
	contact := newTestContact(t, store)
	interviewer := uuid.New()

	winner, err := svc.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)

	// The second session's live-interview check comes back empty, so it
	// falls through to the insert and collides with the winner.
	misses := 1
	raced := NewInterviewService(&staleLiveStore{Store: store, misses: &misses}, roundsSvc)
	raced.now = clock.now

	iv, err := raced.StartRound(context.Background(), contact.ID, 1, interviewer)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, iv.ID, "loser resumes the winner's interview")
	assert.Equal(t, 0, misses)
	assert.Len(t, store.interviews, 1)
}

func TestUpdateStatus_ExplicitZeroRewindsProgress(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	moved, err := svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewPaused, intp(2), intp(5))
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Stage)
	assert.Equal(t, 5, moved.CurrentQuestionIndex)

	// Nil leaves progress alone.
	kept, err := svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewInProgress, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, kept.Stage)
	assert.Equal(t, 5, kept.CurrentQuestionIndex)

	// An explicit zero rewinds to the first question.
	rewound, err := svc.UpdateStatus(context.Background(), iv.ID, rounds.InterviewInProgress, intp(1), intp(0))
	require.NoError(t, err)
	assert.Equal(t, 1, rewound.Stage)
	assert.Equal(t, 0, rewound.CurrentQuestionIndex)
}

func TestSubmitFormData(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)

	payload := json.RawMessage(`{"form":"registration","fields":{"consent":true}}`)
	updated, err := svc.SubmitFormData(context.Background(), iv.ID, payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(updated.FormData))

	fetched, err := svc.GetInterview(context.Background(), iv.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(fetched.FormData))
}

func TestSubmitFormData_UnknownInterview(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)

	_, err := svc.SubmitFormData(context.Background(), uuid.New(), json.RawMessage(`{}`))
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "interview", nf.Kind)
}

func TestDeleteInterview(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	question := seedQuestion(t, store, "text", nil)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)
	_, err = svc.RecordAnswer(context.Background(), iv.ID, question.ID, json.RawMessage(`"fine"`))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInterview(context.Background(), iv.ID))

	_, err = svc.GetInterview(context.Background(), iv.ID)
	var nf *ErrNotFound
	require.ErrorAs(t, err, &nf)

	// Its answers went with it.
	count, err := store.CountResponses(context.Background(), iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = svc.DeleteInterview(context.Background(), iv.ID)
	require.ErrorAs(t, err, &nf)
}

func TestDeleteContact_CascadesRoundsAndInterviews(t *testing.T) {
	store := newMemStore()
	_, svc, _ := newTestServices(store)
	contact := newTestContact(t, store)
	question := seedQuestion(t, store, "text", nil)

	iv, err := svc.StartRound(context.Background(), contact.ID, 1, uuid.New())
	require.NoError(t, err)
	_, err = svc.RecordAnswer(context.Background(), iv.ID, question.ID, json.RawMessage(`"fine"`))
	require.NoError(t, err)

	require.NoError(t, store.DeleteContact(context.Background(), contact.ID))

	all, err := store.ListRounds(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Empty(t, all)

	gone, err := store.GetInterview(context.Background(), iv.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	count, err := store.CountResponses(context.Background(), iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
