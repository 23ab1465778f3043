package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-tracker/internal/db"
	"github.com/jonathan/interview-tracker/internal/rounds"
)

// memStore is an in-memory db.Store. A single mutex stands in for the
// per-contact row lock: InContactTx holds it for the whole unit of work, so
// the same check-then-act sequences are serialized as they are against
// PostgreSQL. It also enforces the live-interview unique constraint.
type memStore struct {
	mu     *sync.Mutex
	locked bool // true inside InContactTx, methods skip locking

	contacts   map[uuid.UUID]*db.Contact
	roundRows  map[uuid.UUID]*rounds.Round
	interviews map[uuid.UUID]*db.Interview
	responses  map[uuid.UUID]*db.Response
	questions  map[uuid.UUID]*db.Question
	users      map[uuid.UUID]*db.User
}

func newMemStore() *memStore {
	return &memStore{
		mu:         &sync.Mutex{},
		contacts:   make(map[uuid.UUID]*db.Contact),
		roundRows:  make(map[uuid.UUID]*rounds.Round),
		interviews: make(map[uuid.UUID]*db.Interview),
		responses:  make(map[uuid.UUID]*db.Response),
		questions:  make(map[uuid.UUID]*db.Question),
		users:      make(map[uuid.UUID]*db.User),
	}
}

func (m *memStore) lock() func() {
	if m.locked {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) InContactTx(_ context.Context, contactID uuid.UUID, fn func(db.Store) error) error {
	if m.locked {
		return fmt.Errorf("nested contact transaction")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contacts[contactID]; !ok {
		return db.ErrContactMissing
	}

	tx := *m
	tx.locked = true
	return fn(&tx)
}

// --- contacts ---

func (m *memStore) CreateContact(_ context.Context, c *db.Contact) (*db.Contact, error) {
	defer m.lock()()
	stored := *c
	stored.ID = uuid.New()
	stored.Status = rounds.StatusNotStarted
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.contacts[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) GetContact(_ context.Context, id uuid.UUID) (*db.Contact, error) {
	defer m.lock()()
	c, ok := m.contacts[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *memStore) UpdateContact(_ context.Context, c *db.Contact) error {
	defer m.lock()()
	existing, ok := m.contacts[c.ID]
	if !ok {
		return db.ErrContactMissing
	}
	status := existing.Status // status only changes via UpdateContactStatus
	updated := *c
	updated.Status = status
	updated.UpdatedAt = time.Now()
	m.contacts[c.ID] = &updated
	return nil
}

func (m *memStore) UpdateContactStatus(_ context.Context, id uuid.UUID, status rounds.ContactStatus) error {
	defer m.lock()()
	c, ok := m.contacts[id]
	if !ok {
		return db.ErrContactMissing
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) DeleteContact(_ context.Context, id uuid.UUID) error {
	defer m.lock()()
	if _, ok := m.contacts[id]; !ok {
		return db.ErrContactMissing
	}
	delete(m.contacts, id)
	// Cascade like the real schema: rounds, interviews, and their responses
	// go with the contact.
	for rid, r := range m.roundRows {
		if r.ContactID == id {
			delete(m.roundRows, rid)
		}
	}
	for ivID, iv := range m.interviews {
		if iv.ContactID == id {
			m.deleteInterviewLocked(ivID)
		}
	}
	return nil
}

func (m *memStore) ListContacts(_ context.Context, limit, offset int) ([]db.Contact, error) {
	defer m.lock()()
	out := make([]db.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// --- rounds ---

func (m *memStore) HasRounds(_ context.Context, contactID uuid.UUID) (bool, error) {
	defer m.lock()()
	for _, r := range m.roundRows {
		if r.ContactID == contactID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateRoundSet(_ context.Context, set []rounds.Round) error {
	defer m.lock()()
	for i := range set {
		for _, existing := range m.roundRows {
			if existing.ContactID == set[i].ContactID && existing.Number == set[i].Number {
				return fmt.Errorf("round %d already exists for contact %s", set[i].Number, set[i].ContactID)
			}
		}
	}
	now := time.Now()
	for i := range set {
		set[i].ID = uuid.New()
		set[i].CreatedAt = now
		set[i].UpdatedAt = now
		stored := set[i]
		m.roundRows[stored.ID] = &stored
	}
	return nil
}

func (m *memStore) ListRounds(_ context.Context, contactID uuid.UUID) ([]rounds.Round, error) {
	defer m.lock()()
	var out []rounds.Round
	for _, r := range m.roundRows {
		if r.ContactID == contactID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memStore) UpdateRoundStatus(_ context.Context, roundID uuid.UUID, from, to rounds.RoundStatus) (bool, error) {
	defer m.lock()()
	r, ok := m.roundRows[roundID]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return true, nil
}

// --- interviews ---

func (m *memStore) GetInterview(_ context.Context, id uuid.UUID) (*db.Interview, error) {
	defer m.lock()()
	iv, ok := m.interviews[id]
	if !ok {
		return nil, nil
	}
	out := *iv
	return &out, nil
}

func (m *memStore) ListInterviews(_ context.Context, f db.InterviewFilters) ([]db.Interview, error) {
	defer m.lock()()
	var out []db.Interview
	for _, iv := range m.interviews {
		if iv.InterviewerID != f.InterviewerID {
			continue
		}
		if f.Status != "" && string(iv.Status) != f.Status {
			continue
		}
		if f.Stage != 0 && iv.Stage != f.Stage {
			continue
		}
		out = append(out, *iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *memStore) FindLiveInterview(_ context.Context, contactID, roundID uuid.UUID) (*db.Interview, error) {
	defer m.lock()()
	return m.findLiveLocked(contactID, roundID), nil
}

func (m *memStore) findLiveLocked(contactID, roundID uuid.UUID) *db.Interview {
	for _, iv := range m.interviews {
		if iv.ContactID == contactID && iv.InterviewRoundID != nil &&
			*iv.InterviewRoundID == roundID && iv.Status.IsLive() {
			out := *iv
			return &out
		}
	}
	return nil
}

func (m *memStore) CreateInterview(_ context.Context, iv *db.Interview) (*db.Interview, error) {
	defer m.lock()()
	if iv.InterviewRoundID != nil {
		if existing := m.findLiveLocked(iv.ContactID, *iv.InterviewRoundID); existing != nil {
			return nil, db.ErrDuplicateLiveInterview
		}
	}
	stored := *iv
	stored.ID = uuid.New()
	stored.StartedAt = time.Now()
	stored.UpdatedAt = stored.StartedAt
	m.interviews[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) SaveInterviewStatus(_ context.Context, iv *db.Interview) error {
	defer m.lock()()
	if _, ok := m.interviews[iv.ID]; !ok {
		return fmt.Errorf("interview not found: %s", iv.ID)
	}
	updated := *iv
	updated.UpdatedAt = time.Now()
	m.interviews[iv.ID] = &updated
	return nil
}

func (m *memStore) SaveInterviewFormData(_ context.Context, id uuid.UUID, formData []byte) error {
	defer m.lock()()
	iv, ok := m.interviews[id]
	if !ok {
		return db.ErrInterviewMissing
	}
	iv.FormData = append([]byte(nil), formData...)
	iv.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) DeleteInterview(_ context.Context, id uuid.UUID) error {
	defer m.lock()()
	if _, ok := m.interviews[id]; !ok {
		return db.ErrInterviewMissing
	}
	m.deleteInterviewLocked(id)
	return nil
}

func (m *memStore) deleteInterviewLocked(id uuid.UUID) {
	delete(m.interviews, id)
	for respID, resp := range m.responses {
		if resp.InterviewID == id {
			delete(m.responses, respID)
		}
	}
}

// --- responses ---

func (m *memStore) UpsertResponse(_ context.Context, resp *db.Response) (*db.Response, error) {
	defer m.lock()()
	for _, existing := range m.responses {
		if existing.InterviewID == resp.InterviewID && existing.QuestionID == resp.QuestionID {
			existing.Answer = resp.Answer
			existing.UpdatedAt = time.Now()
			out := *existing
			return &out, nil
		}
	}
	stored := *resp
	stored.ID = uuid.New()
	stored.CompletedAt = time.Now()
	stored.UpdatedAt = stored.CompletedAt
	m.responses[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) CountResponses(_ context.Context, interviewID uuid.UUID) (int, error) {
	defer m.lock()()
	n := 0
	for _, r := range m.responses {
		if r.InterviewID == interviewID {
			n++
		}
	}
	return n, nil
}

// --- questions ---

func (m *memStore) GetQuestion(_ context.Context, id uuid.UUID) (*db.Question, error) {
	defer m.lock()()
	q, ok := m.questions[id]
	if !ok {
		return nil, nil
	}
	out := *q
	return &out, nil
}

func (m *memStore) ListQuestions(_ context.Context, f db.QuestionFilters) ([]db.Question, error) {
	defer m.lock()()
	var out []db.Question
	for _, q := range m.questions {
		if f.Round != nil && q.Round != nil && *q.Round != *f.Round {
			continue
		}
		if f.Stage != 0 && q.Stage != f.Stage {
			continue
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (m *memStore) UpsertQuestion(_ context.Context, q *db.Question) (*db.Question, error) {
	defer m.lock()()
	stored := *q
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	m.questions[stored.ID] = &stored
	out := stored
	return &out, nil
}

// --- users ---

func (m *memStore) CreateUser(_ context.Context, name, email, role, passwordHash string) (uuid.UUID, error) {
	defer m.lock()()
	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	defer m.lock()()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	defer m.lock()()
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	defer m.lock()()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

var _ db.Store = (*memStore)(nil)
