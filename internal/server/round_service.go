package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-tracker/internal/db"
	"github.com/jonathan/interview-tracker/internal/rounds"
	"github.com/jonathan/interview-tracker/internal/schedule"
)

// RoundService owns the round-set lifecycle: one-time creation of the four
// rounds, the pending→active transition, the current-round query, and the
// contact status projection. Every mutation here and in InterviewService
// runs inside a per-contact unit of work, so eligibility checks and the
// writes they guard cannot interleave with a concurrent request.
type RoundService struct {
	store        db.Store
	intervalDays int
	now          func() time.Time
}

// NewRoundService creates a RoundService with the given store and round
// interval.
func NewRoundService(store db.Store, intervalDays int) *RoundService {
	if intervalDays <= 0 {
		intervalDays = schedule.DefaultIntervalDays
	}
	return &RoundService{
		store:        store,
		intervalDays: intervalDays,
		now:          time.Now,
	}
}

// EnsureRounds lazily creates the contact's four rounds, returning the full
// set. Idempotent: an existing set is returned as-is, never extended.
func (s *RoundService) EnsureRounds(ctx context.Context, contactID uuid.UUID) ([]rounds.Round, error) {
	var out []rounds.Round
	err := s.store.InContactTx(ctx, contactID, func(tx db.Store) error {
		var err error
		out, err = s.ensureRoundsTx(ctx, tx, contactID)
		return err
	})
	if err != nil {
		if err == db.ErrContactMissing {
			return nil, &ErrNotFound{Kind: "contact", ID: contactID.String()}
		}
		return nil, err
	}
	return out, nil
}

// ensureRoundsTx is the transactional body of EnsureRounds, shared with
// InterviewService.StartRound. Existence of any round implies the full set,
// since creation is all-or-nothing; fewer than four surviving rows is an
// inconsistency that is surfaced, not repaired.
func (s *RoundService) ensureRoundsTx(ctx context.Context, tx db.Store, contactID uuid.UUID) ([]rounds.Round, error) {
	has, err := tx.HasRounds(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if has {
		all, err := tx.ListRounds(ctx, contactID)
		if err != nil {
			return nil, err
		}
		if len(all) != rounds.NumRounds {
			return nil, &ErrInconsistentState{
				ContactID: contactID,
				Detail:    fmt.Sprintf("expected %d rounds, found %d", rounds.NumRounds, len(all)),
			}
		}
		return all, nil
	}

	plan := schedule.BuildRoundPlan(s.now(), s.intervalDays)
	set := make([]rounds.Round, len(plan))
	for i, p := range plan {
		set[i] = rounds.Round{
			ContactID:   contactID,
			Number:      p.Number,
			Status:      p.Status,
			ScheduledAt: p.ScheduledAt,
		}
	}
	if err := tx.CreateRoundSet(ctx, set); err != nil {
		return nil, err
	}
	if err := s.projectStatusTx(ctx, tx, contactID, set); err != nil {
		return nil, err
	}
	return set, nil
}

// CurrentRound returns the contact's lowest non-completed round, or nil when
// all rounds are completed or none exist yet.
func (s *RoundService) CurrentRound(ctx context.Context, contactID uuid.UUID) (*rounds.Round, error) {
	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, &ErrNotFound{Kind: "contact", ID: contactID.String()}
	}

	all, err := s.store.ListRounds(ctx, contactID)
	if err != nil {
		return nil, err
	}
	return rounds.Current(all), nil
}

// activateIfReadyTx advances target from pending to active when its date has
// arrived and every earlier round is completed. Repeated calls on an already
// active round are no-ops returning false, as is losing the compare-and-set
// to a concurrent writer. all must contain the contact's full round set.
func (s *RoundService) activateIfReadyTx(ctx context.Context, tx db.Store, all []rounds.Round, target *rounds.Round) (bool, error) {
	if !target.CanActivate(s.now()) {
		return false, nil
	}
	if target.Number > 1 && !rounds.AllPreviousCompleted(all, target.Number) {
		return false, nil
	}

	moved, err := tx.UpdateRoundStatus(ctx, target.ID, rounds.RoundPending, rounds.RoundActive)
	if err != nil {
		return false, err
	}
	if moved {
		target.Status = rounds.RoundActive
	}
	return moved, nil
}

// projectStatusTx recomputes and persists the contact's derived status from
// the given round set. An inconsistent partial state leaves the stored
// status untouched and surfaces the error.
func (s *RoundService) projectStatusTx(ctx context.Context, tx db.Store, contactID uuid.UUID, all []rounds.Round) error {
	status, ok := rounds.DeriveStatus(all)
	if !ok {
		return &ErrInconsistentState{
			ContactID: contactID,
			Detail:    fmt.Sprintf("%d rounds exist but none is current and not all are completed", len(all)),
		}
	}
	return tx.UpdateContactStatus(ctx, contactID, status)
}
