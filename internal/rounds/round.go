// Package rounds defines the passive records and pure predicates for the
// four-round interview lifecycle. All persistence and transition side effects
// live in the service layer; this package only answers questions about state.
package rounds

import (
	"time"

	"github.com/google/uuid"
)

// NumRounds is the fixed number of interview rounds per contact.
const NumRounds = 4

// RoundStatus is the lifecycle state of a single interview round.
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
	RoundCancelled RoundStatus = "cancelled"
)

// IsValid reports whether s is a known round status.
func (s RoundStatus) IsValid() bool {
	switch s {
	case RoundPending, RoundActive, RoundCompleted, RoundCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is a terminal state (no further transitions).
func (s RoundStatus) IsTerminal() bool {
	return s == RoundCompleted || s == RoundCancelled
}

// Round is one of the four scheduled interview rounds for a contact.
// It is a passive record; callers mutate it only through the service layer.
type Round struct {
	ID          uuid.UUID   `json:"id"`
	ContactID   uuid.UUID   `json:"contact_id"`
	Number      int         `json:"round_number"`
	Status      RoundStatus `json:"status"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CanStartInterview reports whether an interview may be started for this
// round at the given time. Round 1 is startable until it completes,
// regardless of its scheduled date. Later rounds must be active and past
// their scheduled date.
func (r *Round) CanStartInterview(now time.Time) bool {
	if r.Number == 1 {
		return r.Status != RoundCompleted
	}
	return r.Status == RoundActive && !now.Before(r.ScheduledAt)
}

// CanActivate reports whether this round is ready to leave pending,
// ignoring the predecessor gate (see AllPreviousCompleted).
func (r *Round) CanActivate(now time.Time) bool {
	return r.Status == RoundPending && !now.Before(r.ScheduledAt)
}

// AllPreviousCompleted reports whether every round numbered below n is
// completed. A missing predecessor blocks activation: the check is
// fail-closed, so an orphaned or partial round set never unlocks a later
// round. Cancelled rounds also block, since they never completed.
func AllPreviousCompleted(all []Round, n int) bool {
	for prev := 1; prev < n; prev++ {
		found := false
		for i := range all {
			if all[i].Number == prev {
				found = true
				if all[i].Status != RoundCompleted {
					return false
				}
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Current returns the round with the smallest number whose status is not
// completed, or nil when every round is completed or none exist.
func Current(all []Round) *Round {
	var cur *Round
	for i := range all {
		r := &all[i]
		if r.Status == RoundCompleted {
			continue
		}
		if cur == nil || r.Number < cur.Number {
			cur = r
		}
	}
	return cur
}

// ByNumber returns the round with the given number, or nil.
func ByNumber(all []Round, n int) *Round {
	for i := range all {
		if all[i].Number == n {
			return &all[i]
		}
	}
	return nil
}
