// Package schedule computes interview round dates. Rounds are spaced roughly
// three months apart and never land on a weekend.
package schedule

import (
	"time"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

// DefaultIntervalDays is the nominal spacing between rounds.
const DefaultIntervalDays = 90

// NextRoundDate returns previous plus intervalDays, rolled forward day by day
// until it lands on a weekday. Pure and deterministic.
func NextRoundDate(previous time.Time, intervalDays int) time.Time {
	next := previous.AddDate(0, 0, intervalDays)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// PlannedRound is one entry of a four-round creation plan.
type PlannedRound struct {
	Number      int
	Status      rounds.RoundStatus
	ScheduledAt time.Time
}

// BuildRoundPlan returns the creation plan for a contact's four rounds:
// round 1 active at now, rounds 2-4 pending at chained weekend-adjusted
// dates. Dates are fixed at creation and never recomputed.
func BuildRoundPlan(now time.Time, intervalDays int) []PlannedRound {
	plan := make([]PlannedRound, 0, rounds.NumRounds)
	plan = append(plan, PlannedRound{Number: 1, Status: rounds.RoundActive, ScheduledAt: now})

	prev := now
	for n := 2; n <= rounds.NumRounds; n++ {
		next := NextRoundDate(prev, intervalDays)
		plan = append(plan, PlannedRound{Number: n, Status: rounds.RoundPending, ScheduledAt: next})
		prev = next
	}
	return plan
}
