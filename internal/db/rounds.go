package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

// HasRounds reports whether any round exists for the contact. Round sets are
// created all-or-nothing, so existence of one row implies the full set.
func (db *DB) HasRounds(ctx context.Context, contactID uuid.UUID) (bool, error) {
	var exists bool
	err := db.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM interview_rounds WHERE contact_id = $1)`,
		contactID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rounds existence: %w", err)
	}
	return exists, nil
}

// CreateRoundSet inserts a contact's rounds as one batch. Callers invoke it
// inside InContactTx so a consumer never observes a partial set; the unique
// (contact_id, round_number) constraint rejects duplicates regardless.
func (db *DB) CreateRoundSet(ctx context.Context, set []rounds.Round) error {
	for i := range set {
		r := &set[i]
		err := db.q.QueryRow(ctx,
			`INSERT INTO interview_rounds (contact_id, round_number, status, scheduled_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at, updated_at`,
			r.ContactID, r.Number, r.Status, r.ScheduledAt,
		).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("round %d already exists for contact %s: %w", r.Number, r.ContactID, err)
			}
			return fmt.Errorf("failed to insert round %d: %w", r.Number, err)
		}
	}
	return nil
}

// ListRounds returns the contact's rounds ordered by round number.
func (db *DB) ListRounds(ctx context.Context, contactID uuid.UUID) ([]rounds.Round, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, contact_id, round_number, status, scheduled_at, created_at, updated_at
		 FROM interview_rounds WHERE contact_id = $1 ORDER BY round_number`,
		contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var out []rounds.Round
	for rows.Next() {
		var r rounds.Round
		if err := rows.Scan(&r.ID, &r.ContactID, &r.Number, &r.Status, &r.ScheduledAt,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateRoundStatus performs a compare-and-set status transition. It reports
// whether the row actually moved from "from" to "to"; a false return means
// another writer got there first or the round was never in "from".
func (db *DB) UpdateRoundStatus(ctx context.Context, roundID uuid.UUID, from, to rounds.RoundStatus) (bool, error) {
	ct, err := db.q.Exec(ctx,
		`UPDATE interview_rounds SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		roundID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update round status: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}
