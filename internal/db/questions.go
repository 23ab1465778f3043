package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, text, type, stage, options, routing_logic, required, ord, round, created_at`

// GetQuestion retrieves a question by ID, or nil if absent.
func (db *DB) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	err := db.q.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Text, &q.Type, &q.Stage, &q.Options, &q.RoutingLogic,
		&q.Required, &q.Order, &q.Round, &q.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// ListQuestions returns questions ordered by (stage, ord). With a round
// filter, questions tagged for all rounds (round IS NULL) are included
// alongside the round-specific ones.
func (db *DB) ListQuestions(ctx context.Context, f QuestionFilters) ([]Question, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE ($1::int IS NULL OR round IS NULL OR round = $1)
		   AND ($2 = 0 OR stage = $2)
		 ORDER BY stage, ord`,
		f.Round, f.Stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &q.Stage, &q.Options, &q.RoutingLogic,
			&q.Required, &q.Order, &q.Round, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// UpsertQuestion creates or updates a question by (text, stage, round),
// used by the seed-questions command.
func (db *DB) UpsertQuestion(ctx context.Context, q *Question) (*Question, error) {
	var out Question
	err := db.q.QueryRow(ctx,
		`INSERT INTO questions (text, type, stage, options, routing_logic, required, ord, round)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (text, stage, COALESCE(round, 0))
		 DO UPDATE SET type = $2, options = $4, routing_logic = $5, required = $6, ord = $7
		 RETURNING `+questionColumns,
		q.Text, q.Type, q.Stage, q.Options, nullableJSON(q.RoutingLogic), q.Required, q.Order, q.Round,
	).Scan(&out.ID, &out.Text, &out.Type, &out.Stage, &out.Options, &out.RoutingLogic,
		&out.Required, &out.Order, &out.Round, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert question: %w", err)
	}
	return &out, nil
}

// nullableJSON maps an empty raw message to SQL NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
