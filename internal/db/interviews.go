package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

const interviewColumns = `id, contact_id, interviewer_id, interview_round_id, stage, status,
        current_question_index, form_data, started_at, completed_at, updated_at`

func scanInterview(row pgx.Row) (*Interview, error) {
	var iv Interview
	err := row.Scan(&iv.ID, &iv.ContactID, &iv.InterviewerID, &iv.InterviewRoundID,
		&iv.Stage, &iv.Status, &iv.CurrentQuestionIndex, &iv.FormData, &iv.StartedAt, &iv.CompletedAt, &iv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// GetInterview retrieves an interview by ID, or nil if absent.
func (db *DB) GetInterview(ctx context.Context, id uuid.UUID) (*Interview, error) {
	iv, err := scanInterview(db.q.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return iv, nil
}

// ListInterviews returns interviews for an interviewer, newest first,
// optionally filtered by status and stage.
func (db *DB) ListInterviews(ctx context.Context, f InterviewFilters) ([]Interview, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.q.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews
		 WHERE interviewer_id = $1
		   AND ($2 = '' OR status = $2)
		   AND ($3 = 0 OR stage = $3)
		 ORDER BY started_at DESC
		 LIMIT $4 OFFSET $5`,
		f.InterviewerID, f.Status, f.Stage, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var out []Interview
	for rows.Next() {
		var iv Interview
		if err := rows.Scan(&iv.ID, &iv.ContactID, &iv.InterviewerID, &iv.InterviewRoundID,
			&iv.Stage, &iv.Status, &iv.CurrentQuestionIndex, &iv.FormData, &iv.StartedAt, &iv.CompletedAt, &iv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// FindLiveInterview returns the in_progress or paused interview for a
// (contact, round), or nil if none exists. The partial unique index
// guarantees at most one.
func (db *DB) FindLiveInterview(ctx context.Context, contactID, roundID uuid.UUID) (*Interview, error) {
	iv, err := scanInterview(db.q.QueryRow(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews
		 WHERE contact_id = $1 AND interview_round_id = $2 AND status IN ($3, $4)`,
		contactID, roundID, rounds.InterviewInProgress, rounds.InterviewPaused))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find live interview: %w", err)
	}
	return iv, nil
}

// CreateInterview inserts a new interview. A collision with the live-per-round
// unique index surfaces as ErrDuplicateLiveInterview so the caller can fall
// back to resuming the winner.
func (db *DB) CreateInterview(ctx context.Context, iv *Interview) (*Interview, error) {
	created, err := scanInterview(db.q.QueryRow(ctx,
		`INSERT INTO interviews (contact_id, interviewer_id, interview_round_id, stage, status, current_question_index)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+interviewColumns,
		iv.ContactID, iv.InterviewerID, iv.InterviewRoundID, iv.Stage, iv.Status, iv.CurrentQuestionIndex))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateLiveInterview
		}
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}
	return created, nil
}

// SaveInterviewStatus persists status, stage, progress, and completion time.
func (db *DB) SaveInterviewStatus(ctx context.Context, iv *Interview) error {
	_, err := db.q.Exec(ctx,
		`UPDATE interviews
		 SET status = $2, stage = $3, current_question_index = $4, completed_at = $5, updated_at = NOW()
		 WHERE id = $1`,
		iv.ID, iv.Status, iv.Stage, iv.CurrentQuestionIndex, iv.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save interview: %w", err)
	}
	return nil
}

// SaveInterviewFormData stores an XForm submission on the interview. The
// payload is opaque to this layer.
func (db *DB) SaveInterviewFormData(ctx context.Context, id uuid.UUID, formData []byte) error {
	tag, err := db.q.Exec(ctx,
		`UPDATE interviews SET form_data = $2, updated_at = NOW() WHERE id = $1`,
		id, formData)
	if err != nil {
		return fmt.Errorf("failed to save form data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInterviewMissing
	}
	return nil
}

// DeleteInterview removes an interview; its responses go with it.
func (db *DB) DeleteInterview(ctx context.Context, id uuid.UUID) error {
	tag, err := db.q.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInterviewMissing
	}
	return nil
}
