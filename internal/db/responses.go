package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UpsertResponse creates or replaces the answer for (interview, question).
// Replaying a question overwrites the previous payload in place.
func (db *DB) UpsertResponse(ctx context.Context, resp *Response) (*Response, error) {
	var out Response
	err := db.q.QueryRow(ctx,
		`INSERT INTO responses (interview_id, question_id, answer)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (interview_id, question_id)
		 DO UPDATE SET answer = $3, updated_at = NOW()
		 RETURNING id, interview_id, question_id, answer, completed_at, updated_at`,
		resp.InterviewID, resp.QuestionID, []byte(resp.Answer),
	).Scan(&out.ID, &out.InterviewID, &out.QuestionID, &out.Answer, &out.CompletedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert response: %w", err)
	}
	return &out, nil
}

// CountResponses returns the number of recorded answers for an interview.
func (db *DB) CountResponses(ctx context.Context, interviewID uuid.UUID) (int, error) {
	var n int
	err := db.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE interview_id = $1`, interviewID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return n, nil
}
