package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UpdateInterviewStatusRequest moves an interview between in_progress,
// paused, and completed. Setting completed triggers the round cascade.
// Stage and CurrentQuestionIndex are pointers so an absent field is
// distinguishable from an explicit zero (resetting progress to the first
// question is a valid update).
type UpdateInterviewStatusRequest struct {
	Status               string `json:"status" validate:"required,oneof=in_progress paused completed"`
	Stage                *int   `json:"stage,omitempty" validate:"omitempty,min=1"`
	CurrentQuestionIndex *int   `json:"current_question_index,omitempty" validate:"omitempty,min=0"`
}

// RecordAnswerRequest upserts the answer for one question of an interview.
// Answer is opaque structured JSON; its shape is checked against the
// question's answer schema at the API boundary only.
type RecordAnswerRequest struct {
	QuestionID uuid.UUID       `json:"question_id" validate:"required"`
	Answer     json.RawMessage `json:"answer" validate:"required"`
}

// SubmitFormDataRequest attaches an XForm submission to an interview. The
// payload is opaque structured JSON, stored as-is.
type SubmitFormDataRequest struct {
	FormData json.RawMessage `json:"form_data" validate:"required"`
}

// Validate validates the UpdateInterviewStatusRequest using the validator.
func (r *UpdateInterviewStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RecordAnswerRequest using the validator.
func (r *RecordAnswerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SubmitFormDataRequest using the validator.
func (r *SubmitFormDataRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
