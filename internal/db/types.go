package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

// Contact is a person tracked through the four interview rounds.
type Contact struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Phone        string               `json:"phone"`
	SerialNumber string               `json:"serial_number,omitempty"`
	CUID         string               `json:"cuid,omitempty"`
	TicketNumber string               `json:"ticket_number,omitempty"`
	Location     string               `json:"location,omitempty"`
	Status       rounds.ContactStatus `json:"status"`
	Notes        string               `json:"notes,omitempty"`
	CreatedBy    uuid.UUID            `json:"created_by"`
	LastContact  *time.Time           `json:"last_contact,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Interview is one interviewer session against a round. InterviewRoundID is
// nullable for legacy records created before round tracking existed.
// FormData holds an XForm submission for the interview, stored opaquely.
type Interview struct {
	ID                   uuid.UUID              `json:"id"`
	ContactID            uuid.UUID              `json:"contact_id"`
	InterviewerID        uuid.UUID              `json:"interviewer_id"`
	InterviewRoundID     *uuid.UUID             `json:"interview_round_id,omitempty"`
	Stage                int                    `json:"stage"`
	Status               rounds.InterviewStatus `json:"status"`
	CurrentQuestionIndex int                    `json:"current_question_index"`
	FormData             json.RawMessage        `json:"form_data,omitempty"`
	StartedAt            time.Time              `json:"started_at"`
	CompletedAt          *time.Time             `json:"completed_at,omitempty"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// InterviewFilters narrows ListInterviews.
type InterviewFilters struct {
	InterviewerID uuid.UUID // required: interviews are scoped to their interviewer
	Status        string    // optional
	Stage         int       // optional, 0 means any
	Limit         int
	Offset        int
}

// Response stores one answer within an interview. Answer is opaque JSON; the
// engine never interprets it.
type Response struct {
	ID          uuid.UUID       `json:"id"`
	InterviewID uuid.UUID       `json:"interview_id"`
	QuestionID  uuid.UUID       `json:"question_id"`
	Answer      json.RawMessage `json:"answer"`
	CompletedAt time.Time       `json:"completed_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Question is read-only reference data for the interview UI. RoutingLogic is
// opaque to this system. Round is nil for questions asked in every round.
type Question struct {
	ID           uuid.UUID       `json:"id"`
	Text         string          `json:"text"`
	Type         string          `json:"type"` // text, multiple_choice, scale, boolean
	Stage        int             `json:"stage"`
	Options      StringArray     `json:"options,omitempty"`
	RoutingLogic json.RawMessage `json:"routing_logic,omitempty"`
	Required     bool            `json:"required"`
	Order        int             `json:"order"`
	Round        *int            `json:"round,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QuestionFilters narrows ListQuestions. Round filtering keeps questions
// whose round tag is null (all rounds) or equals the requested round.
type QuestionFilters struct {
	Round *int
	Stage int // 0 means any
}

// User is an account that conducts interviews.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // interviewer or admin
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	source, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
