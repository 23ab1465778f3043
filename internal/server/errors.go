// Package server provides the HTTP REST API and service layer for the
// interview round tracker.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

// ErrNotFound indicates a contact, round, interview, or question is absent
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrRoundNotEligible indicates the round's eligibility predicate failed and
// no resumable interview exists. It carries the round's state for diagnostics.
type ErrRoundNotEligible struct {
	RoundNumber int
	Status      rounds.RoundStatus
	ScheduledAt time.Time
}

func (e *ErrRoundNotEligible) Error() string {
	return fmt.Sprintf("round %d is not eligible: status=%s scheduled_at=%s",
		e.RoundNumber, e.Status, e.ScheduledAt.Format(time.RFC3339))
}

// ErrValidationConflict indicates an interview mutation that bypasses round
// eligibility through a path other than starting the round.
type ErrValidationConflict struct {
	Reason string
}

func (e *ErrValidationConflict) Error() string {
	return fmt.Sprintf("interview validation conflict: %s", e.Reason)
}

// ErrInconsistentState indicates a partial round set was detected. It is
// surfaced to the caller, never silently repaired.
type ErrInconsistentState struct {
	ContactID uuid.UUID
	Detail    string
}

func (e *ErrInconsistentState) Error() string {
	return fmt.Sprintf("inconsistent round state for contact %s: %s", e.ContactID, e.Detail)
}

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrRoundNotEligible:
		return http.StatusBadRequest
	case *ErrValidationConflict:
		return http.StatusConflict
	case *ErrInconsistentState:
		return http.StatusInternalServerError
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
