package types

import (
	"time"

	"github.com/google/uuid"
)

// RoundSummary is the API shape of one interview round.
type RoundSummary struct {
	ID          uuid.UUID `json:"id"`
	ContactID   uuid.UUID `json:"contact_id"`
	RoundNumber int       `json:"round_number"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CanStart    bool      `json:"can_start"`
}

// ContactRoundsResponse is the round-set listing for one contact.
type ContactRoundsResponse struct {
	ContactID uuid.UUID      `json:"contact_id"`
	Status    string         `json:"status"`
	Rounds    []RoundSummary `json:"rounds"`
}
