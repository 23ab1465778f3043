package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// CreateContactRequest represents the request to create a contact. The
// contact's four interview rounds are created alongside it.
type CreateContactRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Phone        string `json:"phone" validate:"required,min=3,max=20"`
	SerialNumber string `json:"serial_number,omitempty" validate:"max=100"`
	CUID         string `json:"cuid,omitempty" validate:"max=100"`
	TicketNumber string `json:"ticket_number,omitempty" validate:"max=100"`
	Location     string `json:"location,omitempty" validate:"max=100"`
	Notes        string `json:"notes,omitempty"`
}

// UpdateContactRequest represents the mutable identity fields of a contact.
// Status is absent: it is derived from round state, never written directly.
type UpdateContactRequest struct {
	Name         string     `json:"name" validate:"required,min=1,max=255"`
	Phone        string     `json:"phone" validate:"required,min=3,max=20"`
	SerialNumber string     `json:"serial_number,omitempty" validate:"max=100"`
	CUID         string     `json:"cuid,omitempty" validate:"max=100"`
	TicketNumber string     `json:"ticket_number,omitempty" validate:"max=100"`
	Location     string     `json:"location,omitempty" validate:"max=100"`
	Notes        string     `json:"notes,omitempty"`
	LastContact  *time.Time `json:"last_contact,omitempty"`
}

// Validate validates the CreateContactRequest using the validator.
func (r *CreateContactRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateContactRequest using the validator.
func (r *UpdateContactRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
