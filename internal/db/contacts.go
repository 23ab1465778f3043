package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

const contactColumns = `id, name, phone, serial_number, cuid, ticket_number, location,
        status, notes, created_by, last_contact, created_at, updated_at`

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.SerialNumber, &c.CUID, &c.TicketNumber,
		&c.Location, &c.Status, &c.Notes, &c.CreatedBy, &c.LastContact, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContact inserts a new contact with status not_started.
func (db *DB) CreateContact(ctx context.Context, c *Contact) (*Contact, error) {
	row := db.q.QueryRow(ctx,
		`INSERT INTO contacts (name, phone, serial_number, cuid, ticket_number, location, status, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+contactColumns,
		c.Name, c.Phone, c.SerialNumber, c.CUID, c.TicketNumber, c.Location,
		rounds.StatusNotStarted, c.Notes, c.CreatedBy)
	created, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return created, nil
}

// GetContact retrieves a contact by ID, or nil if absent.
func (db *DB) GetContact(ctx context.Context, id uuid.UUID) (*Contact, error) {
	c, err := scanContact(db.q.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// UpdateContact updates the mutable identity fields of a contact. Status is
// excluded: it is only written through UpdateContactStatus by the projector.
func (db *DB) UpdateContact(ctx context.Context, c *Contact) error {
	_, err := db.q.Exec(ctx,
		`UPDATE contacts
		 SET name = $2, phone = $3, serial_number = $4, cuid = $5, ticket_number = $6,
		     location = $7, notes = $8, last_contact = $9, updated_at = NOW()
		 WHERE id = $1`,
		c.ID, c.Name, c.Phone, c.SerialNumber, c.CUID, c.TicketNumber,
		c.Location, c.Notes, c.LastContact)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// UpdateContactStatus writes the derived status for a contact.
func (db *DB) UpdateContactStatus(ctx context.Context, id uuid.UUID, status rounds.ContactStatus) error {
	_, err := db.q.Exec(ctx,
		`UPDATE contacts SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}
	return nil
}

// DeleteContact removes a contact; rounds, interviews, and responses cascade
// at the schema level.
func (db *DB) DeleteContact(ctx context.Context, id uuid.UUID) error {
	ct, err := db.q.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrContactMissing
	}
	return nil
}

// ListContacts returns contacts newest first.
func (db *DB) ListContacts(ctx context.Context, limit, offset int) ([]Contact, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.q.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.SerialNumber, &c.CUID, &c.TicketNumber,
			&c.Location, &c.Status, &c.Notes, &c.CreatedBy, &c.LastContact, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
