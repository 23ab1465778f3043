// Package db provides PostgreSQL persistence for contacts, interview rounds,
// interviews, responses, questions, and users.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interview-tracker/internal/rounds"
)

// ErrDuplicateLiveInterview is returned when an interview insert collides
// with an existing in_progress or paused interview for the same round. The
// partial unique index on live interviews guarantees at most one winner under
// concurrent starts; losers re-fetch and resume.
var ErrDuplicateLiveInterview = errors.New("a live interview already exists for this round")

// ErrContactMissing reports that the contact row does not exist.
var ErrContactMissing = errors.New("contact not found")

// ErrInterviewMissing reports that the interview row does not exist.
var ErrInterviewMissing = errors.New("interview not found")

// Store is the persistence surface the service layer depends on. *DB
// implements it; tests use an in-memory implementation. InContactTx hands fn
// a Store whose operations run in one transaction under a per-contact lock.
type Store interface {
	CreateContact(ctx context.Context, c *Contact) (*Contact, error)
	GetContact(ctx context.Context, id uuid.UUID) (*Contact, error)
	UpdateContact(ctx context.Context, c *Contact) error
	UpdateContactStatus(ctx context.Context, id uuid.UUID, status rounds.ContactStatus) error
	DeleteContact(ctx context.Context, id uuid.UUID) error
	ListContacts(ctx context.Context, limit, offset int) ([]Contact, error)

	HasRounds(ctx context.Context, contactID uuid.UUID) (bool, error)
	CreateRoundSet(ctx context.Context, set []rounds.Round) error
	ListRounds(ctx context.Context, contactID uuid.UUID) ([]rounds.Round, error)
	UpdateRoundStatus(ctx context.Context, roundID uuid.UUID, from, to rounds.RoundStatus) (bool, error)

	GetInterview(ctx context.Context, id uuid.UUID) (*Interview, error)
	ListInterviews(ctx context.Context, f InterviewFilters) ([]Interview, error)
	FindLiveInterview(ctx context.Context, contactID, roundID uuid.UUID) (*Interview, error)
	CreateInterview(ctx context.Context, iv *Interview) (*Interview, error)
	SaveInterviewStatus(ctx context.Context, iv *Interview) error
	SaveInterviewFormData(ctx context.Context, id uuid.UUID, formData []byte) error
	DeleteInterview(ctx context.Context, id uuid.UUID) error

	UpsertResponse(ctx context.Context, resp *Response) (*Response, error)
	CountResponses(ctx context.Context, interviewID uuid.UUID) (int, error)

	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	ListQuestions(ctx context.Context, f QuestionFilters) ([]Question, error)
	UpsertQuestion(ctx context.Context, q *Question) (*Question, error)

	CreateUser(ctx context.Context, name, email, role, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)

	InContactTx(ctx context.Context, contactID uuid.UUID, fn func(Store) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every query
// method works inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
	q    querier
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, q: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// InContactTx runs fn inside a transaction holding a row lock on the
// contact, serializing every mutation of that contact's rounds and
// interviews. The "check eligibility, then act" sequences in the service
// layer are race-free under this lock.
func (db *DB) InContactTx(ctx context.Context, contactID uuid.UUID, fn func(Store) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, "SELECT id FROM contacts WHERE id = $1 FOR UPDATE", contactID).Scan(&locked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrContactMissing
		}
		return fmt.Errorf("failed to lock contact: %w", err)
	}

	if err := fn(&DB{pool: db.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
