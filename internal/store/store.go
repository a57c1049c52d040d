// Package store provides PostgreSQL persistence for all LoveNotes entities.
//
// Every query is parameterized; no user input is ever concatenated into SQL.
// Lookups that find nothing return (nil, nil) so callers distinguish absence
// from failure.
package store

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when a signup collides with an existing
// subscriber. Handlers map it to a generic rejection so the API does not
// confirm which emails are registered.
var ErrDuplicateEmail = errors.New("store: email already registered")

// Store provides database operations for all LoveNotes entities.
type Store struct {
	db *sql.DB
}

// NewStore creates a store backed by the given connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and configures the pool.
func Open(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
