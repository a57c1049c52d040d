package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// CreateJournalEntry stores one daily log line.
func (s *Store) CreateJournalEntry(ctx context.Context, e *domain.JournalEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()
	if e.Tag == "" {
		e.Tag = "note"
	}

	query := `INSERT INTO journal_entries (id, subscriber_id, body, tag, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.SubscriberID, e.Body, e.Tag, e.CreatedAt)
	return err
}

// ListJournalEntries returns a subscriber's log, newest first.
func (s *Store) ListJournalEntries(ctx context.Context, subscriberID string, limit int) ([]*domain.JournalEntry, error) {
	query := `SELECT id, subscriber_id, body, tag, created_at FROM journal_entries
		WHERE subscriber_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, subscriberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		e := &domain.JournalEntry{}
		if err := rows.Scan(&e.ID, &e.SubscriberID, &e.Body, &e.Tag, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestJournalEntry returns the most recent entry, or nil when the
// subscriber has never logged anything.
func (s *Store) LatestJournalEntry(ctx context.Context, subscriberID string) (*domain.JournalEntry, error) {
	query := `SELECT id, subscriber_id, body, tag, created_at FROM journal_entries
		WHERE subscriber_id = $1 ORDER BY created_at DESC LIMIT 1`

	e := &domain.JournalEntry{}
	err := s.db.QueryRowContext(ctx, query, subscriberID).Scan(
		&e.ID, &e.SubscriberID, &e.Body, &e.Tag, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}
