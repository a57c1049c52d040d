package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// CreateSendLog inserts a delivery attempt row. Called before the external
// send so a crash mid-delivery leaves an auditable pending row.
func (s *Store) CreateSendLog(ctx context.Context, l *domain.SendLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = domain.SendPending
	}

	query := `INSERT INTO send_log (id, subscriber_id, message_id, status, provider_id, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query, l.ID, l.SubscriberID, l.MessageID, l.Status,
		l.ProviderID, l.ErrorMessage, l.CreatedAt, l.UpdatedAt)
	return err
}

// UpdateSendLog records the outcome of a delivery attempt.
func (s *Store) UpdateSendLog(ctx context.Context, id string, status domain.SendStatus, providerID, errorMessage string) error {
	query := `UPDATE send_log SET status = $2, provider_id = $3, error_message = $4, updated_at = now()
		WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id, status, providerID, errorMessage)
	return err
}

// HasSendSince reports whether any delivery attempt exists for the
// subscriber after the cutoff. The sweep uses this to skip anyone already
// handled today.
func (s *Store) HasSendSince(ctx context.Context, subscriberID string, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM send_log WHERE subscriber_id = $1 AND created_at >= $2
	)`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, subscriberID, since).Scan(&exists)
	return exists, err
}
