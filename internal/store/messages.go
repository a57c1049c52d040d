package store

import (
	"context"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// ListMessagesByTheme returns all active occasion-less messages for a theme.
func (s *Store) ListMessagesByTheme(ctx context.Context, theme string) ([]*domain.Message, error) {
	query := `SELECT id, theme, occasion, content FROM messages
		WHERE theme = $1 AND occasion = '' AND active ORDER BY id`
	return s.queryMessages(ctx, query, theme)
}

// ListUnsentMessages returns active occasion-less messages for a theme that
// the subscriber has never received.
func (s *Store) ListUnsentMessages(ctx context.Context, subscriberID, theme string) ([]*domain.Message, error) {
	query := `SELECT m.id, m.theme, m.occasion, m.content FROM messages m
		WHERE m.theme = $2 AND m.occasion = '' AND m.active
		AND NOT EXISTS (
			SELECT 1 FROM sent_messages sm
			WHERE sm.subscriber_id = $1 AND sm.message_id = m.id
		)
		ORDER BY m.id`
	return s.queryMessages(ctx, query, subscriberID, theme)
}

// ListOccasionMessages returns active messages tagged for an occasion.
func (s *Store) ListOccasionMessages(ctx context.Context, occasion domain.Occasion) ([]*domain.Message, error) {
	query := `SELECT id, theme, occasion, content FROM messages
		WHERE occasion = $1 AND active ORDER BY id`
	return s.queryMessages(ctx, query, occasion)
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.Theme, &m.Occasion, &m.Content); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkMessageSent records that a subscriber received a message. Idempotent:
// re-recording the same pair is a no-op, so retried deliveries cannot
// corrupt the non-repeat history.
func (s *Store) MarkMessageSent(ctx context.Context, subscriberID string, messageID int64) error {
	query := `INSERT INTO sent_messages (subscriber_id, message_id)
		VALUES ($1, $2) ON CONFLICT (subscriber_id, message_id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query, subscriberID, messageID)
	return err
}

// CountMessageHistory counts messages a subscriber has been shown, across
// every channel that records history. The dashboard reports this as
// "messages received".
func (s *Store) CountMessageHistory(ctx context.Context, subscriberID string) (int, error) {
	query := `SELECT COUNT(*) FROM sent_messages WHERE subscriber_id = $1`
	var n int
	err := s.db.QueryRowContext(ctx, query, subscriberID).Scan(&n)
	return n, err
}

// ResetSentHistory clears a subscriber's non-repeat history for one theme,
// starting a fresh cycle once the catalog is exhausted.
func (s *Store) ResetSentHistory(ctx context.Context, subscriberID, theme string) error {
	query := `DELETE FROM sent_messages sm USING messages m
		WHERE sm.message_id = m.id AND sm.subscriber_id = $1 AND m.theme = $2`
	_, err := s.db.ExecContext(ctx, query, subscriberID, theme)
	return err
}
