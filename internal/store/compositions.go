package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// CreateComposition stores a finished message.
func (s *Store) CreateComposition(ctx context.Context, c *domain.Composition) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()

	query := `INSERT INTO compositions (id, subscriber_id, prompt_id, draft, polished, final_text, tone, favorite, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.SubscriberID, c.PromptID, c.Draft,
		c.Polished, c.FinalText, c.Tone, c.Favorite, c.CreatedAt)
	return err
}

const compositionColumns = `id, subscriber_id, prompt_id, draft, polished, final_text, tone, favorite, created_at`

func (s *Store) queryCompositions(ctx context.Context, query string, args ...any) ([]*domain.Composition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []*domain.Composition
	for rows.Next() {
		c := &domain.Composition{}
		if err := rows.Scan(&c.ID, &c.SubscriberID, &c.PromptID, &c.Draft, &c.Polished,
			&c.FinalText, &c.Tone, &c.Favorite, &c.CreatedAt); err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// ListCompositions returns a page of a subscriber's history, newest first.
func (s *Store) ListCompositions(ctx context.Context, subscriberID string, limit, offset int) ([]*domain.Composition, error) {
	query := `SELECT ` + compositionColumns + ` FROM compositions
		WHERE subscriber_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return s.queryCompositions(ctx, query, subscriberID, limit, offset)
}

// ListFavorites returns a subscriber's favorited compositions, newest first.
func (s *Store) ListFavorites(ctx context.Context, subscriberID string) ([]*domain.Composition, error) {
	query := `SELECT ` + compositionColumns + ` FROM compositions
		WHERE subscriber_id = $1 AND favorite ORDER BY created_at DESC`
	return s.queryCompositions(ctx, query, subscriberID)
}

// SetFavorite toggles the favorite flag, scoped to the owner. Returns false
// when no such composition exists for the subscriber.
func (s *Store) SetFavorite(ctx context.Context, id, subscriberID string, favorite bool) (bool, error) {
	query := `UPDATE compositions SET favorite = $3 WHERE id = $1 AND subscriber_id = $2`
	res, err := s.db.ExecContext(ctx, query, id, subscriberID, favorite)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListCompositionDates returns the distinct calendar days (UTC, YYYY-MM-DD)
// on which the subscriber composed anything, newest first. Used for the
// streak calculation.
func (s *Store) ListCompositionDates(ctx context.Context, subscriberID string, limit int) ([]string, error) {
	query := `SELECT DISTINCT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day
		FROM compositions WHERE subscriber_id = $1 ORDER BY day DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, subscriberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// RecordPolishUse logs one AI rewrite call against the daily quota.
func (s *Store) RecordPolishUse(ctx context.Context, subscriberID string) error {
	query := `INSERT INTO polish_usage (id, subscriber_id, used_at) VALUES ($1, $2, $3)`
	_, err := s.db.ExecContext(ctx, query, uuid.New().String(), subscriberID, time.Now())
	return err
}

// CountPolishesSince counts AI rewrite calls after the cutoff.
func (s *Store) CountPolishesSince(ctx context.Context, subscriberID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM polish_usage WHERE subscriber_id = $1 AND used_at >= $2`
	var n int
	err := s.db.QueryRowContext(ctx, query, subscriberID, since).Scan(&n)
	return n, err
}
