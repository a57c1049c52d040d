package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// UpsertProfile writes a subscriber's relationship profile, one row per
// subscriber.
func (s *Store) UpsertProfile(ctx context.Context, p *domain.RelationshipProfile) error {
	p.UpdatedAt = time.Now()

	query := `INSERT INTO relationship_profiles (subscriber_id, how_we_met, inside_jokes, love_language, years_together, kids_names, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscriber_id) DO UPDATE SET
			how_we_met = EXCLUDED.how_we_met,
			inside_jokes = EXCLUDED.inside_jokes,
			love_language = EXCLUDED.love_language,
			years_together = EXCLUDED.years_together,
			kids_names = EXCLUDED.kids_names,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query, p.SubscriberID, p.HowWeMet, p.InsideJokes,
		p.LoveLanguage, p.YearsTogether, p.KidsNames, p.UpdatedAt)
	return err
}

// GetProfile retrieves a subscriber's relationship profile.
func (s *Store) GetProfile(ctx context.Context, subscriberID string) (*domain.RelationshipProfile, error) {
	query := `SELECT subscriber_id, how_we_met, inside_jokes, love_language, years_together, kids_names, updated_at
		FROM relationship_profiles WHERE subscriber_id = $1`

	p := &domain.RelationshipProfile{}
	err := s.db.QueryRowContext(ctx, query, subscriberID).Scan(
		&p.SubscriberID, &p.HowWeMet, &p.InsideJokes, &p.LoveLanguage,
		&p.YearsTogether, &p.KidsNames, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}
