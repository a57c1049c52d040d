package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// ListPromptTemplates returns the active prompt catalog.
func (s *Store) ListPromptTemplates(ctx context.Context) ([]*domain.PromptTemplate, error) {
	query := `SELECT id, theme, occasion, nudge, starter, requires_log, tags
		FROM prompt_templates WHERE active ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.PromptTemplate
	for rows.Next() {
		t := &domain.PromptTemplate{}
		if err := rows.Scan(&t.ID, &t.Theme, &t.Occasion, &t.Nudge, &t.Starter, &t.RequiresLog, &t.Tags); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// ListRecentTemplateIDs returns template IDs the subscriber was served since
// the cutoff, so the engine avoids repeating prompts inside the recency
// window.
func (s *Store) ListRecentTemplateIDs(ctx context.Context, subscriberID string, since time.Time) ([]int64, error) {
	query := `SELECT DISTINCT template_id FROM daily_prompts
		WHERE subscriber_id = $1 AND created_at >= $2`

	rows, err := s.db.QueryContext(ctx, query, subscriberID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetDailyPrompt retrieves the prompt in effect for a subscriber on a
// calendar date, if any. A date can hold several rows once alternatives have
// been drawn; the newest row is the one in effect.
func (s *Store) GetDailyPrompt(ctx context.Context, subscriberID, forDate string) (*domain.DailyPrompt, error) {
	query := `SELECT id, subscriber_id, template_id, nudge, starter, for_date, completed, created_at
		FROM daily_prompts WHERE subscriber_id = $1 AND for_date = $2
		ORDER BY created_at DESC LIMIT 1`

	p := &domain.DailyPrompt{}
	err := s.db.QueryRowContext(ctx, query, subscriberID, forDate).Scan(
		&p.ID, &p.SubscriberID, &p.TemplateID, &p.Nudge, &p.Starter, &p.ForDate, &p.Completed, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListTemplateIDsForDate returns every template already served to the
// subscriber on a date, so alternative draws exclude all of them.
func (s *Store) ListTemplateIDsForDate(ctx context.Context, subscriberID, forDate string) ([]int64, error) {
	query := `SELECT template_id FROM daily_prompts
		WHERE subscriber_id = $1 AND for_date = $2 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, subscriberID, forDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateDailyPrompt records a prompt served for a date. Each alternative
// draw adds a row for the same date.
func (s *Store) CreateDailyPrompt(ctx context.Context, p *domain.DailyPrompt) (*domain.DailyPrompt, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()

	query := `INSERT INTO daily_prompts (id, subscriber_id, template_id, nudge, starter, for_date, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query, p.ID, p.SubscriberID, p.TemplateID, p.Nudge,
		p.Starter, p.ForDate, p.Completed, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CountPromptsSince counts distinct prompt days after the cutoff, for the
// free-tier rolling quota. Alternative draws on a day already counted do
// not consume extra quota.
func (s *Store) CountPromptsSince(ctx context.Context, subscriberID string, since time.Time) (int, error) {
	query := `SELECT COUNT(DISTINCT for_date) FROM daily_prompts WHERE subscriber_id = $1 AND created_at >= $2`
	var n int
	err := s.db.QueryRowContext(ctx, query, subscriberID, since).Scan(&n)
	return n, err
}

// MarkPromptCompleted flags a daily prompt as answered. The subscriber
// predicate keeps callers from completing someone else's prompt.
func (s *Store) MarkPromptCompleted(ctx context.Context, promptID, subscriberID string) error {
	query := `UPDATE daily_prompts SET completed = TRUE WHERE id = $1 AND subscriber_id = $2`
	_, err := s.db.ExecContext(ctx, query, promptID, subscriberID)
	return err
}
