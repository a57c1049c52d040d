package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lovenotes/lovenotes/internal/domain"
)

const subscriberColumns = `id, email, phone, wife_name, nickname, theme, frequency, status, tier,
	anniversary_date, wife_birthday, onboarded, stripe_customer_id, stripe_subscription_id,
	trial_started_at, created_at, updated_at`

func scanSubscriber(row interface{ Scan(...any) error }) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{}
	err := row.Scan(
		&sub.ID, &sub.Email, &sub.Phone, &sub.WifeName, &sub.Nickname, &sub.Theme,
		&sub.Cadence, &sub.Status, &sub.Tier, &sub.AnniversaryDate, &sub.WifeBirthday,
		&sub.Onboarded, &sub.StripeCustomerID, &sub.StripeSubscriptionID,
		&sub.TrialStartedAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateSubscriber inserts a new subscriber. Returns ErrDuplicateEmail when
// the email is already registered.
func (s *Store) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now()
	sub.TrialStartedAt = now
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = domain.StatusTrial
	}
	if sub.Tier == "" {
		sub.Tier = domain.TierFree
	}

	query := `INSERT INTO subscribers (id, email, phone, wife_name, nickname, theme, frequency,
		status, tier, anniversary_date, wife_birthday, onboarded, stripe_customer_id,
		stripe_subscription_id, trial_started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := s.db.ExecContext(ctx, query, sub.ID, sub.Email, sub.Phone, sub.WifeName,
		sub.Nickname, sub.Theme, sub.Cadence, sub.Status, sub.Tier, sub.AnniversaryDate,
		sub.WifeBirthday, sub.Onboarded, sub.StripeCustomerID, sub.StripeSubscriptionID,
		sub.TrialStartedAt, sub.CreatedAt, sub.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// GetSubscriber retrieves a subscriber by ID.
func (s *Store) GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`
	sub, err := scanSubscriber(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// GetSubscriberByEmail retrieves a subscriber by email.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE email = $1`
	sub, err := scanSubscriber(s.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// GetSubscriberByStripeCustomer retrieves a subscriber by Stripe customer ID.
func (s *Store) GetSubscriberByStripeCustomer(ctx context.Context, customerID string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE stripe_customer_id = $1`
	sub, err := scanSubscriber(s.db.QueryRowContext(ctx, query, customerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// UpdateSubscriber persists the mutable preference fields.
func (s *Store) UpdateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	sub.UpdatedAt = time.Now()
	query := `UPDATE subscribers SET phone = $2, wife_name = $3, nickname = $4, theme = $5,
		frequency = $6, anniversary_date = $7, wife_birthday = $8, onboarded = $9, updated_at = $10
		WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, sub.ID, sub.Phone, sub.WifeName, sub.Nickname,
		sub.Theme, sub.Cadence, sub.AnniversaryDate, sub.WifeBirthday, sub.Onboarded, sub.UpdatedAt)
	return err
}

// UpdateSubscriberBilling updates the billing-owned fields only. Called from
// webhook processing, so it never touches preference fields.
func (s *Store) UpdateSubscriberBilling(ctx context.Context, id, customerID, subscriptionID string, status domain.SubscriberStatus, tier domain.Tier) error {
	query := `UPDATE subscribers SET stripe_customer_id = $2, stripe_subscription_id = $3,
		status = $4, tier = $5, updated_at = now() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id, customerID, subscriptionID, status, tier)
	return err
}

// ListDeliverableSubscribers returns everyone the daily sweep considers:
// active subscribers, trials (the trial window cutoff is applied by the
// scheduler, which knows "now"), and free-tier subscribers, who stay on the
// weekly cadence regardless of status.
func (s *Store) ListDeliverableSubscribers(ctx context.Context) ([]*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers
		WHERE status IN ('trial', 'active') OR tier = 'free' ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
