// Package billing bridges subscriptions to Stripe: checkout session
// creation and webhook-driven state transitions.
package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/lovenotes/lovenotes/internal/config"
	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
)

// Store is the slice of the store the billing bridge needs.
type Store interface {
	GetSubscriberByStripeCustomer(ctx context.Context, customerID string) (*domain.Subscriber, error)
	UpdateSubscriberBilling(ctx context.Context, id, customerID, subscriptionID string, status domain.SubscriberStatus, tier domain.Tier) error
}

// Bridge creates checkout sessions and reconciles webhook events.
type Bridge struct {
	store Store
	cfg   config.StripeConfig
}

// NewBridge creates a billing bridge and sets the global Stripe key.
func NewBridge(store Store, cfg config.StripeConfig) *Bridge {
	stripe.Key = cfg.SecretKey
	return &Bridge{store: store, cfg: cfg}
}

// Configured reports whether checkout sessions can be created.
func (b *Bridge) Configured() bool { return b.cfg.Configured() }

// ensureCustomer returns the subscriber's Stripe customer id, creating one
// on first use and persisting it. Reusing the stored id keeps repeated
// checkout attempts from piling up duplicate customers.
func (b *Bridge) ensureCustomer(ctx context.Context, sub *domain.Subscriber) (string, error) {
	if sub.StripeCustomerID != "" {
		return sub.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(sub.Email),
		Metadata: map[string]string{
			"subscriber_id": sub.ID,
		},
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}

	if err := b.store.UpdateSubscriberBilling(ctx, sub.ID, cust.ID, sub.StripeSubscriptionID, sub.Status, sub.Tier); err != nil {
		return "", err
	}
	sub.StripeCustomerID = cust.ID
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription checkout with a 7-day trial.
// Payment method collection is mandatory even during the trial.
func (b *Bridge) CreateCheckoutSession(ctx context.Context, sub *domain.Subscriber) (string, error) {
	if !b.cfg.Configured() {
		return "", fmt.Errorf("billing not configured")
	}

	customerID, err := b.ensureCustomer(ctx, sub)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(b.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(int64(b.cfg.TrialDays)),
		},
		PaymentMethodCollection: stripe.String("always"),
		SuccessURL:              stripe.String(b.cfg.SuccessURL),
		CancelURL:               stripe.String(b.cfg.CancelURL),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// VerifyWebhook checks the Stripe-Signature header and parses the event.
func (b *Bridge) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, b.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}

// WebhookSecretConfigured reports whether signature verification is possible.
func (b *Bridge) WebhookSecretConfigured() bool { return b.cfg.WebhookSecret != "" }

// Transition is the state change a webhook event maps to. Apply is false
// for events that change nothing (trialing updates, payment failures,
// unknown types).
type Transition struct {
	CustomerID     string
	SubscriptionID string
	Status         domain.SubscriberStatus
	Tier           domain.Tier
	Apply          bool
}

// MapEvent is the pure event-to-transition mapping. It never fails on
// unrecognized event types; those simply yield no transition.
func MapEvent(event stripe.Event) Transition {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Warn("stripe checkout payload unparseable", "error", err)
			return Transition{}
		}
		t := Transition{Status: domain.StatusActive, Tier: domain.TierPaid, Apply: true}
		if sess.Customer != nil {
			t.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			t.SubscriptionID = sess.Subscription.ID
		}
		return t

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			logger.Warn("stripe subscription payload unparseable", "error", err)
			return Transition{}
		}
		t := Transition{SubscriptionID: sub.ID}
		if sub.Customer != nil {
			t.CustomerID = sub.Customer.ID
		}
		switch sub.Status {
		case stripe.SubscriptionStatusActive:
			t.Status = domain.StatusActive
			t.Tier = domain.TierPaid
			t.Apply = true
		case stripe.SubscriptionStatusTrialing:
			// Subscriber is already in trial; nothing changes.
		}
		return t

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			logger.Warn("stripe subscription payload unparseable", "error", err)
			return Transition{}
		}
		t := Transition{
			SubscriptionID: sub.ID,
			Status:         domain.StatusCancelled,
			Tier:           domain.TierFree,
			Apply:          true,
		}
		if sub.Customer != nil {
			t.CustomerID = sub.Customer.ID
		}
		return t

	case "invoice.payment_failed":
		logger.Warn("stripe payment failed", "event_id", event.ID)
		return Transition{}

	default:
		logger.Info("stripe event ignored", "type", string(event.Type))
		return Transition{}
	}
}

// HandleWebhookEvent maps an event and applies its transition to the
// subscriber looked up by Stripe customer id. Events for unknown customers
// are logged and dropped, not errors.
func (b *Bridge) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	t := MapEvent(event)
	if !t.Apply {
		return nil
	}
	if t.CustomerID == "" {
		logger.Warn("stripe event missing customer id", "type", string(event.Type))
		return nil
	}

	sub, err := b.store.GetSubscriberByStripeCustomer(ctx, t.CustomerID)
	if err != nil {
		return err
	}
	if sub == nil {
		logger.Warn("stripe event for unknown customer", "customer_id", t.CustomerID)
		return nil
	}

	subscriptionID := t.SubscriptionID
	if subscriptionID == "" {
		subscriptionID = sub.StripeSubscriptionID
	}
	return b.store.UpdateSubscriberBilling(ctx, sub.ID, t.CustomerID, subscriptionID, t.Status, t.Tier)
}
