// Package api is the HTTP surface: route table, CORS, the auth gate, and
// the request handlers for signup, content, prompts, composition, and
// billing.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v79"

	"github.com/lovenotes/lovenotes/internal/config"
	"github.com/lovenotes/lovenotes/internal/delivery"
	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
	"github.com/lovenotes/lovenotes/internal/token"
)

// Store is the persistence surface the handlers use. Implemented by
// *store.Store; the interface exists so handler tests can run against an
// in-memory fake.
type Store interface {
	CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error
	GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	UpdateSubscriber(ctx context.Context, sub *domain.Subscriber) error

	UpsertProfile(ctx context.Context, p *domain.RelationshipProfile) error
	GetProfile(ctx context.Context, subscriberID string) (*domain.RelationshipProfile, error)

	CreateComposition(ctx context.Context, c *domain.Composition) error
	ListCompositions(ctx context.Context, subscriberID string, limit, offset int) ([]*domain.Composition, error)
	ListFavorites(ctx context.Context, subscriberID string) ([]*domain.Composition, error)
	SetFavorite(ctx context.Context, id, subscriberID string, favorite bool) (bool, error)
	ListCompositionDates(ctx context.Context, subscriberID string, limit int) ([]string, error)
	RecordPolishUse(ctx context.Context, subscriberID string) error
	CountPolishesSince(ctx context.Context, subscriberID string, since time.Time) (int, error)

	CreateJournalEntry(ctx context.Context, e *domain.JournalEntry) error
	ListJournalEntries(ctx context.Context, subscriberID string, limit int) ([]*domain.JournalEntry, error)

	MarkPromptCompleted(ctx context.Context, promptID, subscriberID string) error
	CountMessageHistory(ctx context.Context, subscriberID string) (int, error)
}

// Engine is the personalization surface the handlers use.
type Engine interface {
	NextMessage(ctx context.Context, sub *domain.Subscriber, now time.Time) (*personalization.Selection, error)
	RandomMessage(ctx context.Context, theme, name string) (*personalization.Selection, error)
	TodayPrompt(ctx context.Context, sub *domain.Subscriber, now time.Time) (*domain.DailyPrompt, error)
	AlternativePrompt(ctx context.Context, sub *domain.Subscriber, now time.Time) (*domain.DailyPrompt, error)
}

// Deliverer sends a message through the configured channel.
type Deliverer interface {
	Deliver(ctx context.Context, sub *domain.Subscriber, messageID int64, content string, occasion domain.Occasion) (*delivery.Result, error)
}

// Polisher rewrites a draft with the AI gateway.
type Polisher interface {
	Configured() bool
	Rewrite(ctx context.Context, sub *domain.Subscriber, profile *domain.RelationshipProfile, draft, tone string) (string, error)
}

// Billing is the payment bridge surface the handlers use.
type Billing interface {
	Configured() bool
	WebhookSecretConfigured() bool
	CreateCheckoutSession(ctx context.Context, sub *domain.Subscriber) (string, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
	HandleWebhookEvent(ctx context.Context, event stripe.Event) error
}

// Server is the API server.
type Server struct {
	cfg       *config.Config
	store     Store
	tokens    *token.Service
	engine    Engine
	deliverer Deliverer
	polisher  Polisher
	billing   Billing

	router *chi.Mux
	server *http.Server
	now    func() time.Time
}

// NewServer wires the API server. polisher and billing may be nil when the
// corresponding gateway is not configured.
func NewServer(cfg *config.Config, store Store, tokens *token.Service, engine Engine, deliverer Deliverer, polisher Polisher, billing Billing) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		tokens:    tokens,
		engine:    engine,
		deliverer: deliverer,
		polisher:  polisher,
		billing:   billing,
		now:       time.Now,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.GetHost(), s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", addr, "environment", s.cfg.Environment)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
