// The server binary runs the HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/lovenotes/lovenotes/internal/api"
	"github.com/lovenotes/lovenotes/internal/billing"
	"github.com/lovenotes/lovenotes/internal/config"
	"github.com/lovenotes/lovenotes/internal/delivery"
	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
	"github.com/lovenotes/lovenotes/internal/polish"
	"github.com/lovenotes/lovenotes/internal/store"
	"github.com/lovenotes/lovenotes/internal/token"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" && cfg.IsProduction() {
		logger.Error("JWT_SECRET is required in production")
		os.Exit(1)
	}

	db, err := store.Open(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	st := store.NewStore(db)

	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	if len(cfg.Content.Themes) > 0 {
		domain.Themes = cfg.Content.Themes
	}
	engine := personalization.NewEngine(st)
	engine.SetWindows(
		time.Duration(cfg.Content.PromptRecencyDays)*24*time.Hour,
		time.Duration(cfg.Content.FreePromptWindowDays)*24*time.Hour,
	)

	var sms delivery.SMSSender
	if cfg.Twilio.Configured() {
		sms = delivery.NewTwilioSender(cfg.Twilio)
	}
	var email delivery.EmailSender
	if cfg.SendGrid.Configured() {
		email = delivery.NewSendGridSender(cfg.SendGrid)
	}
	dashboardURL := cfg.CORS.DefaultOrigin + "/dashboard"
	orchestrator := delivery.NewOrchestrator(st, sms, email, dashboardURL)

	var polisher api.Polisher
	if cfg.OpenAI.Configured() {
		polisher = polish.NewClient(cfg.OpenAI)
	}
	var bills api.Billing
	if cfg.Stripe.SecretKey != "" {
		bills = billing.NewBridge(st, cfg.Stripe)
	}

	server := api.NewServer(cfg, st, tokens, engine, orchestrator, polisher, bills)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
