// The scheduler binary runs the daily delivery sweep on a cron trigger,
// guarded by a cross-instance lock so multiple replicas never double-send.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/lovenotes/lovenotes/internal/config"
	"github.com/lovenotes/lovenotes/internal/delivery"
	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/distlock"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
	"github.com/lovenotes/lovenotes/internal/scheduler"
	"github.com/lovenotes/lovenotes/internal/store"
)

// lockTTL covers the longest plausible sweep; crashed holders expire.
const lockTTL = 30 * time.Minute

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

	db, err := store.Open(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	st := store.NewStore(db)

	var redisClient *redis.Client
	if cfg.Scheduler.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Scheduler.RedisURL)
		if err != nil {
			logger.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

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

	if len(cfg.Content.Themes) > 0 {
		domain.Themes = cfg.Content.Themes
	}
	engine := personalization.NewEngine(st)
	job := scheduler.NewJob(st, engine, orchestrator, time.Weekday(cfg.Scheduler.WeeklySendDay))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		lock := distlock.New(redisClient, db, "daily-sweep", lockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			logger.Error("sweep lock error", "error", err)
			return
		}
		if !acquired {
			logger.Info("sweep already running elsewhere, skipping")
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				logger.Warn("sweep lock release failed", "error", err)
			}
		}()

		report, err := job.Run(ctx, time.Now())
		if err != nil {
			logger.Error("sweep failed", "error", err)
			return
		}
		logger.Info("sweep complete",
			"total", report.Total,
			"delivered", report.Delivered,
			"failed", report.Failed,
			"skipped", report.Skipped)
	}

	if os.Getenv("RUN_ONCE") == "true" {
		runOnce()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.CronSpec, runOnce); err != nil {
		logger.Error("invalid cron spec", "spec", cfg.Scheduler.CronSpec, "error", err)
		os.Exit(1)
	}
	c.Start()
	logger.Info("scheduler started", "cron", cfg.Scheduler.CronSpec)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped")
}
