// Package scheduler runs the daily send batch: walk every deliverable
// subscriber, decide whether today is a send day for them, draw their next
// message, and hand it to delivery. One subscriber's failure never stops
// the batch.
package scheduler

import (
	"context"
	"time"

	"github.com/lovenotes/lovenotes/internal/delivery"
	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
)

// Skip reasons recorded per subscriber in the batch report.
const (
	SkipTrialExpired   = "trial_expired"
	SkipNotOnboarded   = "not_onboarded"
	SkipNotSendDay     = "not_send_day"
	SkipAlreadySentDay = "already_sent_today"
)

// BiWeeklySendDays are the days of the month a bi-weekly subscriber
// receives a message.
var BiWeeklySendDays = [2]int{1, 15}

// SubscriberSource is the slice of the store the batch needs.
type SubscriberSource interface {
	ListDeliverableSubscribers(ctx context.Context) ([]*domain.Subscriber, error)
	HasSendSince(ctx context.Context, subscriberID string, since time.Time) (bool, error)
}

// Selector draws the next message for a subscriber.
type Selector interface {
	NextMessage(ctx context.Context, sub *domain.Subscriber, now time.Time) (*personalization.Selection, error)
}

// Deliverer sends a selected message through the configured channel.
type Deliverer interface {
	Deliver(ctx context.Context, sub *domain.Subscriber, messageID int64, content string, occasion domain.Occasion) (*delivery.Result, error)
}

// ItemResult is the outcome for one subscriber in a batch run.
type ItemResult struct {
	SubscriberID string            `json:"subscriber_id"`
	Email        string            `json:"email"`
	Skipped      bool              `json:"skipped,omitempty"`
	SkipReason   string            `json:"skip_reason,omitempty"`
	Channel      string            `json:"channel,omitempty"`
	Status       domain.SendStatus `json:"status,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Report summarizes a batch run.
type Report struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Total      int          `json:"total"`
	Delivered  int          `json:"delivered"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Items      []ItemResult `json:"items"`
}

// Job is one configured batch. WeeklyDay is the weekday weekly and
// free-tier subscribers receive their message on.
type Job struct {
	source    SubscriberSource
	selector  Selector
	deliverer Deliverer
	weeklyDay time.Weekday
}

// NewJob creates a batch job.
func NewJob(source SubscriberSource, selector Selector, deliverer Deliverer, weeklyDay time.Weekday) *Job {
	return &Job{source: source, selector: selector, deliverer: deliverer, weeklyDay: weeklyDay}
}

// eligibility decides whether now is a send moment for this subscriber.
// Returns the skip reason, or "" when the subscriber should receive a
// message.
func (j *Job) eligibility(sub *domain.Subscriber, now time.Time) string {
	if !sub.Onboarded {
		return SkipNotOnboarded
	}

	// Free tier gets at most the weekly cadence regardless of preference,
	// and a lapsed trial does not end it: the free weekly message is the
	// product's floor.
	if sub.Tier == domain.TierFree {
		if now.Weekday() != j.weeklyDay {
			return SkipNotSendDay
		}
		return ""
	}

	if sub.Status == domain.StatusTrial && !sub.InTrialWindow(now) {
		return SkipTrialExpired
	}

	switch sub.Cadence {
	case domain.CadenceWeekly:
		if now.Weekday() != j.weeklyDay {
			return SkipNotSendDay
		}
	case domain.CadenceBiWeekly:
		if d := now.Day(); d != BiWeeklySendDays[0] && d != BiWeeklySendDays[1] {
			return SkipNotSendDay
		}
	}
	return ""
}

// Run executes one batch at the given time. Per-subscriber errors are
// captured in the report; Run only fails when the subscriber list itself
// cannot be loaded.
func (j *Job) Run(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{StartedAt: now}

	subs, err := j.source.ListDeliverableSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	report.Total = len(subs)

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, sub := range subs {
		item := ItemResult{SubscriberID: sub.ID, Email: sub.Email}

		if reason := j.eligibility(sub, now); reason != "" {
			item.Skipped = true
			item.SkipReason = reason
			report.Skipped++
			report.Items = append(report.Items, item)
			continue
		}

		// Idempotency guard: a retried batch must not double-send.
		sent, err := j.source.HasSendSince(ctx, sub.ID, dayStart)
		if err != nil {
			item.Error = err.Error()
			report.Failed++
			report.Items = append(report.Items, item)
			continue
		}
		if sent {
			item.Skipped = true
			item.SkipReason = SkipAlreadySentDay
			report.Skipped++
			report.Items = append(report.Items, item)
			continue
		}

		sel, err := j.selector.NextMessage(ctx, sub, now)
		if err != nil {
			logger.Error("batch message selection failed",
				"subscriber_id", sub.ID, "error", err)
			item.Error = err.Error()
			report.Failed++
			report.Items = append(report.Items, item)
			continue
		}

		res, err := j.deliverer.Deliver(ctx, sub, sel.Message.ID, sel.Text, sel.Occasion)
		if err != nil {
			logger.Error("batch delivery failed",
				"subscriber_id", sub.ID, "error", err)
			item.Error = err.Error()
			report.Failed++
			report.Items = append(report.Items, item)
			continue
		}

		item.Channel = res.Channel
		item.Status = res.Status
		if res.Err != nil {
			item.Error = res.Err.Error()
			report.Failed++
		} else {
			report.Delivered++
		}
		report.Items = append(report.Items, item)
	}

	report.FinishedAt = time.Now()
	logger.Info("batch run finished",
		"total", report.Total,
		"delivered", report.Delivered,
		"failed", report.Failed,
		"skipped", report.Skipped)
	return report, nil
}
