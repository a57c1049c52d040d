// Package delivery routes a selected message to the subscriber through the
// configured channel (SMS, then email, then a ready-for-manual-send state)
// and keeps the send log audit trail.
package delivery

import (
	"context"

	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
)

// SendLogStore is the slice of the store the orchestrator needs.
type SendLogStore interface {
	CreateSendLog(ctx context.Context, l *domain.SendLog) error
	UpdateSendLog(ctx context.Context, id string, status domain.SendStatus, providerID, errorMessage string) error
}

// Result describes one delivery attempt.
type Result struct {
	SendLogID string            `json:"send_log_id"`
	Channel   string            `json:"channel"` // "sms", "email", or "" for ready
	Status    domain.SendStatus `json:"status"`
	Err       error             `json:"-"`
}

// Orchestrator delivers personalized content. Either sender may be nil,
// meaning that channel is not configured.
type Orchestrator struct {
	store        SendLogStore
	sms          SMSSender
	email        EmailSender
	dashboardURL string
}

// NewOrchestrator creates a delivery orchestrator.
func NewOrchestrator(store SendLogStore, sms SMSSender, email EmailSender, dashboardURL string) *Orchestrator {
	return &Orchestrator{store: store, sms: sms, email: email, dashboardURL: dashboardURL}
}

// Deliver sends one message to a subscriber. The send log row is written
// pending before any external call, so a crash mid-delivery still leaves an
// audit record. Channel precedence is fixed: SMS when configured and the
// subscriber has a phone, else email, else the row is marked ready for
// manual sending. Gateway failures are recorded and returned in the result,
// never escalated to the caller as an error.
func (o *Orchestrator) Deliver(ctx context.Context, sub *domain.Subscriber, messageID int64, content string, occasion domain.Occasion) (*Result, error) {
	entry := &domain.SendLog{
		SubscriberID: sub.ID,
		MessageID:    messageID,
		Status:       domain.SendPending,
	}
	if err := o.store.CreateSendLog(ctx, entry); err != nil {
		return nil, err
	}
	res := &Result{SendLogID: entry.ID}

	style := StyleFor(occasion)

	switch {
	case o.sms != nil && sub.Phone != "":
		res.Channel = "sms"
		body := style.SMSPrefix(sub.WifeName) + "\n\n" + content + "\n\n(Reply STOP to unsubscribe)"
		sid, err := o.sms.SendSMS(sub.Phone, body)
		o.record(ctx, res, entry.ID, sid, err)

	case o.email != nil:
		res.Channel = "email"
		subject := style.Subject(sub.WifeName)
		htmlBody := RenderEmailHTML(content, sub.WifeName, o.dashboardURL, style)
		textBody := RenderEmailText(content, sub.WifeName, o.dashboardURL, style)
		id, err := o.email.SendEmail(ctx, sub.Email, subject, htmlBody, textBody)
		o.record(ctx, res, entry.ID, id, err)

	default:
		// No channel configured: queue for manual handling.
		res.Status = domain.SendReady
		if err := o.store.UpdateSendLog(ctx, entry.ID, domain.SendReady, "", ""); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (o *Orchestrator) record(ctx context.Context, res *Result, logID, providerID string, sendErr error) {
	if sendErr != nil {
		res.Status = domain.SendFailed
		res.Err = sendErr
		if err := o.store.UpdateSendLog(ctx, logID, domain.SendFailed, "", sendErr.Error()); err != nil {
			logger.Error("send log update failed", "send_log_id", logID, "error", err)
		}
		return
	}
	res.Status = domain.SendSent
	if err := o.store.UpdateSendLog(ctx, logID, domain.SendSent, providerID, ""); err != nil {
		logger.Error("send log update failed", "send_log_id", logID, "error", err)
	}
}
