package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/lovenotes/lovenotes/internal/config"
)

// EmailSender delivers email. Implemented by SendGridSender; faked in tests.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlContent, textContent string) (providerID string, err error)
}

// SendGridSender sends email via the SendGrid v3 Mail Send API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
	client    *http.Client
}

// NewSendGridSender creates a SendGrid-backed email sender.
func NewSendGridSender(cfg config.SendGridConfig) *SendGridSender {
	return &SendGridSender{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		baseURL:   "https://api.sendgrid.com/v3",
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// SendEmail sends one email. Returns the provider message id from the
// X-Message-Id response header when SendGrid supplies one.
func (s *SendGridSender) SendEmail(ctx context.Context, to, subject, htmlContent, textContent string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("sendgrid api key not configured")
	}

	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": s.fromEmail, "name": s.fromName},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": textContent},
			{"type": "text/html", "value": htmlContent},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/mail/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("sendgrid error %d: %s", resp.StatusCode, string(body))
	}
	return resp.Header.Get("X-Message-Id"), nil
}

// RenderEmailHTML builds the delivery email body. Every user-controlled
// string is escaped immediately before interpolation.
func RenderEmailHTML(content, wifeName, dashboardURL string, style OccasionStyle) string {
	safeContent := html.EscapeString(content)
	safeName := html.EscapeString(wifeName)

	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 20px;">
    <span style="font-size: 48px;">%s</span>
    <h1 style="color: %s; margin: 10px 0;">LoveNotes</h1>
  </div>
  <div style="background: linear-gradient(135deg, #fef2f2, #fdf4ff); padding: 24px; border-radius: 12px; margin-bottom: 20px;">
    <p style="font-size: 18px; line-height: 1.6; color: #374151; margin: 0;">%s</p>
  </div>
  <p style="color: #6b7280; font-size: 14px; text-align: center;">
    Copy this message and send it to %s from your phone 📱
  </p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
  <p style="color: #9ca3af; font-size: 12px; text-align: center;">
    <a href="%s" style="color: %s;">View Dashboard</a>
  </p>
</div>`, style.Emoji, style.Color, safeContent, safeName, dashboardURL, style.Color)
}

// RenderEmailText builds the plain-text alternative body.
func RenderEmailText(content, wifeName, dashboardURL string, style OccasionStyle) string {
	return fmt.Sprintf("%s LoveNotes\n\n%s\n\nCopy this message and send it to %s from your phone.\n\nView Dashboard: %s",
		style.Emoji, content, wifeName, dashboardURL)
}
