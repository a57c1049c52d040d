// Package polish rewrites a subscriber's draft message with an AI gateway,
// keeping their voice while smoothing the wording.
package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lovenotes/lovenotes/internal/config"
	"github.com/lovenotes/lovenotes/internal/domain"
)

// DailyLimit is the per-subscriber rewrite quota per calendar day.
const DailyLimit = 5

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient creates a polish client.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: "https://api.openai.com/v1",
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// Configured reports whether the gateway can be called.
func (c *Client) Configured() bool { return c.apiKey != "" }

// systemInstruction builds the rewrite persona, folding in whatever
// relationship context the subscriber has shared so the output sounds like
// them, not like a greeting card.
func systemInstruction(sub *domain.Subscriber, profile *domain.RelationshipProfile, tone string) string {
	var b strings.Builder
	b.WriteString("You help a husband polish a short message to his wife, ")
	b.WriteString(sub.WifeName)
	b.WriteString(". Keep his voice and meaning. Fix flow and warmth, never add facts he didn't write. ")
	b.WriteString("Return only the rewritten message, no preamble, under 400 characters.")

	if tone != "" {
		b.WriteString(" Target tone: ")
		b.WriteString(tone)
		b.WriteString(".")
	}
	if profile != nil {
		if profile.HowWeMet != "" {
			b.WriteString(" They met: ")
			b.WriteString(profile.HowWeMet)
			b.WriteString(".")
		}
		if profile.InsideJokes != "" {
			b.WriteString(" Inside jokes: ")
			b.WriteString(profile.InsideJokes)
			b.WriteString(".")
		}
		if profile.LoveLanguage != "" {
			b.WriteString(" Her love language: ")
			b.WriteString(profile.LoveLanguage)
			b.WriteString(".")
		}
		if profile.YearsTogether > 0 {
			b.WriteString(fmt.Sprintf(" Together %d years.", profile.YearsTogether))
		}
		if profile.KidsNames != "" {
			b.WriteString(" Kids: ")
			b.WriteString(profile.KidsNames)
			b.WriteString(".")
		}
	}
	return b.String()
}

// Rewrite polishes a draft. The subscriber's relationship profile (may be
// nil) is folded into the system instruction; the draft goes in verbatim as
// the user message.
func (c *Client) Rewrite(ctx context.Context, sub *domain.Subscriber, profile *domain.RelationshipProfile, draft, tone string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai api key not configured")
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction(sub, profile, tone)},
			{"role": "user", "content": draft},
		},
		"temperature": 0.7,
		"max_tokens":  300,
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
