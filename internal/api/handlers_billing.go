package api

import (
	"io"
	"net/http"

	"github.com/lovenotes/lovenotes/internal/pkg/httputil"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
)

// maxWebhookBody caps the webhook payload read (Stripe events are small).
const maxWebhookBody = 1 << 16

func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	if s.billing == nil || !s.billing.Configured() {
		httputil.Error(w, http.StatusServiceUnavailable, "billing is not available")
		return
	}

	checkoutURL, err := s.billing.CreateCheckoutSession(r.Context(), sub)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"url": checkoutURL})
}

// handleStripeWebhook verifies the signature and applies the event's
// subscription transition. A 400 here makes Stripe retry; processing
// failures after verification are our problem and return 500.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if s.billing == nil || !s.billing.WebhookSecretConfigured() {
		httputil.NotFound(w, "not found")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httputil.BadRequest(w, "unreadable payload")
		return
	}

	event, err := s.billing.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn("stripe webhook signature rejected", "error", err)
		httputil.BadRequest(w, "invalid signature")
		return
	}

	if err := s.billing.HandleWebhookEvent(r.Context(), event); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]bool{"received": true})
}
