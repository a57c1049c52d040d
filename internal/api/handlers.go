package api

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/httputil"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
	"github.com/lovenotes/lovenotes/internal/store"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status":      "ok",
		"environment": s.cfg.Environment,
	})
}

type signupRequest struct {
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	WifeName        string `json:"wifeName"`
	Nickname        string `json:"nickname"`
	Theme           string `json:"theme"`
	Frequency       string `json:"frequency"`
	AnniversaryDate string `json:"anniversaryDate"`
	WifeBirthday    string `json:"wifeBirthday"`
}

type signupResponse struct {
	Success      bool   `json:"success"`
	SubscriberID string `json:"subscriberId"`
	CheckoutURL  string `json:"checkoutUrl"`
}

// handleSignup creates the account, issues the auth cookie, sends the first
// note when a channel is configured, and hands back the redirect target
// (checkout when billing is live, the success page otherwise).
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	if req.Email == "" || req.Phone == "" || req.WifeName == "" {
		httputil.BadRequest(w, "missing required fields")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		httputil.BadRequest(w, "invalid email format")
		return
	}
	phone := personalization.SanitizePhone(req.Phone)
	if len(phone) != 10 {
		httputil.BadRequest(w, "invalid phone number")
		return
	}
	wifeName := personalization.SanitizeName(req.WifeName)
	if wifeName == "" {
		httputil.BadRequest(w, "invalid name")
		return
	}

	theme := req.Theme
	if !domain.ValidTheme(theme) {
		theme = "romantic"
	}
	cadence := domain.Cadence(req.Frequency)
	switch cadence {
	case domain.CadenceDaily, domain.CadenceWeekly, domain.CadenceBiWeekly:
	default:
		cadence = domain.CadenceDaily
	}

	sub := &domain.Subscriber{
		Email:           req.Email,
		Phone:           phone,
		WifeName:        wifeName,
		Nickname:        personalization.SanitizeName(req.Nickname),
		Theme:           theme,
		Cadence:         cadence,
		AnniversaryDate: req.AnniversaryDate,
		WifeBirthday:    req.WifeBirthday,
	}
	if err := s.store.CreateSubscriber(r.Context(), sub); err != nil {
		if err == store.ErrDuplicateEmail {
			// Same generic shape as other validation failures; the response
			// must not confirm which emails are registered.
			httputil.BadRequest(w, "signup failed")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	tok, err := s.tokens.Issue(sub.ID, sub.Email)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	s.setAuthCookie(w, tok)

	// First note right away; failures are logged in the send log and must
	// not break signup.
	if sel, err := s.engine.NextMessage(r.Context(), sub, s.now()); err == nil {
		if _, err := s.deliverer.Deliver(r.Context(), sub, sel.Message.ID, sel.Text, sel.Occasion); err != nil {
			logger.Error("welcome delivery failed", "subscriber_id", sub.ID, "error", err)
		}
	} else {
		logger.Error("welcome selection failed", "subscriber_id", sub.ID, "error", err)
	}

	redirect := "/success?name=" + url.QueryEscape(wifeName)
	if s.billing != nil && s.billing.Configured() {
		if checkoutURL, err := s.billing.CreateCheckoutSession(r.Context(), sub); err == nil {
			redirect = checkoutURL
		} else {
			logger.Error("checkout session failed", "subscriber_id", sub.ID, "error", err)
		}
	}

	httputil.OK(w, signupResponse{Success: true, SubscriberID: sub.ID, CheckoutURL: redirect})
}

// setAuthCookie issues the session cookie. The dashboard runs on a
// different origin, so the cookie carries SameSite=None, which requires
// Secure; that makes local development HTTPS-only as well.
func (s *Server) setAuthCookie(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(s.cfg.Auth.TokenTTL() / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// handleRandomMessage is the anonymous preview: no auth, no history.
func (s *Server) handleRandomMessage(w http.ResponseWriter, r *http.Request) {
	theme := r.URL.Query().Get("theme")
	name := r.URL.Query().Get("name")

	sel, err := s.engine.RandomMessage(r.Context(), theme, name)
	if err == personalization.ErrNoContent {
		httputil.NotFound(w, "no messages available")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, sel)
}

// handleTestCreateUser creates a ready-made active subscriber and returns
// its token. Never routed in production.
func (s *Server) handleTestCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		WifeName string `json:"wifeName"`
		Theme    string `json:"theme"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		req.Email = fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
	}
	if req.WifeName == "" {
		req.WifeName = "Bari"
	}
	if !domain.ValidTheme(req.Theme) {
		req.Theme = "romantic"
	}

	sub := &domain.Subscriber{
		Email:     req.Email,
		Phone:     "5551234567",
		WifeName:  req.WifeName,
		Theme:     req.Theme,
		Cadence:   domain.CadenceDaily,
		Status:    domain.StatusActive,
		Tier:      domain.TierPaid,
		Onboarded: true,
	}
	if err := s.store.CreateSubscriber(r.Context(), sub); err != nil {
		httputil.InternalError(w, err)
		return
	}

	tok, err := s.tokens.Issue(sub.ID, sub.Email)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"success":    true,
		"subscriber": sub,
		"token":      tok,
	})
}

// handleTestSendMessage triggers one delivery outside the daily batch.
// Never routed in production.
func (s *Server) handleTestSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		SubscriberID string `json:"subscriberId"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	var (
		sub *domain.Subscriber
		err error
	)
	switch {
	case req.SubscriberID != "":
		sub, err = s.store.GetSubscriber(r.Context(), req.SubscriberID)
	case req.Email != "":
		sub, err = s.store.GetSubscriberByEmail(r.Context(), req.Email)
	default:
		httputil.BadRequest(w, "email or subscriberId required")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if sub == nil {
		httputil.NotFound(w, "subscriber not found")
		return
	}

	sel, err := s.engine.NextMessage(r.Context(), sub, s.now())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	res, err := s.deliverer.Deliver(r.Context(), sub, sel.Message.ID, sel.Text, sel.Occasion)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"success":  res.Err == nil,
		"channel":  res.Channel,
		"status":   res.Status,
		"selected": sel,
	})
}
