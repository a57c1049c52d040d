package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/pkg/httputil"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
	"github.com/lovenotes/lovenotes/internal/token"
)

type contextKey string

const subscriberIDKey contextKey = "subscriber_id"

// SubscriberID returns the authenticated subscriber id from the request
// context, or "" on an unauthenticated request.
func SubscriberID(ctx context.Context) string {
	id, _ := ctx.Value(subscriberIDKey).(string)
	return id
}

// bearerToken extracts the credential: the auth cookie first, then the
// Authorization header.
func (s *Server) bearerToken(r *http.Request) string {
	if c, err := r.Cookie(s.cfg.Auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}

// authenticate gates protected routes. Missing and invalid credentials get
// distinct 401 messages; a missing signing secret is a server
// misconfiguration, never an open door.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.bearerToken(r)
		if raw == "" {
			httputil.Unauthorized(w, "authentication required")
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err == token.ErrNoSecret {
			logger.Error("auth refused: signing secret not configured")
			httputil.Error(w, http.StatusInternalServerError, "server configuration error")
			return
		}
		if err != nil {
			httputil.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), subscriberIDKey, claims.SubscriberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentSubscriber loads the authenticated subscriber. Writes the error
// response and returns nil when the account cannot be loaded.
func (s *Server) currentSubscriber(w http.ResponseWriter, r *http.Request) *domain.Subscriber {
	id := SubscriberID(r.Context())
	sub, err := s.store.GetSubscriber(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return nil
	}
	if sub == nil {
		// Valid token for a deleted account.
		httputil.NotFound(w, "subscriber not found")
		return nil
	}
	return sub
}
