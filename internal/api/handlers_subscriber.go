package api

import (
	"net/http"

	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/httputil"
)

// handleGetSubscriber returns the account plus the derived delivery count
// shown on the dashboard.
func (s *Server) handleGetSubscriber(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	received, err := s.store.CountMessageHistory(r.Context(), sub.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, struct {
		*domain.Subscriber
		MessagesReceived int `json:"messagesReceived"`
	}{sub, received})
}

// handleNextMessage draws the subscriber's next personalized message and
// records it in their history.
func (s *Server) handleNextMessage(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	sel, err := s.engine.NextMessage(r.Context(), sub, s.now())
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

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	profile, err := s.store.GetProfile(r.Context(), sub.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if profile == nil {
		profile = &domain.RelationshipProfile{SubscriberID: sub.ID}
	}
	httputil.OK(w, profile)
}

type profileRequest struct {
	HowWeMet      string `json:"howWeMet"`
	InsideJokes   string `json:"insideJokes"`
	LoveLanguage  string `json:"loveLanguage"`
	YearsTogether int    `json:"yearsTogether"`
	KidsNames     string `json:"kidsNames"`
	WifeName      string `json:"wifeName"`
	Nickname      string `json:"nickname"`
}

// handleSaveProfile upserts the relationship profile. Every free-text field
// is sanitized before storage; the subscriber id comes from the token, never
// the body. Saving the profile completes onboarding, which is what makes
// the subscriber eligible for the daily sweep.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	var req profileRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	profile := &domain.RelationshipProfile{
		SubscriberID:  sub.ID,
		HowWeMet:      personalization.SanitizeText(req.HowWeMet),
		InsideJokes:   personalization.SanitizeText(req.InsideJokes),
		LoveLanguage:  personalization.SanitizeText(req.LoveLanguage),
		YearsTogether: req.YearsTogether,
		KidsNames:     personalization.SanitizeText(req.KidsNames),
	}
	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		httputil.InternalError(w, err)
		return
	}

	// Mirror the names onto the subscriber row so message personalization
	// sees them, and record onboarding as complete.
	changed := !sub.Onboarded
	sub.Onboarded = true
	if name := personalization.SanitizeName(req.WifeName); name != "" && name != sub.WifeName {
		sub.WifeName = name
		changed = true
	}
	if nickname := personalization.SanitizeName(req.Nickname); nickname != sub.Nickname {
		sub.Nickname = nickname
		changed = true
	}
	if changed {
		if err := s.store.UpdateSubscriber(r.Context(), sub); err != nil {
			httputil.InternalError(w, err)
			return
		}
	}

	httputil.OK(w, profile)
}
