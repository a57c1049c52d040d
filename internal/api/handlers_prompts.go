package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lovenotes/lovenotes/internal/domain"
	"github.com/lovenotes/lovenotes/internal/personalization"
	"github.com/lovenotes/lovenotes/internal/pkg/httputil"
	"github.com/lovenotes/lovenotes/internal/pkg/logger"
)

// handleTodayPrompt returns today's writing prompt. Hitting the free-tier
// quota is a normal outcome, not an error: the client gets a 200 with a
// limitReached flag so it can render the upgrade nudge.
func (s *Server) handleTodayPrompt(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	prompt, err := s.engine.TodayPrompt(r.Context(), sub, s.now())
	if err == personalization.ErrLimitReached {
		httputil.OK(w, map[string]any{
			"limitReached": true,
			"message":      "You've used this week's free prompt. Upgrade for a new one every day.",
		})
		return
	}
	if err == personalization.ErrNoContent {
		httputil.NotFound(w, "no prompts available")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, prompt)
}

// handleAlternativePrompt swaps today's prompt for a different one.
func (s *Server) handleAlternativePrompt(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	prompt, err := s.engine.AlternativePrompt(r.Context(), sub, s.now())
	if err == personalization.ErrLimitReached {
		httputil.OK(w, map[string]any{
			"limitReached": true,
			"message":      "You've used this week's free prompt. Upgrade for a new one every day.",
		})
		return
	}
	if err == personalization.ErrNoContent {
		httputil.NotFound(w, "no prompts available")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, prompt)
}

type composeRequest struct {
	PromptID  string `json:"promptId"`
	Draft     string `json:"draft"`
	Polished  string `json:"polished"`
	FinalText string `json:"finalText"`
	Tone      string `json:"tone"`
}

// handleCompose saves a finished composition and marks the day's prompt
// completed when one was involved.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	var req composeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	finalText := personalization.SanitizeText(req.FinalText)
	if finalText == "" {
		finalText = personalization.SanitizeText(req.Draft)
	}
	if finalText == "" {
		httputil.BadRequest(w, "empty composition")
		return
	}

	comp := &domain.Composition{
		SubscriberID: sub.ID,
		PromptID:     req.PromptID,
		Draft:        personalization.SanitizeText(req.Draft),
		Polished:     personalization.SanitizeText(req.Polished),
		FinalText:    finalText,
		Tone:         personalization.SanitizeName(req.Tone),
	}
	if err := s.store.CreateComposition(r.Context(), comp); err != nil {
		httputil.InternalError(w, err)
		return
	}

	if req.PromptID != "" {
		// Scoped to the authenticated subscriber so a forged prompt id
		// cannot complete someone else's prompt.
		if err := s.store.MarkPromptCompleted(r.Context(), req.PromptID, sub.ID); err != nil {
			logger.Error("prompt completion update failed", "prompt_id", req.PromptID, "error", err)
		}
	}

	httputil.JSON(w, http.StatusCreated, comp)
}

type polishRequest struct {
	Draft string `json:"draft"`
	Tone  string `json:"tone"`
}

// handlePolish rewrites a draft with the AI gateway. The daily quota is
// enforced here; a gateway failure still hands the draft back so the user
// never loses their text.
func (s *Server) handlePolish(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	if s.polisher == nil || !s.polisher.Configured() {
		httputil.Error(w, http.StatusServiceUnavailable, "polish is not available")
		return
	}

	var req polishRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	draft := personalization.SanitizeText(req.Draft)
	if draft == "" {
		httputil.BadRequest(w, "empty draft")
		return
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	used, err := s.store.CountPolishesSince(r.Context(), sub.ID, dayStart)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if used >= s.cfg.OpenAI.DailyLimit {
		httputil.TooManyRequests(w, "daily polish limit reached")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), sub.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	polished, err := s.polisher.Rewrite(r.Context(), sub, profile, draft, personalization.SanitizeName(req.Tone))
	if err != nil {
		logger.Error("polish gateway failed", "subscriber_id", sub.ID, "error", err)
		httputil.OK(w, map[string]any{
			"polished": draft,
			"fallback": true,
		})
		return
	}

	if err := s.store.RecordPolishUse(r.Context(), sub.ID); err != nil {
		logger.Error("polish usage record failed", "subscriber_id", sub.ID, "error", err)
	}

	httputil.OK(w, map[string]any{
		"polished":  polished,
		"remaining": s.cfg.OpenAI.DailyLimit - used - 1,
	})
}

type journalRequest struct {
	Body string `json:"body"`
	Tag  string `json:"tag"`
}

// handleCreateJournal appends a moment to the paid-tier journal.
func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}
	if sub.Tier != domain.TierPaid {
		httputil.Forbidden(w, "the journal is a premium feature")
		return
	}

	var req journalRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	body := personalization.SanitizeText(req.Body)
	if body == "" {
		httputil.BadRequest(w, "empty entry")
		return
	}
	if !domain.ValidJournalTag(req.Tag) {
		httputil.BadRequest(w, "unknown tag")
		return
	}

	entry := &domain.JournalEntry{
		SubscriberID: sub.ID,
		Body:         body,
		Tag:          req.Tag,
	}
	if err := s.store.CreateJournalEntry(r.Context(), entry); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}
	if sub.Tier != domain.TierPaid {
		httputil.Forbidden(w, "the journal is a premium feature")
		return
	}

	entries, err := s.store.ListJournalEntries(r.Context(), sub.ID, 100)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.JournalEntry{}
	}
	httputil.OK(w, map[string]any{"entries": entries})
}

// historyPageSize is how many compositions one history page carries.
const historyPageSize = 50

// handleHistory lists a page of compositions plus the consecutive-day
// writing streak. Pages are 1-based via the ?page query parameter.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "invalid page")
			return
		}
		page = n
	}

	comps, err := s.store.ListCompositions(r.Context(), sub.ID, historyPageSize, (page-1)*historyPageSize)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if comps == nil {
		comps = []*domain.Composition{}
	}

	dates, err := s.store.ListCompositionDates(r.Context(), sub.ID, 366)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"compositions": comps,
		"page":         page,
		"streak":       Streak(dates, s.now()),
	})
}

// Streak counts consecutive writing days ending today or yesterday, given
// distinct composition dates in descending order (YYYY-MM-DD, UTC).
func Streak(dates []string, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	day := now.UTC().Truncate(24 * time.Hour)
	// A streak survives until the end of the current day, so it may anchor
	// on yesterday.
	if dates[0] != day.Format("2006-01-02") {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range dates {
		if d != day.Format("2006-01-02") {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	favs, err := s.store.ListFavorites(r.Context(), sub.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if favs == nil {
		favs = []*domain.Composition{}
	}
	httputil.OK(w, map[string]any{"favorites": favs})
}

// handleToggleFavorite flips a composition's favorite flag. Ownership is
// enforced by the query predicate, so another subscriber's id is just a 404.
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	sub := s.currentSubscriber(w, r)
	if sub == nil {
		return
	}

	var req struct {
		Favorite bool `json:"favorite"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	found, err := s.store.SetFavorite(r.Context(), chi.URLParam(r, "id"), sub.ID, req.Favorite)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !found {
		httputil.NotFound(w, "composition not found")
		return
	}
	httputil.OK(w, map[string]any{"favorite": req.Favorite})
}
