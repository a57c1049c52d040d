// Package personalization selects message and prompt content for a
// subscriber: theme resolution, occasion overrides, non-repeat history, and
// the daily journaling prompt lifecycle.
package personalization

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// PromptRecencyWindow is how far back previously served templates are
// excluded from new prompt draws.
const PromptRecencyWindow = 90 * 24 * time.Hour

// FreePromptWindow is the rolling window for the free-tier prompt quota
// (one generated prompt per window).
const FreePromptWindow = 7 * 24 * time.Hour

// Selection is the outcome of a message draw.
type Selection struct {
	Message    *domain.Message `json:"message"`
	Text       string          `json:"text"`
	Theme      string          `json:"theme"`
	Occasion   domain.Occasion `json:"occasion,omitempty"`
	CycleReset bool            `json:"cycle_reset,omitempty"`
}

// Engine selects personalized content. Safe for concurrent use when the
// repository is.
type Engine struct {
	repo Repository

	promptRecency time.Duration
	freeWindow    time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

// NewEngine creates a personalization engine.
func NewEngine(repo Repository) *Engine {
	return &Engine{
		repo:          repo,
		promptRecency: PromptRecencyWindow,
		freeWindow:    FreePromptWindow,
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetWindows overrides the prompt recency and free-tier quota windows.
// Zero keeps the default.
func (e *Engine) SetWindows(recency, freeQuota time.Duration) {
	if recency > 0 {
		e.promptRecency = recency
	}
	if freeQuota > 0 {
		e.freeWindow = freeQuota
	}
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Intn(n)
}

// effectiveTheme resolves the random sentinel (and anything unknown) into a
// concrete theme, drawn uniformly at call time.
func (e *Engine) effectiveTheme(pref string) string {
	if pref != domain.ThemeRandom && domain.ValidTheme(pref) {
		return pref
	}
	return domain.Themes[e.intn(len(domain.Themes))]
}

// Personalize replaces the name placeholder in catalog content.
func Personalize(content, name string) string {
	return strings.ReplaceAll(content, domain.NamePlaceholder, name)
}

// NextMessage draws the subscriber's next message: an occasion-specific one
// when today matches an anniversary, birthday, or holiday, otherwise a
// never-seen message of the effective theme. When the theme's catalog is
// exhausted the history is cleared and a fresh cycle begins.
func (e *Engine) NextMessage(ctx context.Context, sub *domain.Subscriber, now time.Time) (*Selection, error) {
	sel := &Selection{Occasion: ResolveOccasion(sub, now)}

	if sel.Occasion != domain.OccasionNone {
		msgs, err := e.repo.ListOccasionMessages(ctx, sel.Occasion)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			return e.finishSelection(ctx, sub, sel, msgs[e.intn(len(msgs))])
		}
		// No catalog content for this occasion; fall through to a theme draw.
		sel.Occasion = domain.OccasionNone
	}

	theme := e.effectiveTheme(sub.Theme)
	sel.Theme = theme

	msgs, err := e.repo.ListUnsentMessages(ctx, sub.ID, theme)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		// Everything seen: reset history and draw from the full pool.
		if err := e.repo.ResetSentHistory(ctx, sub.ID, theme); err != nil {
			return nil, err
		}
		sel.CycleReset = true
		if msgs, err = e.repo.ListMessagesByTheme(ctx, theme); err != nil {
			return nil, err
		}
	}
	if len(msgs) == 0 {
		return nil, ErrNoContent
	}
	return e.finishSelection(ctx, sub, sel, msgs[e.intn(len(msgs))])
}

func (e *Engine) finishSelection(ctx context.Context, sub *domain.Subscriber, sel *Selection, msg *domain.Message) (*Selection, error) {
	if err := e.repo.MarkMessageSent(ctx, sub.ID, msg.ID); err != nil {
		return nil, err
	}
	sel.Message = msg
	if sel.Theme == "" {
		sel.Theme = msg.Theme
	}
	sel.Text = Personalize(msg.Content, sub.AddresseeName())
	return sel, nil
}

// RandomMessage is the anonymous preview path: a stateless draw that never
// touches history. The caller-supplied name is sanitized with a fallback.
func (e *Engine) RandomMessage(ctx context.Context, theme, name string) (*Selection, error) {
	resolved := e.effectiveTheme(theme)
	msgs, err := e.repo.ListMessagesByTheme(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNoContent
	}
	msg := msgs[e.intn(len(msgs))]
	return &Selection{
		Message: msg,
		Theme:   resolved,
		Text:    Personalize(msg.Content, NameOrDefault(name)),
	}, nil
}

// TodayPrompt returns the subscriber's journaling prompt for the calendar
// day, generating one on first call. Subsequent calls the same day return
// the same prompt. Free-tier subscribers get at most one generated prompt
// per rolling 7-day window; exceeding it returns ErrLimitReached.
func (e *Engine) TodayPrompt(ctx context.Context, sub *domain.Subscriber, now time.Time) (*domain.DailyPrompt, error) {
	forDate := now.Format("2006-01-02")

	existing, err := e.repo.GetDailyPrompt(ctx, sub.ID, forDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if sub.Tier == domain.TierFree {
		n, err := e.repo.CountPromptsSince(ctx, sub.ID, now.Add(-e.freeWindow))
		if err != nil {
			return nil, err
		}
		if n >= 1 {
			return nil, ErrLimitReached
		}
	}

	tmpl, err := e.pickTemplate(ctx, sub, now, nil)
	if err != nil {
		return nil, err
	}

	return e.repo.CreateDailyPrompt(ctx, &domain.DailyPrompt{
		SubscriberID: sub.ID,
		TemplateID:   tmpl.ID,
		Nudge:        Personalize(tmpl.Nudge, sub.AddresseeName()),
		Starter:      Personalize(tmpl.Starter, sub.AddresseeName()),
		ForDate:      forDate,
	})
}

// AlternativePrompt draws a fresh prompt for today, excluding every
// template already served today, and records it as a new row. Repeated
// alternative requests keep producing distinct prompts until the catalog
// runs out of unseen templates for the day.
func (e *Engine) AlternativePrompt(ctx context.Context, sub *domain.Subscriber, now time.Time) (*domain.DailyPrompt, error) {
	forDate := now.Format("2006-01-02")

	served, err := e.repo.ListTemplateIDsForDate(ctx, sub.ID, forDate)
	if err != nil {
		return nil, err
	}
	if len(served) == 0 {
		// Nothing served yet; behave like a first draw.
		return e.TodayPrompt(ctx, sub, now)
	}

	tmpl, err := e.pickTemplate(ctx, sub, now, served)
	if err != nil {
		return nil, err
	}

	return e.repo.CreateDailyPrompt(ctx, &domain.DailyPrompt{
		SubscriberID: sub.ID,
		TemplateID:   tmpl.ID,
		Nudge:        Personalize(tmpl.Nudge, sub.AddresseeName()),
		Starter:      Personalize(tmpl.Starter, sub.AddresseeName()),
		ForDate:      forDate,
	})
}

// pickTemplate draws a prompt template, excluding explicit ids, anything
// served inside the recency window, and journal-dependent templates when
// the subscriber has no journal entries. The recency window is dropped if
// honoring it would leave nothing to draw.
func (e *Engine) pickTemplate(ctx context.Context, sub *domain.Subscriber, now time.Time, exclude []int64) (*domain.PromptTemplate, error) {
	templates, err := e.repo.ListPromptTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, ErrNoContent
	}

	recent, err := e.repo.ListRecentTemplateIDs(ctx, sub.ID, now.Add(-e.promptRecency))
	if err != nil {
		return nil, err
	}

	hasJournal := true
	for _, t := range templates {
		if t.RequiresLog {
			entry, err := e.repo.LatestJournalEntry(ctx, sub.ID)
			if err != nil {
				return nil, err
			}
			hasJournal = entry != nil
			break
		}
	}

	excluded := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	recentSet := make(map[int64]bool, len(recent))
	for _, id := range recent {
		recentSet[id] = true
	}

	eligible := func(withRecency bool) []*domain.PromptTemplate {
		var out []*domain.PromptTemplate
		for _, t := range templates {
			if excluded[t.ID] {
				continue
			}
			if t.RequiresLog && !hasJournal {
				continue
			}
			if withRecency && recentSet[t.ID] {
				continue
			}
			out = append(out, t)
		}
		return out
	}

	candidates := eligible(true)
	if len(candidates) == 0 {
		candidates = eligible(false)
	}
	if len(candidates) == 0 {
		return nil, ErrNoContent
	}
	return candidates[e.intn(len(candidates))], nil
}
