package personalization

import (
	"context"
	"time"

	"github.com/lovenotes/lovenotes/internal/domain"
)

// Repository defines the data access contract for content selection.
// Implementations must be safe for concurrent use.
type Repository interface {
	// ListMessagesByTheme returns active occasion-less messages for a theme.
	ListMessagesByTheme(ctx context.Context, theme string) ([]*domain.Message, error)

	// ListUnsentMessages returns active occasion-less messages for a theme
	// the subscriber has never received.
	ListUnsentMessages(ctx context.Context, subscriberID, theme string) ([]*domain.Message, error)

	// ListOccasionMessages returns active messages tagged for an occasion.
	ListOccasionMessages(ctx context.Context, occasion domain.Occasion) ([]*domain.Message, error)

	// MarkMessageSent records a (subscriber, message) pair idempotently.
	MarkMessageSent(ctx context.Context, subscriberID string, messageID int64) error

	// ResetSentHistory clears the subscriber's non-repeat history for a theme.
	ResetSentHistory(ctx context.Context, subscriberID, theme string) error

	// ListPromptTemplates returns the active prompt catalog.
	ListPromptTemplates(ctx context.Context) ([]*domain.PromptTemplate, error)

	// ListRecentTemplateIDs returns template ids served since the cutoff.
	ListRecentTemplateIDs(ctx context.Context, subscriberID string, since time.Time) ([]int64, error)

	// GetDailyPrompt returns the prompt in effect for a date, or nil. When
	// alternatives have added rows for the date, the newest wins.
	GetDailyPrompt(ctx context.Context, subscriberID, forDate string) (*domain.DailyPrompt, error)

	// ListTemplateIDsForDate returns every template served on a date.
	ListTemplateIDsForDate(ctx context.Context, subscriberID, forDate string) ([]int64, error)

	// CreateDailyPrompt records a prompt served for a date. Alternative
	// draws add rows for the same date.
	CreateDailyPrompt(ctx context.Context, p *domain.DailyPrompt) (*domain.DailyPrompt, error)

	// CountPromptsSince counts distinct prompt days after the cutoff.
	CountPromptsSince(ctx context.Context, subscriberID string, since time.Time) (int, error)

	// LatestJournalEntry returns the newest journal entry, or nil.
	LatestJournalEntry(ctx context.Context, subscriberID string) (*domain.JournalEntry, error)
}
