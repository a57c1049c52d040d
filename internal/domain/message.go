package domain

import "time"

// ThemeRandom is the sentinel preference meaning "pick a theme for me".
// It is resolved at selection time and never persisted as a concrete theme.
const ThemeRandom = "random"

// Themes is the authoritative theme enumeration. Every module that needs the
// theme set reads this one slice (overridable via config at startup); there
// is deliberately no second copy anywhere.
var Themes = []string{"romantic", "funny", "appreciative", "encouraging"}

// ValidTheme reports whether t is a selectable theme or the random sentinel.
func ValidTheme(t string) bool {
	if t == ThemeRandom {
		return true
	}
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

// Occasion enumerates date-triggered override categories.
type Occasion string

const (
	OccasionNone        Occasion = ""
	OccasionAnniversary Occasion = "anniversary"
	OccasionBirthday    Occasion = "birthday"
	OccasionHoliday     Occasion = "holiday"
)

// NamePlaceholder is the literal token in catalog bodies that gets replaced
// with the addressee's name.
const NamePlaceholder = "{wife_name}"

// Message is one immutable row of the message catalog. Rows tagged with an
// occasion are drawn only for that occasion; occasion-less rows are drawn by
// theme.
type Message struct {
	ID       int64    `json:"id" db:"id"`
	Theme    string   `json:"theme" db:"theme"`
	Occasion Occasion `json:"occasion,omitempty" db:"occasion"`
	Content  string   `json:"content" db:"content"`
}

// PromptTemplate is one immutable row of the prompt catalog: a nudge question
// plus a sentence starter the subscriber completes.
type PromptTemplate struct {
	ID          int64    `json:"id" db:"id"`
	Theme       string   `json:"theme" db:"theme"`
	Occasion    Occasion `json:"occasion,omitempty" db:"occasion"`
	Nudge       string   `json:"nudge" db:"nudge"`
	Starter     string   `json:"starter" db:"starter"`
	RequiresLog bool     `json:"requires_log" db:"requires_log"`
	Tags        string   `json:"tags,omitempty" db:"tags"`
}

// DailyPrompt is a prompt template instantiated for one subscriber on one
// calendar day, with placeholders already resolved.
type DailyPrompt struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	TemplateID   int64     `json:"template_id" db:"template_id"`
	Nudge        string    `json:"nudge" db:"nudge"`
	Starter      string    `json:"starter" db:"starter"`
	ForDate      string    `json:"for_date" db:"for_date"` // YYYY-MM-DD
	Completed    bool      `json:"completed" db:"completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Composition is a subscriber's finished message: their raw draft, an
// optional AI-polished variant, and the final text they chose. Append-only
// except for the favorite flag.
type Composition struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	PromptID     string    `json:"prompt_id,omitempty" db:"prompt_id"`
	Draft        string    `json:"draft" db:"draft"`
	Polished     string    `json:"polished,omitempty" db:"polished"`
	FinalText    string    `json:"final_text" db:"final_text"`
	Tone         string    `json:"tone,omitempty" db:"tone"`
	Favorite     bool      `json:"favorite" db:"favorite"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// JournalEntry is a free-text daily log line (paid tier feature).
type JournalEntry struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	Body         string    `json:"body" db:"body"`
	Tag          string    `json:"tag,omitempty" db:"tag"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// JournalTags is the fixed set of allowed journal entry tags.
var JournalTags = []string{"gratitude", "memory", "milestone", "note"}

// ValidJournalTag reports whether tag is empty or one of JournalTags.
func ValidJournalTag(tag string) bool {
	if tag == "" {
		return true
	}
	for _, known := range JournalTags {
		if tag == known {
			return true
		}
	}
	return false
}
