package domain

import "time"

// SubscriberStatus enumerates the lifecycle states a subscriber can be in.
type SubscriberStatus string

const (
	StatusTrial     SubscriberStatus = "trial"
	StatusActive    SubscriberStatus = "active"
	StatusCancelled SubscriberStatus = "cancelled"
)

// Cadence enumerates how often a subscriber receives scheduled messages.
type Cadence string

const (
	CadenceDaily    Cadence = "daily"
	CadenceWeekly   Cadence = "weekly"
	CadenceBiWeekly Cadence = "bi-weekly"
)

// Tier enumerates billing tiers.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// TrialWindow is how long a trial subscriber keeps receiving scheduled
// content after signup.
const TrialWindow = 7 * 24 * time.Hour

// Subscriber is a single account: the person who signs up and receives
// message suggestions for their partner.
type Subscriber struct {
	ID              string           `json:"id" db:"id"`
	Email           string           `json:"email" db:"email"`
	Phone           string           `json:"phone" db:"phone"` // digits only
	WifeName        string           `json:"wife_name" db:"wife_name"`
	Nickname        string           `json:"nickname,omitempty" db:"nickname"`
	Theme           string           `json:"theme" db:"theme"` // one of Themes, or ThemeRandom
	Cadence         Cadence          `json:"frequency" db:"frequency"`
	Status          SubscriberStatus `json:"status" db:"status"`
	Tier            Tier             `json:"tier" db:"tier"`
	AnniversaryDate string           `json:"anniversary_date,omitempty" db:"anniversary_date"` // MM-DD or YYYY-MM-DD
	WifeBirthday    string           `json:"wife_birthday,omitempty" db:"wife_birthday"`       // MM-DD or YYYY-MM-DD
	Onboarded       bool             `json:"onboarded" db:"onboarded"`

	StripeCustomerID     string `json:"-" db:"stripe_customer_id"`
	StripeSubscriptionID string `json:"-" db:"stripe_subscription_id"`

	TrialStartedAt time.Time `json:"trial_started_at" db:"trial_started_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AddresseeName returns the name used in personalized content: the pet-name
// override when set, otherwise the display name.
func (s *Subscriber) AddresseeName() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.WifeName
}

// InTrialWindow reports whether a trial subscriber is still inside the
// 7-day window that started at signup.
func (s *Subscriber) InTrialWindow(now time.Time) bool {
	return now.Sub(s.TrialStartedAt) < TrialWindow
}

// RelationshipProfile holds the freeform personalization fields a subscriber
// fills in during onboarding. Upserted, one row per subscriber.
type RelationshipProfile struct {
	SubscriberID  string    `json:"subscriber_id" db:"subscriber_id"`
	HowWeMet      string    `json:"how_we_met" db:"how_we_met"`
	InsideJokes   string    `json:"inside_jokes" db:"inside_jokes"`
	LoveLanguage  string    `json:"love_language" db:"love_language"`
	YearsTogether int       `json:"years_together" db:"years_together"`
	KidsNames     string    `json:"kids_names" db:"kids_names"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
