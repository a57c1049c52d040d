package delivery

import "github.com/lovenotes/lovenotes/internal/domain"

// OccasionStyle controls how a delivery is dressed up: the emoji and
// greeting used in subjects and SMS prefixes, and the accent color in the
// email HTML.
type OccasionStyle struct {
	Emoji    string
	Greeting string
	Color    string
}

var occasionStyles = map[domain.Occasion]OccasionStyle{
	domain.OccasionAnniversary: {Emoji: "💍", Greeting: "Happy Anniversary!", Color: "#be185d"},
	domain.OccasionBirthday:    {Emoji: "🎂", Greeting: "Happy Birthday!", Color: "#7c3aed"},
	domain.OccasionHoliday:     {Emoji: "🎉", Greeting: "Happy Holidays!", Color: "#b91c1c"},
}

// neutralStyle is the everyday look.
var neutralStyle = OccasionStyle{Emoji: "💕", Greeting: "", Color: "#e11d48"}

// StyleFor returns the style for an occasion, neutral for none or anything
// unrecognized.
func StyleFor(occasion domain.Occasion) OccasionStyle {
	if s, ok := occasionStyles[occasion]; ok {
		return s
	}
	return neutralStyle
}

// Subject builds the email subject line for a delivery.
func (s OccasionStyle) Subject(wifeName string) string {
	if s.Greeting != "" {
		return s.Emoji + " " + s.Greeting + " A special LoveNote for " + wifeName
	}
	return s.Emoji + " Today's LoveNote for " + wifeName
}

// SMSPrefix builds the line that precedes the message body in a text.
func (s OccasionStyle) SMSPrefix(wifeName string) string {
	if s.Greeting != "" {
		return s.Emoji + " " + s.Greeting + " A LoveNote for " + wifeName + ":"
	}
	return s.Emoji + " Today's LoveNote for " + wifeName + ":"
}
