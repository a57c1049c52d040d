package personalization

import (
	"strings"
	"time"

	"github.com/lovenotes/lovenotes/internal/domain"
)

type holidayInfo struct {
	Name  string
	Month time.Month
	Day   int
}

// Holidays worth a themed message. Floating ones are computed below.
var fixedHolidays = []holidayInfo{
	{"New Year's Day", time.January, 1},
	{"Valentine's Day", time.February, 14},
	{"Christmas Eve", time.December, 24},
	{"Christmas", time.December, 25},
	{"New Year's Eve", time.December, 31},
}

// nthWeekday returns which occurrence of its weekday a day-of-month is
// (the 15th is always the 3rd of its weekday).
func nthWeekday(day int) int {
	return (day-1)/7 + 1
}

// DetectHoliday returns whether t falls on a recognized holiday and its name.
func DetectHoliday(t time.Time) (bool, string) {
	for _, h := range fixedHolidays {
		if t.Month() == h.Month && t.Day() == h.Day {
			return true, h.Name
		}
	}

	// Mother's Day — 2nd Sunday in May
	if t.Month() == time.May && t.Weekday() == time.Sunday && nthWeekday(t.Day()) == 2 {
		return true, "Mother's Day"
	}
	// Thanksgiving — 4th Thursday in November
	if t.Month() == time.November && t.Weekday() == time.Thursday && nthWeekday(t.Day()) == 4 {
		return true, "Thanksgiving"
	}
	return false, ""
}

// monthDay extracts the MM-DD portion of a stored date, which may be either
// "MM-DD" or "YYYY-MM-DD". Anything else yields "".
func monthDay(date string) string {
	switch len(date) {
	case 5: // MM-DD
		return date
	case 10: // YYYY-MM-DD
		return date[5:]
	}
	return ""
}

// ResolveOccasion determines whether now is a special day for the
// subscriber. At most one occasion applies: the subscriber's own dates beat
// the shared holiday calendar, and anniversary beats birthday.
func ResolveOccasion(sub *domain.Subscriber, now time.Time) domain.Occasion {
	today := now.Format("01-02")

	if md := monthDay(strings.TrimSpace(sub.AnniversaryDate)); md != "" && md == today {
		return domain.OccasionAnniversary
	}
	if md := monthDay(strings.TrimSpace(sub.WifeBirthday)); md != "" && md == today {
		return domain.OccasionBirthday
	}
	if ok, _ := DetectHoliday(now); ok {
		return domain.OccasionHoliday
	}
	return domain.OccasionNone
}
