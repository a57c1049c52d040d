package personalization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lovenotes/lovenotes/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 0, 0, 0, time.UTC)
}

func TestDetectHoliday(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{day(2026, time.February, 14), "Valentine's Day"},
		{day(2026, time.December, 25), "Christmas"},
		{day(2026, time.May, 10), "Mother's Day"},      // 2nd Sunday in May 2026
		{day(2026, time.November, 26), "Thanksgiving"}, // 4th Thursday in Nov 2026
		{day(2026, time.January, 1), "New Year's Day"},
	}
	for _, tt := range tests {
		ok, name := DetectHoliday(tt.date)
		assert.True(t, ok, "expected holiday on %s", tt.date.Format("2006-01-02"))
		assert.Equal(t, tt.want, name)
	}

	for _, d := range []time.Time{
		day(2026, time.March, 3),
		day(2026, time.May, 3),       // 1st Sunday, not Mother's Day
		day(2026, time.November, 19), // 3rd Thursday, not Thanksgiving
	} {
		ok, _ := DetectHoliday(d)
		assert.False(t, ok, "no holiday expected on %s", d.Format("2006-01-02"))
	}
}

func TestResolveOccasionPrecedence(t *testing.T) {
	sub := &domain.Subscriber{
		AnniversaryDate: "02-14",
		WifeBirthday:    "02-14",
	}
	// Anniversary, birthday, and Valentine's Day all on the same date.
	assert.Equal(t, domain.OccasionAnniversary, ResolveOccasion(sub, day(2026, time.February, 14)))

	sub.AnniversaryDate = ""
	assert.Equal(t, domain.OccasionBirthday, ResolveOccasion(sub, day(2026, time.February, 14)))

	sub.WifeBirthday = ""
	assert.Equal(t, domain.OccasionHoliday, ResolveOccasion(sub, day(2026, time.February, 14)))

	assert.Equal(t, domain.OccasionNone, ResolveOccasion(sub, day(2026, time.March, 3)))
}

func TestResolveOccasionDateFormats(t *testing.T) {
	sub := &domain.Subscriber{AnniversaryDate: "2019-06-14"}
	assert.Equal(t, domain.OccasionAnniversary, ResolveOccasion(sub, day(2026, time.June, 14)))

	sub.AnniversaryDate = "06-14"
	assert.Equal(t, domain.OccasionAnniversary, ResolveOccasion(sub, day(2026, time.June, 14)))

	sub.AnniversaryDate = "garbage"
	assert.Equal(t, domain.OccasionNone, ResolveOccasion(sub, day(2026, time.June, 14)))
}
