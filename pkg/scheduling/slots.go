package scheduling

import (
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// DefaultSearchDays is how many business days ahead the engine looks for a
// free slot before giving up on a candidate.
const DefaultSearchDays = 5

// nextBusinessDay returns the first weekday strictly after t, at midnight.
func nextBusinessDay(t time.Time) time.Time {
	day := t.AddDate(0, 0, 1)
	for isWeekend(day) {
		day = day.AddDate(0, 0, 1)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// businessDays returns count weekdays starting with the first business day
// after now.
func businessDays(now time.Time, count int) []time.Time {
	days := make([]time.Time, 0, count)

	day := nextBusinessDay(now)
	for len(days) < count {
		days = append(days, day)
		day = nextBusinessDay(day)
	}

	return days
}

// slotStarts generates the hourly slot start times on one day that fall
// inside the candidate's availability window.
func slotStarts(day time.Time, bucket models.AvailabilityBucket) []time.Time {
	window := bucket.Window()

	starts := make([]time.Time, 0, window.To-window.From)
	for hour := window.From; hour < window.To; hour++ {
		starts = append(starts, time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location()))
	}

	return starts
}

// dayKey collapses a slot time to its calendar day for capacity counting.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
