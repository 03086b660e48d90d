package models

import (
	"strings"
	"time"
)

// AvailabilityBucket is the coarse classification of a candidate's
// free-text availability.
type AvailabilityBucket string

const (
	AvailabilityFlexible   AvailabilityBucket = "flexible"
	AvailabilityWeekdays   AvailabilityBucket = "weekdays"
	AvailabilityMornings   AvailabilityBucket = "mornings"
	AvailabilityAfternoons AvailabilityBucket = "afternoons"
	AvailabilityEvenings   AvailabilityBucket = "evenings"
)

// ClassifyAvailability maps free text such as "prefer mornings" onto a
// bucket. Unrecognized text defaults to weekdays business hours.
func ClassifyAvailability(text string) AvailabilityBucket {
	lower := strings.ToLower(text)

	for _, bucket := range []AvailabilityBucket{
		AvailabilityFlexible,
		AvailabilityMornings,
		AvailabilityAfternoons,
		AvailabilityEvenings,
		AvailabilityWeekdays,
	} {
		if strings.Contains(lower, string(bucket)) {
			return bucket
		}
	}

	return AvailabilityWeekdays
}

// HourWindow is the [From, To) range of slot start hours a bucket accepts.
type HourWindow struct {
	From int
	To   int
}

// Window returns the slot-start hours the bucket maps to. Buckets only
// constrain the hour of day; business-day filtering happens in the
// scheduling engine.
func (b AvailabilityBucket) Window() HourWindow {
	switch b {
	case AvailabilityMornings:
		return HourWindow{From: 9, To: 12}
	case AvailabilityAfternoons:
		return HourWindow{From: 13, To: 17}
	case AvailabilityEvenings:
		return HourWindow{From: 18, To: 20}
	case AvailabilityFlexible, AvailabilityWeekdays:
		return HourWindow{From: 9, To: 17}
	default:
		return HourWindow{From: 9, To: 17}
	}
}

// Contains reports whether a slot starting at t falls inside the bucket's
// hour window.
func (b AvailabilityBucket) Contains(t time.Time) bool {
	w := b.Window()

	return t.Hour() >= w.From && t.Hour() < w.To
}

// BusyInterval is a reserved [Start, End) range on an interviewer's
// calendar.
type BusyInterval struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	InterviewID string    `json:"interview_id,omitempty"`
}

// Overlaps reports whether the interval intersects [start, end).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}
