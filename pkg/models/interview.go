package models

import "time"

// InterviewStatus is the lifecycle state of a scheduled interview.
type InterviewStatus string

const (
	InterviewStatusScheduled   InterviewStatus = "scheduled"
	InterviewStatusInProgress  InterviewStatus = "in_progress"
	InterviewStatusCompleted   InterviewStatus = "completed"
	InterviewStatusCancelled   InterviewStatus = "cancelled"
	InterviewStatusRescheduled InterviewStatus = "rescheduled"
)

const DefaultMaxReschedules = 2

// Interview is a persisted interview record. A scheduled interview occupies
// the [ScheduledTime, ScheduledTime+Duration) interval on the interviewer's
// calendar.
type Interview struct {
	ID            string `json:"id"`
	CandidateID   string `json:"candidate_id"   validate:"required"`
	InterviewerID string `json:"interviewer_id" validate:"required"`
	JobID         string `json:"job_id"         validate:"required"`

	InterviewType   string    `json:"interview_type"`
	RoundNumber     int       `json:"round_number"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	DurationMinutes int       `json:"duration_minutes"`

	MeetingLink string `json:"meeting_link,omitempty"`
	MeetingID   string `json:"meeting_id,omitempty"`

	Status          InterviewStatus `json:"status"`
	RescheduleCount int             `json:"reschedule_count"`
	MaxReschedules  int             `json:"max_reschedules"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// End returns the instant the interview's reserved interval closes.
func (i *Interview) End() time.Time {
	return i.ScheduledTime.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

// InterviewDuration maps an interview type to its standard length in
// minutes. Unknown types get the 60-minute default.
func InterviewDuration(interviewType string) int {
	durations := map[string]int{
		"technical_round_1": 60,
		"technical_round_2": 90,
		"hr_round":          30,
		"managerial_round":  45,
		"final_round":       60,
		"panel_interview":   90,
	}

	if d, ok := durations[interviewType]; ok {
		return d
	}

	return 60
}
