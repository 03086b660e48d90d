package models

import "time"

// JobStatus is the lifecycle state of a job opening.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"
)

// Job is an open position candidates are evaluated against.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"       validate:"required,min=3"`
	Description string `json:"description" validate:"required"`
	Department  string `json:"department,omitempty"`
	Location    string `json:"location,omitempty"`

	RequiredTechnologies []string `json:"required_technologies,omitempty"`
	ExperienceRequired   string   `json:"experience_required,omitempty"`

	Status             JobStatus `json:"status"`
	PositionsAvailable int       `json:"positions_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interviewer is a member of the interview panel for a job.
type Interviewer struct {
	ID    string `json:"id"`
	JobID string `json:"job_id" validate:"required"`
	Name  string `json:"name"   validate:"required"`
	Email string `json:"email"  validate:"required,email"`
	Role  string `json:"role,omitempty"`

	Technologies        []string `json:"technologies,omitempty"`
	MaxInterviewsPerDay int      `json:"max_interviews_per_day"`
	Timezone            string   `json:"timezone,omitempty"`
}

// MatchScore counts the technologies the interviewer shares with the job
// requirements. Zero means the interviewer cannot cover the job at all.
func (i *Interviewer) MatchScore(required []string) int {
	have := make(map[string]struct{}, len(i.Technologies))
	for _, tech := range i.Technologies {
		have[tech] = struct{}{}
	}

	score := 0

	for _, tech := range required {
		if _, ok := have[tech]; ok {
			score++
		}
	}

	return score
}
