// Package web provides HTTP request and response types for the hiring API.
package web

import "time"

// CreateJobRequest represents the request body for creating a job opening.
type CreateJobRequest struct {
	Title                string   `json:"title"       validate:"required,min=3"`
	Description          string   `json:"description" validate:"required"`
	Department           string   `json:"department,omitempty"`
	Location             string   `json:"location,omitempty"`
	RequiredTechnologies []string `json:"required_technologies,omitempty"`
	ExperienceRequired   string   `json:"experience_required,omitempty"`
	PositionsAvailable   int      `json:"positions_available"`
}

// AddInterviewerRequest represents the request body for adding an
// interviewer to a job's panel.
type AddInterviewerRequest struct {
	Name                string   `json:"name"  validate:"required"`
	Email               string   `json:"email" validate:"required,email"`
	Role                string   `json:"role,omitempty"`
	Technologies        []string `json:"technologies,omitempty"`
	MaxInterviewsPerDay int      `json:"max_interviews_per_day"`
	Timezone            string   `json:"timezone,omitempty"`
}

// CreateCandidateRequest represents the request body for registering a
// candidate. New candidates always start at the resume-received stage.
type CreateCandidateRequest struct {
	Name             string   `json:"name"   validate:"required"`
	Email            string   `json:"email"  validate:"required,email"`
	Phone            string   `json:"phone,omitempty"`
	JobID            string   `json:"job_id" validate:"required"`
	ExperienceYears  int      `json:"experience_years"`
	Technologies     []string `json:"technologies,omitempty"`
	ResumeText       string   `json:"resume_text,omitempty"`
	TimeAvailability string   `json:"time_availability,omitempty"`
}

// StartWorkflowRequest represents the request body for starting a hiring
// run.
type StartWorkflowRequest struct {
	JobID string `json:"job_id" validate:"required"`
	Name  string `json:"name"   validate:"required,min=3"`
}

// DecisionInput is one reviewer verdict inside a decision submission.
type DecisionInput struct {
	CandidateID   string     `json:"candidate_id" validate:"required"`
	DecisionType  string     `json:"decision_type,omitempty"`
	Decision      string     `json:"decision"     validate:"required,oneof=approve reject hold reschedule"`
	Comments      string     `json:"comments,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

// SubmitDecisionsRequest represents the request body for clearing the
// human-decision gate. Every pending candidate must be covered.
type SubmitDecisionsRequest struct {
	Decisions []DecisionInput `json:"decisions"  validate:"required,min=1,dive"`
	ResumedBy string          `json:"resumed_by" validate:"required,email"`
}

// RescheduleInterviewRequest represents the request body for moving an
// interview to a new start time.
type RescheduleInterviewRequest struct {
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
}

// CancelInterviewRequest represents the request body for cancelling an
// interview.
type CancelInterviewRequest struct {
	Reason string `json:"reason,omitempty"`
}
