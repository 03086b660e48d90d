package models

import "time"

// CandidateStage tracks a candidate's position in the hiring process.
type CandidateStage string

const (
	StageResumeReceived       CandidateStage = "resume_received"
	StagePendingManualReview  CandidateStage = "pending_manual_review"
	StageApprovedForInterview CandidateStage = "approved_for_interview"
	StageInterviewScheduled   CandidateStage = "interview_scheduled"
	StageOnHold               CandidateStage = "on_hold"
	StageRejected             CandidateStage = "rejected"
)

// Candidate is an applicant for a job opening.
type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`

	ExperienceYears int      `json:"experience_years"`
	Technologies    []string `json:"technologies,omitempty"`
	ResumeText      string   `json:"resume_text,omitempty"`

	// Free text such as "available mornings" or "flexible"; classified
	// into an AvailabilityBucket during scheduling.
	TimeAvailability string `json:"time_availability,omitempty"`

	Stage      CandidateStage `json:"stage"`
	JobID      string         `json:"job_id"      validate:"required"`
	WorkflowID string         `json:"workflow_id,omitempty"`

	// Evaluation outcome, written once per workflow run.
	OverallScore    float64 `json:"overall_score,omitempty"`
	MatchPercentage int     `json:"match_percentage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
