package models

import "time"

// WorkflowStatus is the coarse run state of a hiring workflow.
type WorkflowStatus string

const (
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusPaused    WorkflowStatus = "paused"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
)

// WorkflowStage names the orchestrator states in execution order.
type WorkflowStage string

const (
	StageInitialized           WorkflowStage = "initialized"
	StageCandidatesLoaded      WorkflowStage = "candidates_loaded"
	StageBatched               WorkflowStage = "batched"
	StageEvaluated             WorkflowStage = "evaluated"
	StageAwaitingHumanDecision WorkflowStage = "awaiting_human_decision"
	StageApprovedProcessed     WorkflowStage = "approved_processed"
	StageInterviewsScheduled   WorkflowStage = "interviews_scheduled"
	StageNotificationsSent     WorkflowStage = "notifications_sent"
	StageCompleted             WorkflowStage = "completed"
	StageFailed                WorkflowStage = "failed"
)

// Decision is a reviewer's verdict on a flagged candidate.
type Decision string

const (
	DecisionApprove    Decision = "approve"
	DecisionReject     Decision = "reject"
	DecisionHold       Decision = "hold"
	DecisionReschedule Decision = "reschedule"
)

// Valid reports whether the decision is one of the accepted verdicts.
func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionHold, DecisionReschedule:
		return true
	default:
		return false
	}
}

// PendingDecision describes one candidate waiting on a reviewer.
type PendingDecision struct {
	CandidateID    string         `json:"candidate_id"`
	CandidateName  string         `json:"candidate_name,omitempty"`
	DecisionType   string         `json:"decision_type"`
	Summary        string         `json:"evaluation_summary,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
}

// DecisionRecord is a submitted reviewer verdict.
type DecisionRecord struct {
	CandidateID   string     `json:"candidate_id" validate:"required"`
	DecisionType  string     `json:"decision_type,omitempty"`
	Decision      Decision   `json:"decision"     validate:"required"`
	Comments      string     `json:"comments,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	DecidedAt     time.Time  `json:"decided_at"`
}

// Workflow is one end-to-end hiring run for a job.
type Workflow struct {
	ID    string `json:"id"`
	JobID string `json:"job_id" validate:"required"`
	Name  string `json:"name"   validate:"required,min=3"`

	Status             WorkflowStatus `json:"status"`
	Stage              WorkflowStage  `json:"stage"`
	ProgressPercentage int            `json:"progress_percentage"`

	PendingDecisions []PendingDecision `json:"pending_decisions,omitempty"`
	DecisionHistory  []DecisionRecord  `json:"decision_history,omitempty"`

	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Suspended reports whether the run is parked at the human-decision gate.
func (w *Workflow) Suspended() bool {
	return w.Status == WorkflowStatusPaused && len(w.PendingDecisions) > 0
}
