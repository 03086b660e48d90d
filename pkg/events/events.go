// Package events defines event types and structures for hiring workflow
// lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/hireflowhq/hireflow/pkg/models"
)

type EventType string

// Kafka topic carrying every hiring event.
const Topic = "hireflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowStartedEvent   EventType = "workflow.started"
	WorkflowSuspendedEvent EventType = "workflow.suspended"
	WorkflowResumedEvent   EventType = "workflow.resumed"
	WorkflowCompletedEvent EventType = "workflow.completed"
	WorkflowFailedEvent    EventType = "workflow.failed"

	// Human-decision gate events.
	DecisionRequiredEvent  EventType = "workflow.decision.required"
	DecisionSubmittedEvent EventType = "workflow.decision.submitted"

	// Candidate events.
	CandidateStageChangedEvent EventType = "candidate.stage.changed"
	EvaluationCompletedEvent   EventType = "candidate.evaluation.completed"

	// Interview events.
	InterviewScheduledEvent   EventType = "interview.scheduled"
	InterviewRescheduledEvent EventType = "interview.rescheduled"
	InterviewCancelledEvent   EventType = "interview.cancelled"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

type WorkflowStarted struct {
	BaseEvent

	JobID          string `json:"job_id"`
	WorkflowName   string `json:"workflow_name"`
	CandidateCount int    `json:"candidate_count"`
}

func (w WorkflowStarted) GetType() EventType {
	return WorkflowStartedEvent
}

type WorkflowSuspended struct {
	BaseEvent

	JobID            string                   `json:"job_id"`
	Stage            models.WorkflowStage     `json:"stage"`
	PendingDecisions []models.PendingDecision `json:"pending_decisions"`
}

func (w WorkflowSuspended) GetType() EventType {
	return WorkflowSuspendedEvent
}

type WorkflowResumed struct {
	BaseEvent

	JobID         string `json:"job_id"`
	ResumedBy     string `json:"resumed_by,omitempty"`
	DecisionCount int    `json:"decision_count"`
}

func (w WorkflowResumed) GetType() EventType {
	return WorkflowResumedEvent
}

type WorkflowCompleted struct {
	BaseEvent

	JobID               string        `json:"job_id"`
	Duration            time.Duration `json:"duration"`
	CandidatesEvaluated int           `json:"candidates_evaluated"`
	InterviewsScheduled int           `json:"interviews_scheduled"`
}

func (w WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

type WorkflowFailed struct {
	BaseEvent

	JobID  string   `json:"job_id"`
	Step   string   `json:"step"`
	Errors []string `json:"errors"`
}

func (w WorkflowFailed) GetType() EventType {
	return WorkflowFailedEvent
}

// DecisionRequired is published when a run suspends at the human-decision
// gate; it carries everything a reviewer UI needs to render the queue.
type DecisionRequired struct {
	BaseEvent

	JobID            string                   `json:"job_id"`
	PendingDecisions []models.PendingDecision `json:"pending_decisions"`
}

func (d DecisionRequired) GetType() EventType {
	return DecisionRequiredEvent
}

type DecisionSubmitted struct {
	BaseEvent

	CandidateID string          `json:"candidate_id"`
	Decision    models.Decision `json:"decision"`
	Comments    string          `json:"comments,omitempty"`
}

func (d DecisionSubmitted) GetType() EventType {
	return DecisionSubmittedEvent
}

type CandidateStageChanged struct {
	BaseEvent

	CandidateID string                `json:"candidate_id"`
	JobID       string                `json:"job_id"`
	FromStage   models.CandidateStage `json:"from_stage"`
	ToStage     models.CandidateStage `json:"to_stage"`
}

func (c CandidateStageChanged) GetType() EventType {
	return CandidateStageChangedEvent
}

type EvaluationCompleted struct {
	BaseEvent

	CandidateID     string                `json:"candidate_id"`
	JobID           string                `json:"job_id"`
	OverallScore    float64               `json:"overall_score"`
	MatchPercentage int                   `json:"match_percentage"`
	Recommendation  models.Recommendation `json:"recommendation"`
}

func (e EvaluationCompleted) GetType() EventType {
	return EvaluationCompletedEvent
}

type InterviewScheduled struct {
	BaseEvent

	InterviewID   string    `json:"interview_id"`
	CandidateID   string    `json:"candidate_id"`
	InterviewerID string    `json:"interviewer_id"`
	JobID         string    `json:"job_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	MeetingLink   string    `json:"meeting_link,omitempty"`
}

func (i InterviewScheduled) GetType() EventType {
	return InterviewScheduledEvent
}

type InterviewRescheduled struct {
	BaseEvent

	InterviewID     string    `json:"interview_id"`
	CandidateID     string    `json:"candidate_id"`
	PreviousTime    time.Time `json:"previous_time"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	RescheduleCount int       `json:"reschedule_count"`
}

func (i InterviewRescheduled) GetType() EventType {
	return InterviewRescheduledEvent
}

type InterviewCancelled struct {
	BaseEvent

	InterviewID string `json:"interview_id"`
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason,omitempty"`
}

func (i InterviewCancelled) GetType() EventType {
	return InterviewCancelledEvent
}
