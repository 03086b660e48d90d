// Package orchestrator drives the end-to-end hiring run: evaluation,
// the human-decision gate, interview scheduling and notifications.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireflowhq/hireflow/pkg/eventbus"
	"github.com/hireflowhq/hireflow/pkg/evaluation"
	"github.com/hireflowhq/hireflow/pkg/events"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/otelhelper"
	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/pipeline"
	"github.com/hireflowhq/hireflow/pkg/scheduling"
)

// Step names in execution order.
const (
	StepInitialize        = "initialize"
	StepLoadCandidates    = "load-candidates"
	StepBatchCandidates   = "batch-candidates"
	StepEvaluate          = "evaluate-candidates"
	StepHumanDecisions    = "check-human-decisions"
	StepProcessDecisions  = "process-decisions"
	StepScheduleInterview = "schedule-interviews"
	StepNotify            = "send-notifications"
	StepFinalize          = "finalize"
)

func stepOrder() []string {
	return []string{
		StepInitialize,
		StepLoadCandidates,
		StepBatchCandidates,
		StepEvaluate,
		StepHumanDecisions,
		StepProcessDecisions,
		StepScheduleInterview,
		StepNotify,
		StepFinalize,
	}
}

var (
	ErrWorkflowNotSuspended = errors.New("workflow is not suspended")
	ErrIncompleteDecisions  = errors.New("decisions do not cover every pending candidate")
	ErrInvalidDecision      = errors.New("invalid decision")
)

// Config carries the tunables of a hiring run.
type Config struct {
	// MaxParallelCandidates sizes the single batch a pass takes from the
	// front of the candidate list and bounds concurrent evaluations
	// within it.
	MaxParallelCandidates int

	// InterviewType selects the slot duration for scheduled interviews.
	InterviewType string

	// SearchDays bounds the scheduling lookahead in business days.
	SearchDays int

	// SkipHumanDecisions disables the reviewer gate: flagged candidates
	// are auto-routed (reject to rejected, review to on-hold) and the run
	// never suspends.
	SkipHumanDecisions bool

	// HRContact receives the end-of-run summary when set.
	HRContact string

	// MeetingLinkBase prefixes generated meeting links.
	MeetingLinkBase string
}

func (c Config) withDefaults() Config {
	if c.MaxParallelCandidates <= 0 {
		c.MaxParallelCandidates = 5
	}

	if c.InterviewType == "" {
		c.InterviewType = "technical_round_1"
	}

	if c.MeetingLinkBase == "" {
		c.MeetingLinkBase = "https://meet.hireflow.dev/"
	}

	return c
}

// Orchestrator runs hiring workflows over the shared infrastructure.
type Orchestrator struct {
	persistence persistence.Persistence
	aggregator  *evaluation.Aggregator
	engine      *scheduling.Engine
	notifier    *notification.Service
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
	config      Config
}

// New creates an orchestrator. The publisher may be nil; events are then
// skipped.
func New(
	logger *slog.Logger,
	store persistence.Persistence,
	aggregator *evaluation.Aggregator,
	engine *scheduling.Engine,
	notifier *notification.Service,
	publisher eventbus.EventPublisher,
	config Config,
) *Orchestrator {
	return &Orchestrator{
		persistence: store,
		aggregator:  aggregator,
		engine:      engine,
		notifier:    notifier,
		publisher:   publisher,
		logger:      logger.With("module", "orchestrator"),
		tracer:      otel.Tracer("hireflow/orchestrator"),
		config:      config.withDefaults(),
	}
}

// run is the working set of one workflow execution.
type run struct {
	o        *Orchestrator
	workflow *models.Workflow
	state    *State

	job        *models.Job
	candidates map[string]*models.Candidate

	scheduled   []*models.Interview
	unscheduled []scheduling.Unscheduled

	suspended bool
}

// Create persists a new workflow record for the job without executing it.
func (o *Orchestrator) Create(ctx context.Context, jobID, name string) (*models.Workflow, error) {
	now := time.Now().UTC()

	workflow := &models.Workflow{
		ID:             uuid.New().String(),
		JobID:          jobID,
		Name:           name,
		Status:         models.WorkflowStatusRunning,
		StartedAt:      now,
		LastActivityAt: now,
	}

	if err := o.persistence.Workflows().Create(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	o.logger.Info("Workflow started", "workflow_id", workflow.ID, "job_id", jobID, "name", name)

	return workflow, nil
}

// Run executes a created workflow until completion, failure or suspension
// at the human-decision gate. The workflow record is updated in place.
func (o *Orchestrator) Run(ctx context.Context, workflow *models.Workflow) error {
	r := &run{
		o:          o,
		workflow:   workflow,
		state:      newState(workflow),
		candidates: make(map[string]*models.Candidate),
	}

	return o.runFrom(ctx, r, StepInitialize)
}

// Start creates a workflow for the job and executes it synchronously. The
// returned workflow reflects the final persisted record of this invocation.
func (o *Orchestrator) Start(ctx context.Context, jobID, name string) (*models.Workflow, error) {
	workflow, err := o.Create(ctx, jobID, name)
	if err != nil {
		return nil, err
	}

	if err := o.Run(ctx, workflow); err != nil {
		return workflow, err
	}

	return workflow, nil
}

// runFrom drives the pipeline one step at a time starting at the named
// step, stopping on failure or when a step suspends the run.
func (o *Orchestrator) runFrom(ctx context.Context, r *run, startStep string) error {
	p := pipeline.New(o.logger, stepOrder(), map[string]pipeline.Step{
		StepInitialize:        r.initialize,
		StepLoadCandidates:    r.loadCandidates,
		StepBatchCandidates:   r.batchCandidates,
		StepEvaluate:          r.evaluateCandidates,
		StepHumanDecisions:    r.checkHumanDecisions,
		StepProcessDecisions:  r.processDecisions,
		StepScheduleInterview: r.scheduleInterviews,
		StepNotify:            r.sendNotifications,
		StepFinalize:          r.finalize,
	})

	state := models.NewExecutionContext(r.workflow.ID, map[string]any{"job_id": r.workflow.JobID})

	started := false

	for _, name := range p.Order() {
		if name == startStep {
			started = true
		}

		if !started {
			continue
		}

		stepCtx, span := otelhelper.StartSpan(ctx, o.tracer, "orchestrator.step "+name,
			attribute.String(otelhelper.WorkflowIDKey, r.workflow.ID),
			attribute.String(otelhelper.JobIDKey, r.workflow.JobID),
			attribute.String(otelhelper.StepNameKey, name))

		state = p.RunStep(stepCtx, name, state)

		if state.Failed() {
			otelhelper.SetError(span, errors.New(strings.Join(state.Errors, "; ")))
			span.End()

			return o.fail(ctx, r, state)
		}

		span.End()

		if r.suspended {
			o.logger.Info("Workflow suspended for human decisions",
				"workflow_id", r.workflow.ID, "pending", len(r.workflow.PendingDecisions))

			return nil
		}
	}

	return nil
}

// fail marks the workflow failed and publishes the failure event. The
// returned error carries the accumulated step errors.
func (o *Orchestrator) fail(ctx context.Context, r *run, state models.ExecutionContext) error {
	r.workflow.Status = models.WorkflowStatusFailed
	r.workflow.Stage = models.StageFailed
	r.workflow.LastActivityAt = time.Now().UTC()

	if err := o.persistence.Workflows().Update(ctx, r.workflow); err != nil {
		o.logger.Error("Failed to persist workflow failure", "workflow_id", r.workflow.ID, "error", err)
	}

	o.publish(ctx, r.workflow.ID, events.WorkflowFailed{
		BaseEvent: events.NewBaseEvent(events.WorkflowFailedEvent, r.workflow.ID),
		JobID:     r.workflow.JobID,
		Step:      state.CurrentStep,
		Errors:    state.Errors,
	})

	return fmt.Errorf("workflow %s failed at %s: %s",
		r.workflow.ID, state.CurrentStep, strings.Join(state.Errors, "; "))
}

// publish sends an event on the bus, logging instead of failing the run
// when delivery is unavailable.
func (o *Orchestrator) publish(ctx context.Context, key string, event eventbus.Event) {
	if o.publisher == nil {
		return
	}

	if err := o.publisher.Publish(ctx, key, event); err != nil {
		o.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// saveProgress persists the workflow's stage, status and progress.
func (r *run) saveProgress(ctx context.Context, stage models.WorkflowStage, status models.WorkflowStatus, progress int) error {
	r.workflow.Stage = stage
	r.workflow.Status = status
	r.workflow.ProgressPercentage = progress
	r.workflow.LastActivityAt = time.Now().UTC()

	return r.o.persistence.Workflows().Update(ctx, r.workflow)
}

// moveCandidate persists a candidate stage transition and publishes the
// stage-changed event.
func (r *run) moveCandidate(ctx context.Context, candidate *models.Candidate, to models.CandidateStage) error {
	from := candidate.Stage

	if from == to {
		return nil
	}

	if err := r.o.persistence.Candidates().UpdateStage(ctx, candidate.ID, to); err != nil {
		return fmt.Errorf("failed to move candidate %s to %s: %w", candidate.ID, to, err)
	}

	candidate.Stage = to

	r.o.publish(ctx, r.workflow.ID, events.CandidateStageChanged{
		BaseEvent:   events.NewBaseEvent(events.CandidateStageChangedEvent, r.workflow.ID),
		CandidateID: candidate.ID,
		JobID:       candidate.JobID,
		FromStage:   from,
		ToStage:     to,
	})

	return nil
}
