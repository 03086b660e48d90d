package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/hireflowhq/hireflow/pkg/events"
	"github.com/hireflowhq/hireflow/pkg/models"
)

// Resume applies reviewer decisions to a suspended workflow and runs the
// remaining steps. Every pending candidate must have a valid decision;
// otherwise nothing is applied and the workflow stays suspended.
func (o *Orchestrator) Resume(ctx context.Context, workflowID string, decisions []models.DecisionRecord, resumedBy string) (*models.Workflow, error) {
	workflow, err := o.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	if !workflow.Suspended() {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, ErrWorkflowNotSuspended)
	}

	snapshot, err := o.persistence.Checkpoints().Load(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	state, err := decodeState(snapshot)
	if err != nil {
		return nil, err
	}

	applied, err := matchDecisions(workflow.PendingDecisions, decisions)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	for i := range applied {
		record := &applied[i]
		if record.DecidedAt.IsZero() {
			record.DecidedAt = now
		}

		switch record.Decision {
		case models.DecisionApprove:
			state.Approved = append(state.Approved, record.CandidateID)
		case models.DecisionReject:
			state.Rejected = append(state.Rejected, record.CandidateID)
		case models.DecisionHold, models.DecisionReschedule:
			state.OnHold = append(state.OnHold, record.CandidateID)
		}
	}

	state.PendingDecisions = nil

	workflow.Status = models.WorkflowStatusRunning
	workflow.PendingDecisions = nil
	workflow.DecisionHistory = append(workflow.DecisionHistory, applied...)
	workflow.LastActivityAt = now

	if err := o.persistence.Workflows().Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to persist resumption: %w", err)
	}

	for _, record := range applied {
		o.publish(ctx, workflowID, events.DecisionSubmitted{
			BaseEvent:   events.NewBaseEvent(events.DecisionSubmittedEvent, workflowID),
			CandidateID: record.CandidateID,
			Decision:    record.Decision,
			Comments:    record.Comments,
		})
	}

	o.publish(ctx, workflowID, events.WorkflowResumed{
		BaseEvent:     events.NewBaseEvent(events.WorkflowResumedEvent, workflowID),
		JobID:         workflow.JobID,
		ResumedBy:     resumedBy,
		DecisionCount: len(applied),
	})

	o.logger.Info("Workflow resumed",
		"workflow_id", workflowID, "decisions", len(applied), "resumed_by", resumedBy)

	r, err := o.rebuildRun(ctx, workflow, state)
	if err != nil {
		return workflow, err
	}

	resumeStep := state.ResumeStep
	if resumeStep == "" {
		resumeStep = StepProcessDecisions
	}

	if err := o.runFrom(ctx, r, resumeStep); err != nil {
		return workflow, err
	}

	return workflow, nil
}

// matchDecisions pairs every pending candidate with its submitted record.
// Decisions for candidates that are not pending are ignored.
func matchDecisions(pending []models.PendingDecision, decisions []models.DecisionRecord) ([]models.DecisionRecord, error) {
	byCandidate := make(map[string]models.DecisionRecord, len(decisions))
	for _, record := range decisions {
		byCandidate[record.CandidateID] = record
	}

	applied := make([]models.DecisionRecord, 0, len(pending))

	for _, p := range pending {
		record, ok := byCandidate[p.CandidateID]
		if !ok {
			return nil, fmt.Errorf("candidate %s: %w", p.CandidateID, ErrIncompleteDecisions)
		}

		if !record.Decision.Valid() {
			return nil, fmt.Errorf("candidate %s has decision %q: %w", p.CandidateID, record.Decision, ErrInvalidDecision)
		}

		if record.DecisionType == "" {
			record.DecisionType = p.DecisionType
		}

		applied = append(applied, record)
	}

	return applied, nil
}

// rebuildRun reloads the job and candidates the checkpoint refers to.
func (o *Orchestrator) rebuildRun(ctx context.Context, workflow *models.Workflow, state *State) (*run, error) {
	job, err := o.persistence.Jobs().GetByID(ctx, state.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", state.JobID, err)
	}

	candidates := make(map[string]*models.Candidate, len(state.Evaluations))

	for _, candidateID := range state.candidateIDs() {
		candidate, err := o.persistence.Candidates().GetByID(ctx, candidateID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate %s: %w", candidateID, err)
		}

		candidates[candidateID] = candidate
	}

	return &run{
		o:          o,
		workflow:   workflow,
		state:      state,
		job:        job,
		candidates: candidates,
	}, nil
}
