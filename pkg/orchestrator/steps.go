package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/hireflowhq/hireflow/pkg/events"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/otelhelper"
	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/scheduling"
)

func (r *run) initialize(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	job, err := r.o.persistence.Jobs().GetByID(ctx, r.state.JobID)
	if err != nil {
		return state.WithError("failed to load job %s: %v", r.state.JobID, err)
	}

	if job.Status != models.JobStatusActive {
		return state.WithError("job %s is %s, not active", job.ID, job.Status)
	}

	r.job = job

	if err := r.saveProgress(ctx, models.StageInitialized, models.WorkflowStatusRunning, 5); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.WithValue("job_title", job.Title)
}

func (r *run) loadCandidates(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	candidates, err := r.o.persistence.Candidates().List(ctx, persistence.CandidateFilter{
		JobID: r.job.ID,
		Stage: models.StageResumeReceived,
	})
	if err != nil {
		return state.WithError("failed to list candidates: %v", err)
	}

	ids := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		candidate.WorkflowID = r.workflow.ID

		if err := r.o.persistence.Candidates().Update(ctx, candidate); err != nil {
			return state.WithError("failed to attach candidate %s to workflow: %v", candidate.ID, err)
		}

		r.candidates[candidate.ID] = candidate
		ids = append(ids, candidate.ID)
	}

	// The full list; the batching step trims it to one pass's batch.
	r.state.Batches = [][]string{ids}

	r.o.publish(ctx, r.workflow.ID, events.WorkflowStarted{
		BaseEvent:      events.NewBaseEvent(events.WorkflowStartedEvent, r.workflow.ID),
		JobID:          r.job.ID,
		WorkflowName:   r.workflow.Name,
		CandidateCount: len(candidates),
	})

	if err := r.saveProgress(ctx, models.StageCandidatesLoaded, models.WorkflowStatusRunning, 15); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.WithOutput("candidates_loaded", len(candidates))
}

// batchCandidates takes one batch from the front of the candidate list.
// Candidates beyond it are left at their current stage for a later run;
// the known limitation is logged rather than silently looped over.
func (r *run) batchCandidates(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	ids := r.state.candidateIDs()

	limit := r.o.config.MaxParallelCandidates
	if limit > len(ids) {
		limit = len(ids)
	}

	if deferred := len(ids) - limit; deferred > 0 {
		r.o.logger.Warn("Only the first candidate batch is processed per run",
			"workflow_id", r.workflow.ID, "batch_size", limit, "deferred", deferred)
	}

	r.state.Batches = [][]string{ids[:limit]}

	if err := r.saveProgress(ctx, models.StageBatched, models.WorkflowStatusRunning, 20); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.
		WithOutput("batch_size", limit).
		WithOutput("deferred", len(ids)-limit)
}

func (r *run) evaluateCandidates(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	var mu sync.Mutex

	for _, batch := range r.state.Batches {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(r.o.config.MaxParallelCandidates)

		for _, candidateID := range batch {
			candidate := r.candidates[candidateID]

			group.Go(func() error {
				evalCtx, span := otelhelper.StartSpan(groupCtx, r.o.tracer, "orchestrator.evaluate-candidate",
					attribute.String(otelhelper.WorkflowIDKey, r.workflow.ID),
					attribute.String(otelhelper.CandidateIDKey, candidate.ID))
				defer span.End()

				evaluated, err := r.o.aggregator.EvaluateCandidate(evalCtx, candidate, r.job)
				if err != nil {
					otelhelper.SetError(span, err)

					return err
				}

				mu.Lock()
				defer mu.Unlock()

				r.state.Evaluations[candidate.ID] = evaluated

				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return state.WithError("batch evaluation aborted: %v", err)
		}
	}

	for _, candidateID := range r.state.candidateIDs() {
		evaluated, ok := r.state.Evaluations[candidateID]
		if !ok {
			continue
		}

		candidate := r.candidates[candidateID]
		candidate.OverallScore = evaluated.OverallScore
		candidate.MatchPercentage = evaluated.MatchPercentage

		if err := r.o.persistence.Candidates().Update(ctx, candidate); err != nil {
			return state.WithError("failed to persist score for candidate %s: %v", candidateID, err)
		}

		r.o.publish(ctx, r.workflow.ID, events.EvaluationCompleted{
			BaseEvent:       events.NewBaseEvent(events.EvaluationCompletedEvent, r.workflow.ID),
			CandidateID:     candidateID,
			JobID:           r.job.ID,
			OverallScore:    evaluated.OverallScore,
			MatchPercentage: evaluated.MatchPercentage,
			Recommendation:  evaluated.Recommendation,
		})
	}

	if err := r.saveProgress(ctx, models.StageEvaluated, models.WorkflowStatusRunning, 50); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.WithOutput("candidates_evaluated", len(r.state.Evaluations))
}

// checkHumanDecisions routes each evaluated candidate. Strong candidates
// are approved outright; flagged candidates either suspend the run for a
// reviewer or, with the gate disabled, are auto-routed.
func (r *run) checkHumanDecisions(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	var pending []models.PendingDecision

	for _, candidateID := range r.state.candidateIDs() {
		evaluated, ok := r.state.Evaluations[candidateID]
		if !ok {
			continue
		}

		if !evaluated.Recommendation.NeedsHumanDecision() {
			r.state.Approved = append(r.state.Approved, candidateID)

			continue
		}

		if r.o.config.SkipHumanDecisions {
			if evaluated.Recommendation == models.RecommendationReject {
				r.state.Rejected = append(r.state.Rejected, candidateID)
			} else {
				r.state.OnHold = append(r.state.OnHold, candidateID)
			}

			continue
		}

		pending = append(pending, models.PendingDecision{
			CandidateID:    candidateID,
			CandidateName:  r.candidates[candidateID].Name,
			DecisionType:   decisionTypeFor(evaluated.Recommendation),
			Summary:        evaluated.Summary,
			Recommendation: evaluated.Recommendation,
		})
	}

	if len(pending) == 0 {
		return state.WithOutput("pending_decisions", 0)
	}

	return r.suspend(ctx, state, pending)
}

// suspend checkpoints the run, parks the workflow at the gate and stops
// step execution.
func (r *run) suspend(ctx context.Context, state models.ExecutionContext, pending []models.PendingDecision) models.ExecutionContext {
	r.state.PendingDecisions = pending
	r.state.ResumeStep = StepProcessDecisions
	r.state.SuspendedAt = time.Now().UTC()

	snapshot, err := r.state.encode()
	if err != nil {
		return state.WithError("%v", err)
	}

	if err := r.o.persistence.Checkpoints().Save(ctx, r.workflow.ID, snapshot); err != nil {
		return state.WithError("failed to save checkpoint: %v", err)
	}

	for _, decision := range pending {
		if err := r.moveCandidate(ctx, r.candidates[decision.CandidateID], models.StagePendingManualReview); err != nil {
			return state.WithError("%v", err)
		}
	}

	r.workflow.PendingDecisions = pending
	if err := r.saveProgress(ctx, models.StageAwaitingHumanDecision, models.WorkflowStatusPaused, 60); err != nil {
		return state.WithError("failed to persist suspension: %v", err)
	}

	r.o.publish(ctx, r.workflow.ID, events.WorkflowSuspended{
		BaseEvent:        events.NewBaseEvent(events.WorkflowSuspendedEvent, r.workflow.ID),
		JobID:            r.job.ID,
		Stage:            r.workflow.Stage,
		PendingDecisions: pending,
	})

	r.o.publish(ctx, r.workflow.ID, events.DecisionRequired{
		BaseEvent:        events.NewBaseEvent(events.DecisionRequiredEvent, r.workflow.ID),
		JobID:            r.job.ID,
		PendingDecisions: pending,
	})

	r.suspended = true

	return state.WithOutput("pending_decisions", len(pending))
}

func decisionTypeFor(recommendation models.Recommendation) string {
	if recommendation == models.RecommendationReject {
		return "auto_reject_confirmation"
	}

	return "borderline_candidate"
}

func (r *run) processDecisions(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	transitions := []struct {
		ids   []string
		stage models.CandidateStage
	}{
		{r.state.Approved, models.StageApprovedForInterview},
		{r.state.Rejected, models.StageRejected},
		{r.state.OnHold, models.StageOnHold},
	}

	for _, transition := range transitions {
		for _, candidateID := range transition.ids {
			if err := r.moveCandidate(ctx, r.candidates[candidateID], transition.stage); err != nil {
				return state.WithError("%v", err)
			}
		}
	}

	if err := r.saveProgress(ctx, models.StageApprovedProcessed, models.WorkflowStatusRunning, 70); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.
		WithOutput("approved", len(r.state.Approved)).
		WithOutput("rejected", len(r.state.Rejected)).
		WithOutput("on_hold", len(r.state.OnHold))
}

func (r *run) scheduleInterviews(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	approved := make([]*models.Candidate, 0, len(r.state.Approved))
	for _, candidateID := range r.state.Approved {
		approved = append(approved, r.candidates[candidateID])
	}

	if len(approved) == 0 {
		if err := r.saveProgress(ctx, models.StageInterviewsScheduled, models.WorkflowStatusRunning, 85); err != nil {
			return state.WithError("failed to persist progress: %v", err)
		}

		return state.WithOutput("interviews_scheduled", 0)
	}

	interviewers, err := r.o.persistence.Jobs().Interviewers(ctx, r.job.ID)
	if err != nil {
		return state.WithError("failed to load interviewer panel: %v", err)
	}

	busy, err := r.collectBusyIntervals(ctx, interviewers)
	if err != nil {
		return state.WithError("%v", err)
	}

	result, err := r.o.engine.Schedule(ctx, &scheduling.Request{
		Job:           r.job,
		Candidates:    approved,
		Interviewers:  interviewers,
		Busy:          busy,
		InterviewType: r.o.config.InterviewType,
		SearchDays:    r.o.config.SearchDays,
	})
	if err != nil {
		return state.WithError("scheduling pass failed: %v", err)
	}

	r.unscheduled = result.Unscheduled

	for _, interview := range result.Scheduled {
		interview.MeetingID = uuid.New().String()
		interview.MeetingLink = r.o.config.MeetingLinkBase + interview.MeetingID

		if err := r.o.persistence.Interviews().CreateScheduled(ctx, interview); err != nil {
			if persistence.IsSlotTaken(err) {
				r.o.logger.Warn("Slot lost to a concurrent booking",
					"candidate_id", interview.CandidateID,
					"interviewer_id", interview.InterviewerID,
					"scheduled_time", interview.ScheduledTime)

				r.unscheduled = append(r.unscheduled, scheduling.Unscheduled{
					CandidateID: interview.CandidateID,
					Reason:      "slot taken by a concurrent booking",
				})

				continue
			}

			return state.WithError("failed to persist interview for candidate %s: %v", interview.CandidateID, err)
		}

		if err := r.moveCandidate(ctx, r.candidates[interview.CandidateID], models.StageInterviewScheduled); err != nil {
			return state.WithError("%v", err)
		}

		r.o.publish(ctx, r.workflow.ID, events.InterviewScheduled{
			BaseEvent:     events.NewBaseEvent(events.InterviewScheduledEvent, r.workflow.ID),
			InterviewID:   interview.ID,
			CandidateID:   interview.CandidateID,
			InterviewerID: interview.InterviewerID,
			JobID:         interview.JobID,
			ScheduledTime: interview.ScheduledTime,
			MeetingLink:   interview.MeetingLink,
		})

		r.scheduled = append(r.scheduled, interview)
	}

	if err := r.saveProgress(ctx, models.StageInterviewsScheduled, models.WorkflowStatusRunning, 85); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.
		WithOutput("interviews_scheduled", len(r.scheduled)).
		WithOutput("unscheduled", len(r.unscheduled))
}

// collectBusyIntervals loads each interviewer's live commitments so the
// scheduling pass starts from the persisted calendar.
func (r *run) collectBusyIntervals(ctx context.Context, interviewers []*models.Interviewer) (map[string][]models.BusyInterval, error) {
	busy := make(map[string][]models.BusyInterval, len(interviewers))

	for _, interviewer := range interviewers {
		existing, err := r.o.persistence.Interviews().InterviewerSchedule(ctx, interviewer.ID, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}

		for _, interview := range existing {
			if interview.Status == models.InterviewStatusCancelled {
				continue
			}

			busy[interviewer.ID] = append(busy[interviewer.ID], models.BusyInterval{
				Start: interview.ScheduledTime,
				End:   interview.End(),
			})
		}
	}

	return busy, nil
}

// sendNotifications fans the run's messages out. Delivery failures are
// isolated per recipient and never fail the run.
func (r *run) sendNotifications(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	interviewers, err := r.o.persistence.Jobs().Interviewers(ctx, r.job.ID)
	if err != nil {
		return state.WithError("failed to load interviewer panel: %v", err)
	}

	panel := make(map[string]*models.Interviewer, len(interviewers))
	for _, interviewer := range interviewers {
		panel[interviewer.ID] = interviewer
	}

	var messages []*notification.Message

	for _, interview := range r.scheduled {
		candidate := r.candidates[interview.CandidateID]

		interviewer, ok := panel[interview.InterviewerID]
		if !ok {
			r.o.logger.Warn("Interviewer missing from panel, skipping notice", "interviewer_id", interview.InterviewerID)

			continue
		}

		messages = append(messages,
			notification.BuildInvitation(candidate, interview, interviewer, r.job),
			notification.BuildInterviewerNotice(interviewer, candidate, interview, r.job))
	}

	for _, candidateID := range r.state.Rejected {
		messages = append(messages, notification.BuildRejection(r.candidates[candidateID], r.job))
	}

	if r.o.config.HRContact != "" {
		messages = append(messages, notification.BuildHRSummary(notification.HRSummaryInput{
			Recipient:           r.o.config.HRContact,
			Workflow:            r.workflow,
			Job:                 r.job,
			CandidatesEvaluated: len(r.state.Evaluations),
			InterviewsScheduled: len(r.scheduled),
			Rejected:            len(r.state.Rejected),
			OnHold:              len(r.state.OnHold),
			Duration:            time.Since(r.workflow.StartedAt),
		}))
	}

	sent, failures := r.o.notifier.SendAll(ctx, messages)

	if err := r.saveProgress(ctx, models.StageNotificationsSent, models.WorkflowStatusRunning, 95); err != nil {
		return state.WithError("failed to persist progress: %v", err)
	}

	return state.
		WithOutput("notifications_sent", sent).
		WithOutput("notification_failures", len(failures))
}

func (r *run) finalize(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	now := time.Now().UTC()

	r.workflow.CompletedAt = &now

	if err := r.saveProgress(ctx, models.StageCompleted, models.WorkflowStatusCompleted, 100); err != nil {
		return state.WithError("failed to persist completion: %v", err)
	}

	if err := r.o.persistence.Checkpoints().Delete(ctx, r.workflow.ID); err != nil {
		r.o.logger.Warn("Failed to delete checkpoint", "workflow_id", r.workflow.ID, "error", err)
	}

	r.o.publish(ctx, r.workflow.ID, events.WorkflowCompleted{
		BaseEvent:           events.NewBaseEvent(events.WorkflowCompletedEvent, r.workflow.ID),
		JobID:               r.job.ID,
		Duration:            now.Sub(r.workflow.StartedAt),
		CandidatesEvaluated: len(r.state.Evaluations),
		InterviewsScheduled: len(r.scheduled),
	})

	r.o.logger.Info("Workflow completed",
		"workflow_id", r.workflow.ID,
		"candidates_evaluated", len(r.state.Evaluations),
		"interviews_scheduled", len(r.scheduled))

	return state.WithOutput("completed_at", now)
}
