package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hireflowhq/hireflow/pkg/eventbus"
	"github.com/hireflowhq/hireflow/pkg/evaluation"
	"github.com/hireflowhq/hireflow/pkg/events"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/otelhelper"
	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/persistence/file"
	"github.com/hireflowhq/hireflow/pkg/scheduling"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// scriptedEvaluator returns a uniform dimension score per resume text, so
// each candidate's recommendation tier is chosen by the test.
type scriptedEvaluator struct {
	scores map[string]float64
}

func (e *scriptedEvaluator) Evaluate(_ context.Context, dimension models.Dimension, _, resumeText string) (*models.DimensionResult, error) {
	score, ok := e.scores[resumeText]
	if !ok {
		score = 9.0
	}

	return &models.DimensionResult{
		Dimension:    dimension,
		Scores:       map[string]float64{"overall": score},
		OverallScore: score,
		Feedback:     "scripted",
	}, nil
}

// capturePublisher records published events in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.GetType())
	}

	return out
}

// captureDispatcher records delivered notifications.
type captureDispatcher struct {
	mu       sync.Mutex
	messages []*notification.Message
}

func (d *captureDispatcher) Send(_ context.Context, msg *notification.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.messages = append(d.messages, msg)

	return nil
}

func (d *captureDispatcher) kinds() map[notification.Kind]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	counts := make(map[notification.Kind]int)
	for _, msg := range d.messages {
		counts[msg.Kind]++
	}

	return counts
}

type harness struct {
	store      persistence.Persistence
	publisher  *capturePublisher
	dispatcher *captureDispatcher
	o          *Orchestrator
}

func newHarness(t *testing.T, scores map[string]float64, config Config) *harness {
	t.Helper()

	logger := testLogger()
	store := file.NewPersistence(t.TempDir())
	publisher := &capturePublisher{}
	dispatcher := &captureDispatcher{}

	aggregator := evaluation.NewAggregator(logger, &scriptedEvaluator{scores: scores}, models.DefaultScoringConfig())
	engine := scheduling.NewEngine(logger, scheduling.NewMemoryReserver())
	notifier := notification.NewService(logger, dispatcher)

	return &harness{
		store:      store,
		publisher:  publisher,
		dispatcher: dispatcher,
		o:          New(logger, store, aggregator, engine, notifier, publisher, config),
	}
}

func (h *harness) seedJob(t *testing.T) *models.Job {
	t.Helper()

	ctx := context.Background()

	job := &models.Job{
		ID:                   "job-1",
		Title:                "Backend Engineer",
		Description:          "Build services in Go",
		RequiredTechnologies: []string{"go", "postgres"},
		Status:               models.JobStatusActive,
		PositionsAvailable:   2,
	}
	require.NoError(t, h.store.Jobs().Create(ctx, job))

	require.NoError(t, h.store.Jobs().SaveInterviewer(ctx, &models.Interviewer{
		ID:           "int-1",
		JobID:        job.ID,
		Name:         "Sam Chen",
		Email:        "sam@example.com",
		Technologies: []string{"go", "postgres"},
	}))

	return job
}

func (h *harness) seedCandidate(t *testing.T, id, resume string) *models.Candidate {
	t.Helper()

	candidate := &models.Candidate{
		ID:               id,
		Name:             "Candidate " + id,
		Email:            id + "@example.com",
		ResumeText:       resume,
		TimeAvailability: "flexible",
		Technologies:     []string{"go"},
		Stage:            models.StageResumeReceived,
		JobID:            "job-1",
	}
	require.NoError(t, h.store.Candidates().Create(context.Background(), candidate))

	return candidate
}

func TestStart_CompletesWhenNoDecisionsNeeded(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"strong": 9.0}, Config{HRContact: "hr@example.com"})
	h.seedJob(t)
	h.seedCandidate(t, "cand-1", "strong")
	h.seedCandidate(t, "cand-2", "strong")

	workflow, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, workflow.Status)
	assert.Equal(t, models.StageCompleted, workflow.Stage)
	assert.Equal(t, 100, workflow.ProgressPercentage)
	require.NotNil(t, workflow.CompletedAt)

	for _, id := range []string{"cand-1", "cand-2"} {
		candidate, err := h.store.Candidates().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StageInterviewScheduled, candidate.Stage)
		assert.Equal(t, 9.0, candidate.OverallScore)
		assert.Equal(t, 90, candidate.MatchPercentage)

		interviews, err := h.store.Interviews().ListByCandidate(ctx, id)
		require.NoError(t, err)
		require.Len(t, interviews, 1)
		assert.NotEmpty(t, interviews[0].MeetingLink)
	}

	types := h.publisher.types()
	assert.Contains(t, types, events.WorkflowStartedEvent)
	assert.Contains(t, types, events.EvaluationCompletedEvent)
	assert.Contains(t, types, events.InterviewScheduledEvent)
	assert.Contains(t, types, events.WorkflowCompletedEvent)
	assert.NotContains(t, types, events.WorkflowSuspendedEvent)

	kinds := h.dispatcher.kinds()
	assert.Equal(t, 2, kinds[notification.KindInvitation])
	assert.Equal(t, 2, kinds[notification.KindInterviewerNotice])
	assert.Equal(t, 1, kinds[notification.KindHRSummary])
}

func TestStart_SuspendsAtHumanDecisionGate(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"strong": 9.0, "borderline": 5.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-strong", "strong")
	h.seedCandidate(t, "cand-borderline", "borderline")

	workflow, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusPaused, workflow.Status)
	assert.Equal(t, models.StageAwaitingHumanDecision, workflow.Stage)
	assert.True(t, workflow.Suspended())
	require.Len(t, workflow.PendingDecisions, 1)
	assert.Equal(t, "cand-borderline", workflow.PendingDecisions[0].CandidateID)
	assert.Equal(t, "borderline_candidate", workflow.PendingDecisions[0].DecisionType)
	assert.Equal(t, models.RecommendationReviewRequired, workflow.PendingDecisions[0].Recommendation)

	snapshot, err := h.store.Checkpoints().Load(ctx, workflow.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot)

	flagged, err := h.store.Candidates().GetByID(ctx, "cand-borderline")
	require.NoError(t, err)
	assert.Equal(t, models.StagePendingManualReview, flagged.Stage)

	// Approved candidates move only after the gate clears.
	strong, err := h.store.Candidates().GetByID(ctx, "cand-strong")
	require.NoError(t, err)
	assert.Equal(t, models.StageResumeReceived, strong.Stage)

	types := h.publisher.types()
	assert.Contains(t, types, events.WorkflowSuspendedEvent)
	assert.Contains(t, types, events.DecisionRequiredEvent)
	assert.NotContains(t, types, events.WorkflowCompletedEvent)
}

func TestResume_ApproveCompletesTheRun(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"strong": 9.0, "borderline": 5.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-strong", "strong")
	h.seedCandidate(t, "cand-borderline", "borderline")

	suspended, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)
	require.True(t, suspended.Suspended())

	resumed, err := h.o.Resume(ctx, suspended.ID, []models.DecisionRecord{
		{CandidateID: "cand-borderline", Decision: models.DecisionApprove, Comments: "worth a conversation"},
	}, "reviewer@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, resumed.Status)
	assert.Empty(t, resumed.PendingDecisions)
	require.Len(t, resumed.DecisionHistory, 1)
	assert.Equal(t, models.DecisionApprove, resumed.DecisionHistory[0].Decision)
	assert.False(t, resumed.DecisionHistory[0].DecidedAt.IsZero())

	for _, id := range []string{"cand-strong", "cand-borderline"} {
		candidate, err := h.store.Candidates().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StageInterviewScheduled, candidate.Stage, id)
	}

	_, err = h.store.Checkpoints().Load(ctx, suspended.ID)
	assert.True(t, persistence.IsNotFound(err))

	types := h.publisher.types()
	assert.Contains(t, types, events.DecisionSubmittedEvent)
	assert.Contains(t, types, events.WorkflowResumedEvent)
	assert.Contains(t, types, events.WorkflowCompletedEvent)
}

func TestResume_RejectSendsRejection(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"strong": 9.0, "weak": 2.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-strong", "strong")
	h.seedCandidate(t, "cand-weak", "weak")

	suspended, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)
	require.Len(t, suspended.PendingDecisions, 1)
	assert.Equal(t, "auto_reject_confirmation", suspended.PendingDecisions[0].DecisionType)

	resumed, err := h.o.Resume(ctx, suspended.ID, []models.DecisionRecord{
		{CandidateID: "cand-weak", Decision: models.DecisionReject},
	}, "reviewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, resumed.Status)

	rejected, err := h.store.Candidates().GetByID(ctx, "cand-weak")
	require.NoError(t, err)
	assert.Equal(t, models.StageRejected, rejected.Stage)

	interviews, err := h.store.Interviews().ListByCandidate(ctx, "cand-weak")
	require.NoError(t, err)
	assert.Empty(t, interviews)

	kinds := h.dispatcher.kinds()
	assert.Equal(t, 1, kinds[notification.KindRejection])
	assert.Equal(t, 1, kinds[notification.KindInvitation])
}

func TestResume_HoldParksTheCandidate(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"borderline": 5.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-borderline", "borderline")

	suspended, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)

	resumed, err := h.o.Resume(ctx, suspended.ID, []models.DecisionRecord{
		{CandidateID: "cand-borderline", Decision: models.DecisionHold},
	}, "reviewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, resumed.Status)

	candidate, err := h.store.Candidates().GetByID(ctx, "cand-borderline")
	require.NoError(t, err)
	assert.Equal(t, models.StageOnHold, candidate.Stage)
}

func TestResume_MissingDecisionLeavesWorkflowSuspended(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"borderline": 5.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-borderline", "borderline")

	suspended, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)

	_, err = h.o.Resume(ctx, suspended.ID, nil, "reviewer@example.com")
	assert.ErrorIs(t, err, ErrIncompleteDecisions)

	_, err = h.o.Resume(ctx, suspended.ID, []models.DecisionRecord{
		{CandidateID: "cand-borderline", Decision: "maybe"},
	}, "reviewer@example.com")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	workflow, err := h.store.Workflows().GetByID(ctx, suspended.ID)
	require.NoError(t, err)
	assert.True(t, workflow.Suspended())
}

func TestResume_RejectsWorkflowThatIsNotSuspended(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"strong": 9.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-1", "strong")

	completed, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)
	require.Equal(t, models.WorkflowStatusCompleted, completed.Status)

	_, err = h.o.Resume(ctx, completed.ID, nil, "reviewer@example.com")
	assert.ErrorIs(t, err, ErrWorkflowNotSuspended)
}

func TestStart_SkipHumanDecisionsAutoRoutes(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"weak": 2.0, "borderline": 5.0}, Config{SkipHumanDecisions: true})
	h.seedJob(t)
	h.seedCandidate(t, "cand-weak", "weak")
	h.seedCandidate(t, "cand-borderline", "borderline")

	workflow, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, workflow.Status)

	rejected, err := h.store.Candidates().GetByID(ctx, "cand-weak")
	require.NoError(t, err)
	assert.Equal(t, models.StageRejected, rejected.Stage)

	held, err := h.store.Candidates().GetByID(ctx, "cand-borderline")
	require.NoError(t, err)
	assert.Equal(t, models.StageOnHold, held.Stage)

	assert.NotContains(t, h.publisher.types(), events.WorkflowSuspendedEvent)
}

func TestStart_FailsOnInactiveJob(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, nil, Config{})

	require.NoError(t, h.store.Jobs().Create(ctx, &models.Job{
		ID:          "job-closed",
		Title:       "Closed Role",
		Description: "closed",
		Status:      models.JobStatusClosed,
	}))

	workflow, err := h.o.Start(ctx, "job-closed", "Stale run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")

	persisted, getErr := h.store.Workflows().GetByID(ctx, workflow.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.WorkflowStatusFailed, persisted.Status)
	assert.Equal(t, models.StageFailed, persisted.Stage)

	assert.Contains(t, h.publisher.types(), events.WorkflowFailedEvent)
}

func TestStart_NoCandidatesStillCompletes(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, nil, Config{})
	h.seedJob(t)

	workflow, err := h.o.Start(ctx, "job-1", "Empty run")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, workflow.Status)
	assert.Equal(t, 100, workflow.ProgressPercentage)
}

func TestStart_ProcessesOnlyTheFirstBatch(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, map[string]float64{"strong": 9.0}, Config{MaxParallelCandidates: 1})
	h.seedJob(t)
	h.seedCandidate(t, "cand-1", "strong")
	h.seedCandidate(t, "cand-2", "strong")
	h.seedCandidate(t, "cand-3", "strong")

	workflow, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, workflow.Status)

	// One batch per pass: a single candidate is evaluated and scheduled,
	// the rest wait for a later run.
	stages := make(map[models.CandidateStage]int)

	for _, id := range []string{"cand-1", "cand-2", "cand-3"} {
		candidate, err := h.store.Candidates().GetByID(ctx, id)
		require.NoError(t, err)
		stages[candidate.Stage]++
	}

	assert.Equal(t, 1, stages[models.StageInterviewScheduled])
	assert.Equal(t, 2, stages[models.StageResumeReceived])
}

func TestStart_EmitsStepAndCandidateSpans(t *testing.T) {
	ctx := context.Background()

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	h := newHarness(t, map[string]float64{"strong": 9.0}, Config{})
	h.seedJob(t)
	h.seedCandidate(t, "cand-1", "strong")

	_, err := h.o.Start(ctx, "job-1", "Backend hiring run")
	require.NoError(t, err)

	var names []string

	candidateTagged := false

	for _, span := range recorder.Ended() {
		names = append(names, span.Name())

		if span.Name() != "orchestrator.evaluate-candidate" {
			continue
		}

		for _, attr := range span.Attributes() {
			if string(attr.Key) == otelhelper.CandidateIDKey && attr.Value.AsString() == "cand-1" {
				candidateTagged = true
			}
		}
	}

	assert.Contains(t, names, "orchestrator.step "+StepInitialize)
	assert.Contains(t, names, "orchestrator.step "+StepFinalize)
	assert.True(t, candidateTagged, "evaluation span must carry the candidate ID")
}
