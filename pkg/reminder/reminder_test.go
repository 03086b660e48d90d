package reminder

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/persistence/file"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

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

func seedWorkflow(t *testing.T, store persistence.Persistence, id string, status models.WorkflowStatus, pending int, lastActivity time.Time) {
	t.Helper()

	workflow := &models.Workflow{
		ID:             id,
		JobID:          "job-1",
		Name:           "Run " + id,
		Status:         status,
		Stage:          models.StageAwaitingHumanDecision,
		StartedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}

	for i := 0; i < pending; i++ {
		workflow.PendingDecisions = append(workflow.PendingDecisions, models.PendingDecision{
			CandidateID:    "cand-1",
			CandidateName:  "Dana Reyes",
			DecisionType:   "borderline_candidate",
			Recommendation: models.RecommendationReviewRequired,
		})
	}

	require.NoError(t, store.Workflows().Create(context.Background(), workflow))
}

func TestSweep_RemindsOnlyStaleSuspendedWorkflows(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	dispatcher := &captureDispatcher{}
	service := NewService(testLogger(), store, notification.NewService(testLogger(), dispatcher), "hr@example.com", time.Hour)

	stale := time.Now().Add(-2 * time.Hour)
	fresh := time.Now().Add(-10 * time.Minute)

	seedWorkflow(t, store, "wf-stale", models.WorkflowStatusPaused, 1, stale)
	seedWorkflow(t, store, "wf-fresh", models.WorkflowStatusPaused, 1, fresh)
	seedWorkflow(t, store, "wf-running", models.WorkflowStatusRunning, 0, stale)

	sent, err := service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, dispatcher.messages, 1)
	msg := dispatcher.messages[0]
	assert.Equal(t, notification.KindDecisionReminder, msg.Kind)
	assert.Equal(t, "hr@example.com", msg.Recipient)
	assert.Equal(t, "wf-stale", msg.WorkflowID)
	assert.Contains(t, msg.Body, "Dana Reyes")
}

func TestSweep_PausedWithoutPendingIsSkipped(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	dispatcher := &captureDispatcher{}
	service := NewService(testLogger(), store, notification.NewService(testLogger(), dispatcher), "hr@example.com", time.Hour)

	seedWorkflow(t, store, "wf-paused-empty", models.WorkflowStatusPaused, 0, time.Now().Add(-2*time.Hour))

	sent, err := service.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, dispatcher.messages)
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := NewService(testLogger(), store, notification.NewService(testLogger(), &captureDispatcher{}), "hr@example.com", 0)

	err := service.Start("not a schedule")
	assert.ErrorContains(t, err, "invalid reminder schedule")
}
