package notification

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// failingDispatcher fails for one specific recipient.
type failingDispatcher struct {
	failFor string
	sent    []*Message
}

func (d *failingDispatcher) Send(_ context.Context, msg *Message) error {
	if msg.Recipient == d.failFor {
		return errors.New("mailbox unavailable")
	}

	d.sent = append(d.sent, msg)

	return nil
}

func TestService_SendAllIsolatesFailures(t *testing.T) {
	dispatcher := &failingDispatcher{failFor: "broken@example.com"}
	service := NewService(testLogger(), dispatcher)

	messages := []*Message{
		{Kind: KindInvitation, Recipient: "a@example.com", Subject: "s"},
		{Kind: KindInvitation, Recipient: "broken@example.com", Subject: "s"},
		{Kind: KindRejection, Recipient: "b@example.com", Subject: "s"},
	}

	sent, failures := service.SendAll(context.Background(), messages)

	assert.Equal(t, 2, sent)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "broken@example.com")
	assert.Len(t, dispatcher.sent, 2)
}

func TestBuildInvitation(t *testing.T) {
	candidate := &models.Candidate{ID: "cand-1", Name: "Dana Reyes", Email: "dana@example.com", WorkflowID: "wf-1"}
	interviewer := &models.Interviewer{ID: "int-1", Name: "Sam Chen", Email: "sam@example.com"}
	job := &models.Job{ID: "job-1", Title: "Backend Engineer"}
	interview := &models.Interview{
		ID:              "iv-1",
		ScheduledTime:   time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		MeetingLink:     "https://meet.example.com/iv-1",
	}

	msg := BuildInvitation(candidate, interview, interviewer, job)

	assert.Equal(t, KindInvitation, msg.Kind)
	assert.Equal(t, "dana@example.com", msg.Recipient)
	assert.Contains(t, msg.Subject, "Backend Engineer")
	assert.Contains(t, msg.Body, "Dana Reyes")
	assert.Contains(t, msg.Body, "Sam Chen")
	assert.Contains(t, msg.Body, "60 minutes")
	assert.Contains(t, msg.Body, "https://meet.example.com/iv-1")
	assert.Equal(t, "wf-1", msg.WorkflowID)
}

func TestBuildRejection(t *testing.T) {
	candidate := &models.Candidate{ID: "cand-1", Name: "Dana Reyes", Email: "dana@example.com"}
	job := &models.Job{ID: "job-1", Title: "Backend Engineer"}

	msg := BuildRejection(candidate, job)

	assert.Equal(t, KindRejection, msg.Kind)
	assert.Contains(t, msg.Body, "not to move forward")
	assert.Contains(t, msg.Subject, "Backend Engineer")
}

func TestBuildInterviewerNotice(t *testing.T) {
	candidate := &models.Candidate{
		ID: "cand-1", Name: "Dana Reyes", Email: "dana@example.com",
		ExperienceYears: 5, Technologies: []string{"python", "sql"},
	}
	interviewer := &models.Interviewer{ID: "int-1", Name: "Sam Chen", Email: "sam@example.com"}
	job := &models.Job{ID: "job-1", Title: "Backend Engineer"}
	interview := &models.Interview{ScheduledTime: time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), DurationMinutes: 60}

	msg := BuildInterviewerNotice(interviewer, candidate, interview, job)

	assert.Equal(t, "sam@example.com", msg.Recipient)
	assert.Contains(t, msg.Body, "5 years")
	assert.Contains(t, msg.Body, "python, sql")
}

func TestBuildDecisionReminder(t *testing.T) {
	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "Backend hiring run",
		PendingDecisions: []models.PendingDecision{
			{CandidateID: "cand-1", CandidateName: "Dana Reyes", Recommendation: models.RecommendationReviewRequired},
		},
	}

	msg := BuildDecisionReminder("hr@example.com", workflow, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, KindDecisionReminder, msg.Kind)
	assert.Contains(t, msg.Body, "Dana Reyes")
	assert.Contains(t, msg.Body, "review_required")
}
