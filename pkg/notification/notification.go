// Package notification assembles and delivers the messages the hiring
// workflow sends to candidates, interviewers and HR.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// Kind classifies an outbound message.
type Kind string

const (
	KindInvitation        Kind = "candidate_invitation"
	KindRejection         Kind = "candidate_rejection"
	KindInterviewerNotice Kind = "interviewer_notice"
	KindHRSummary         Kind = "hr_summary"
	KindDecisionReminder  Kind = "decision_reminder"
)

// Message is one assembled notification ready for delivery.
type Message struct {
	Kind      Kind   `json:"kind"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`

	CandidateID string `json:"candidate_id,omitempty"`
	WorkflowID  string `json:"workflow_id,omitempty"`
}

// Dispatcher delivers one message. Implementations must not retry
// internally; the service treats each message independently.
type Dispatcher interface {
	Send(ctx context.Context, msg *Message) error
}

// LogDispatcher writes messages to the log instead of delivering them.
// It is the development and test backend.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a dispatcher that logs deliveries.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(_ context.Context, msg *Message) error {
	d.logger.Info("Notification dispatched",
		"kind", msg.Kind,
		"recipient", msg.Recipient,
		"subject", msg.Subject)

	return nil
}

// Service fans messages out through the dispatcher, isolating failures per
// recipient: one bad address never blocks the rest of the batch.
type Service struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewService creates a notification service on the given dispatcher.
func NewService(logger *slog.Logger, dispatcher Dispatcher) *Service {
	return &Service{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SendAll delivers every message, collecting per-message failures. The
// returned count is the number of successful deliveries.
func (s *Service) SendAll(ctx context.Context, messages []*Message) (int, []error) {
	sent := 0

	var failures []error

	for _, msg := range messages {
		if err := s.dispatcher.Send(ctx, msg); err != nil {
			s.logger.Error("Notification delivery failed",
				"kind", msg.Kind, "recipient", msg.Recipient, "error", err)

			failures = append(failures, fmt.Errorf("%s to %s: %w", msg.Kind, msg.Recipient, err))

			continue
		}

		sent++
	}

	return sent, failures
}

const timeFormat = "Monday, 2 January 2006 at 15:04 MST"

// BuildInvitation assembles the interview invitation for a candidate.
func BuildInvitation(candidate *models.Candidate, interview *models.Interview, interviewer *models.Interviewer, job *models.Job) *Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", candidate.Name)
	fmt.Fprintf(&b, "Your interview for the %s position is confirmed.\n\n", job.Title)
	fmt.Fprintf(&b, "When: %s\n", interview.ScheduledTime.Format(timeFormat))
	fmt.Fprintf(&b, "Duration: %d minutes\n", interview.DurationMinutes)
	fmt.Fprintf(&b, "Interviewer: %s\n", interviewer.Name)

	if interview.MeetingLink != "" {
		fmt.Fprintf(&b, "Meeting link: %s\n", interview.MeetingLink)
	}

	b.WriteString("\nGood luck!\n")

	return &Message{
		Kind:        KindInvitation,
		Recipient:   candidate.Email,
		Subject:     fmt.Sprintf("Interview confirmed: %s", job.Title),
		Body:        b.String(),
		CandidateID: candidate.ID,
		WorkflowID:  candidate.WorkflowID,
	}
}

// BuildRejection assembles the rejection notice for a candidate.
func BuildRejection(candidate *models.Candidate, job *models.Job) *Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", candidate.Name)
	fmt.Fprintf(&b, "Thank you for applying for the %s position. ", job.Title)
	b.WriteString("After careful review we have decided not to move forward with your application at this time.\n\n")
	b.WriteString("We appreciate the time you invested and encourage you to apply for future openings.\n")

	return &Message{
		Kind:        KindRejection,
		Recipient:   candidate.Email,
		Subject:     fmt.Sprintf("Your application for %s", job.Title),
		Body:        b.String(),
		CandidateID: candidate.ID,
		WorkflowID:  candidate.WorkflowID,
	}
}

// BuildInterviewerNotice assembles the calendar notice for the interviewer.
func BuildInterviewerNotice(interviewer *models.Interviewer, candidate *models.Candidate, interview *models.Interview, job *models.Job) *Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", interviewer.Name)
	fmt.Fprintf(&b, "You have been scheduled to interview %s for the %s position.\n\n", candidate.Name, job.Title)
	fmt.Fprintf(&b, "When: %s\n", interview.ScheduledTime.Format(timeFormat))
	fmt.Fprintf(&b, "Duration: %d minutes\n", interview.DurationMinutes)

	if candidate.ExperienceYears > 0 {
		fmt.Fprintf(&b, "Candidate experience: %d years\n", candidate.ExperienceYears)
	}

	if len(candidate.Technologies) > 0 {
		fmt.Fprintf(&b, "Candidate technologies: %s\n", strings.Join(candidate.Technologies, ", "))
	}

	return &Message{
		Kind:        KindInterviewerNotice,
		Recipient:   interviewer.Email,
		Subject:     fmt.Sprintf("Interview scheduled: %s (%s)", candidate.Name, job.Title),
		Body:        b.String(),
		CandidateID: candidate.ID,
		WorkflowID:  candidate.WorkflowID,
	}
}

// HRSummaryInput carries the per-run figures the HR summary reports.
type HRSummaryInput struct {
	Recipient           string
	Workflow            *models.Workflow
	Job                 *models.Job
	CandidatesEvaluated int
	InterviewsScheduled int
	Rejected            int
	OnHold              int
	Duration            time.Duration
}

// BuildHRSummary assembles the end-of-run summary for HR.
func BuildHRSummary(in HRSummaryInput) *Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Hiring run %q for %s finished.\n\n", in.Workflow.Name, in.Job.Title)
	fmt.Fprintf(&b, "Candidates evaluated: %d\n", in.CandidatesEvaluated)
	fmt.Fprintf(&b, "Interviews scheduled: %d\n", in.InterviewsScheduled)
	fmt.Fprintf(&b, "Rejected: %d\n", in.Rejected)
	fmt.Fprintf(&b, "On hold: %d\n", in.OnHold)
	fmt.Fprintf(&b, "Run duration: %s\n", in.Duration.Round(time.Second))

	return &Message{
		Kind:       KindHRSummary,
		Recipient:  in.Recipient,
		Subject:    fmt.Sprintf("Hiring run summary: %s", in.Job.Title),
		Body:       b.String(),
		WorkflowID: in.Workflow.ID,
	}
}

// BuildDecisionReminder assembles the nudge sent while a run stays parked
// at the human-decision gate.
func BuildDecisionReminder(recipient string, workflow *models.Workflow, waitingSince time.Time) *Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Hiring run %q has been waiting for reviewer decisions since %s.\n\n",
		workflow.Name, waitingSince.Format(timeFormat))
	fmt.Fprintf(&b, "Candidates awaiting a decision: %d\n", len(workflow.PendingDecisions))

	for _, pending := range workflow.PendingDecisions {
		fmt.Fprintf(&b, "  - %s (%s)\n", pending.CandidateName, pending.Recommendation)
	}

	return &Message{
		Kind:       KindDecisionReminder,
		Recipient:  recipient,
		Subject:    fmt.Sprintf("Decisions pending: %s", workflow.Name),
		Body:       b.String(),
		WorkflowID: workflow.ID,
	}
}
