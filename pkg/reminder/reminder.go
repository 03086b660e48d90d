// Package reminder nudges reviewers about runs parked at the
// human-decision gate.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

// DefaultSchedule sweeps hourly.
const DefaultSchedule = "0 * * * *"

// DefaultGracePeriod is how long a run may wait before the first nudge.
const DefaultGracePeriod = 4 * time.Hour

// Service periodically scans for suspended workflows and sends decision
// reminders to the configured reviewer contact.
type Service struct {
	store       persistence.Persistence
	notifier    *notification.Service
	logger      *slog.Logger
	recipient   string
	gracePeriod time.Duration
	scheduler   *cron.Cron
}

// NewService creates a reminder service. A zero gracePeriod means
// DefaultGracePeriod.
func NewService(logger *slog.Logger, store persistence.Persistence, notifier *notification.Service, recipient string, gracePeriod time.Duration) *Service {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}

	return &Service{
		store:       store,
		notifier:    notifier,
		logger:      logger.With("module", "reminder"),
		recipient:   recipient,
		gracePeriod: gracePeriod,
	}
}

// Start registers the sweep on the given cron schedule and starts the
// scheduler. An empty schedule means DefaultSchedule.
func (s *Service) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s.scheduler = cron.New()

	if _, err := s.scheduler.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("Reminder sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	s.scheduler.Start()
	s.logger.Info("Reminder sweep scheduled", "schedule", schedule, "grace_period", s.gracePeriod)

	return nil
}

// Stop halts the scheduler, waiting for an in-flight sweep to finish.
func (s *Service) Stop() {
	if s.scheduler == nil {
		return
	}

	<-s.scheduler.Stop().Done()
}

// Sweep sends one reminder per suspended workflow whose last activity is
// older than the grace period. It returns the number of reminders sent.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	workflows, err := s.store.Workflows().List(ctx, persistence.WorkflowFilter{
		Status: models.WorkflowStatusPaused,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list paused workflows: %w", err)
	}

	cutoff := time.Now().Add(-s.gracePeriod)

	var messages []*notification.Message

	for _, workflow := range workflows {
		if !workflow.Suspended() {
			continue
		}

		if workflow.LastActivityAt.After(cutoff) {
			continue
		}

		messages = append(messages, notification.BuildDecisionReminder(s.recipient, workflow, workflow.LastActivityAt))
	}

	sent, failures := s.notifier.SendAll(ctx, messages)

	if sent > 0 || len(failures) > 0 {
		s.logger.Info("Reminder sweep finished", "sent", sent, "failures", len(failures))
	}

	return sent, nil
}
