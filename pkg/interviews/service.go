// Package interviews manages the lifecycle of scheduled interviews after
// the orchestrator has placed them.
package interviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireflowhq/hireflow/pkg/eventbus"
	"github.com/hireflowhq/hireflow/pkg/events"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

var (
	ErrRescheduleLimit  = errors.New("reschedule limit reached")
	ErrNotReschedulable = errors.New("interview cannot be rescheduled")
	ErrAlreadyCancelled = errors.New("interview is already cancelled")
	ErrSlotConflict     = errors.New("requested slot conflicts with the interviewer's calendar")
)

// Service applies reschedule and cancel operations to persisted interviews.
type Service struct {
	store     persistence.Persistence
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

// NewService creates an interview lifecycle service. The publisher may be
// nil; events are then skipped.
func NewService(logger *slog.Logger, store persistence.Persistence, publisher eventbus.EventPublisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.With("module", "interviews"),
	}
}

// Reschedule moves an interview to a new start time, keeping its duration.
// The move is refused once the reschedule limit is reached or when the new
// interval collides with another booking for the same interviewer.
func (s *Service) Reschedule(ctx context.Context, interviewID string, newTime time.Time) (*models.Interview, error) {
	interview, err := s.store.Interviews().GetByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}

	switch interview.Status {
	case models.InterviewStatusScheduled, models.InterviewStatusRescheduled:
	default:
		return nil, fmt.Errorf("interview %s is %s: %w", interviewID, interview.Status, ErrNotReschedulable)
	}

	if interview.RescheduleCount >= interview.MaxReschedules {
		return nil, fmt.Errorf("interview %s already moved %d times: %w",
			interviewID, interview.RescheduleCount, ErrRescheduleLimit)
	}

	duration := time.Duration(interview.DurationMinutes) * time.Minute

	taken, err := s.intervalTaken(ctx, interview, newTime, newTime.Add(duration))
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("interviewer %s at %s: %w", interview.InterviewerID, newTime, ErrSlotConflict)
	}

	previous := interview.ScheduledTime

	interview.ScheduledTime = newTime
	interview.RescheduleCount++
	interview.Status = models.InterviewStatusRescheduled

	if err := s.store.Interviews().Update(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to persist reschedule: %w", err)
	}

	s.logger.Info("Interview rescheduled",
		"interview_id", interview.ID,
		"previous_time", previous,
		"scheduled_time", newTime,
		"reschedule_count", interview.RescheduleCount)

	s.publish(ctx, interview.CandidateID, events.InterviewRescheduled{
		BaseEvent:       events.NewBaseEvent(events.InterviewRescheduledEvent, ""),
		InterviewID:     interview.ID,
		CandidateID:     interview.CandidateID,
		PreviousTime:    previous,
		ScheduledTime:   newTime,
		RescheduleCount: interview.RescheduleCount,
	})

	return interview, nil
}

// Cancel marks an interview cancelled, freeing its interval for future
// bookings.
func (s *Service) Cancel(ctx context.Context, interviewID, reason string) (*models.Interview, error) {
	interview, err := s.store.Interviews().GetByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}

	if interview.Status == models.InterviewStatusCancelled {
		return nil, fmt.Errorf("interview %s: %w", interviewID, ErrAlreadyCancelled)
	}

	interview.Status = models.InterviewStatusCancelled

	if err := s.store.Interviews().Update(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}

	s.logger.Info("Interview cancelled", "interview_id", interview.ID, "reason", reason)

	s.publish(ctx, interview.CandidateID, events.InterviewCancelled{
		BaseEvent:   events.NewBaseEvent(events.InterviewCancelledEvent, ""),
		InterviewID: interview.ID,
		CandidateID: interview.CandidateID,
		Reason:      reason,
	})

	return interview, nil
}

// intervalTaken scans the interviewer's calendar for a booking overlapping
// [start, end), ignoring the interview being moved and cancelled records.
func (s *Service) intervalTaken(ctx context.Context, interview *models.Interview, start, end time.Time) (bool, error) {
	existing, err := s.store.Interviews().InterviewerSchedule(ctx, interview.InterviewerID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		return false, fmt.Errorf("failed to load interviewer schedule: %w", err)
	}

	for _, other := range existing {
		if other.ID == interview.ID || other.Status == models.InterviewStatusCancelled {
			continue
		}

		if start.Before(other.End()) && end.After(other.ScheduledTime) {
			return true, nil
		}
	}

	return false, nil
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
