package scheduling

import (
	"context"
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

func newTestEngine() *Engine {
	return NewEngine(testLogger(), NewMemoryReserver())
}

// Tuesday.
var tuesdayNoon = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func backendJob() *models.Job {
	return &models.Job{
		ID:                   "job-1",
		Title:                "Backend Engineer",
		Description:          "Build services",
		RequiredTechnologies: []string{"python", "sql"},
		Status:               models.JobStatusActive,
	}
}

func TestEngine_MatchingInterviewerGetsEarliestMorningSlot(t *testing.T) {
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "mornings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python", "sql"}, MaxInterviewsPerDay: 3},
			{ID: "int-b", JobID: "job-1", Name: "B", Email: "b@example.com", Technologies: []string{"java"}, MaxInterviewsPerDay: 3},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Empty(t, result.Unscheduled)
	assert.InDelta(t, 100.0, result.SuccessRate, 1e-9)

	interview := result.Scheduled[0]
	assert.Equal(t, "int-a", interview.InterviewerID, "zero-match interviewer must be filtered out")
	assert.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), interview.ScheduledTime)
	assert.Equal(t, 60, interview.DurationMinutes)
	assert.Equal(t, models.InterviewStatusScheduled, interview.Status)
}

func TestEngine_NoMatchingInterviewer(t *testing.T) {
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-b", JobID: "job-1", Name: "B", Email: "b@example.com", Technologies: []string{"java"}},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Scheduled)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "cand-1", result.Unscheduled[0].CandidateID)
	assert.Equal(t, "no available interviewer", result.Unscheduled[0].Reason)
	assert.Zero(t, result.SuccessRate)
}

func TestEngine_InPassReservationsAreVisibleToLaterCandidates(t *testing.T) {
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "mornings"},
			{ID: "cand-2", Name: "Eli", Email: "eli@example.com", JobID: "job-1", TimeAvailability: "mornings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 2)
	assert.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), result.Scheduled[0].ScheduledTime)
	assert.Equal(t, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC), result.Scheduled[1].ScheduledTime)
}

func TestEngine_InterviewerAtTodaysCapacityIsExcluded(t *testing.T) {
	// int-a holds the stronger match but is already at today's cap, so the
	// candidate goes to int-b.
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python", "sql"}, MaxInterviewsPerDay: 1},
			{ID: "int-b", JobID: "job-1", Name: "B", Email: "b@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			"int-a": {{Start: today.Add(10 * time.Hour), End: today.Add(11 * time.Hour)}},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, "int-b", result.Scheduled[0].InterviewerID)
}

func TestEngine_WholePanelAtCapacityReportsNoInterviewer(t *testing.T) {
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 1},
		},
		Busy: map[string][]models.BusyInterval{
			"int-a": {{Start: today.Add(10 * time.Hour), End: today.Add(11 * time.Hour)}},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Scheduled)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "no available interviewer", result.Unscheduled[0].Reason)
}

func TestEngine_BestInterviewerIsNeverSubstituted(t *testing.T) {
	// int-a wins the match tie-break but has every evening booked; the
	// candidate must be reported as a conflict, not handed to int-b.
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "evenings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python", "sql"}, MaxInterviewsPerDay: 3},
			{ID: "int-b", JobID: "job-1", Name: "B", Email: "b@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			"int-a": eveningBlocks(tuesdayNoon, DefaultSearchDays),
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Scheduled)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "no matching time slot", result.Unscheduled[0].Reason)
}

func TestEngine_ExistingBusyIntervalsBlockSlots(t *testing.T) {
	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "mornings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			"int-a": {{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, day.Add(10*time.Hour), result.Scheduled[0].ScheduledTime)
}

func TestEngine_TieBreakPrefersLighterLoad(t *testing.T) {
	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "afternoons"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python", "sql"}, MaxInterviewsPerDay: 3},
			{ID: "int-b", JobID: "job-1", Name: "B", Email: "b@example.com", Technologies: []string{"python", "sql"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			"int-a": {{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, "int-b", result.Scheduled[0].InterviewerID)
	assert.Equal(t, day.Add(13*time.Hour), result.Scheduled[0].ScheduledTime)
}

func TestEngine_HigherMatchBeatsLighterLoad(t *testing.T) {
	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "afternoons"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python", "sql"}, MaxInterviewsPerDay: 3},
			{ID: "int-b", JobID: "job-1", Name: "B", Email: "b@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			"int-a": {{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, "int-a", result.Scheduled[0].InterviewerID)
}

func TestEngine_WeekendsAreSkipped(t *testing.T) {
	// Friday afternoon; the next business day is Monday.
	friday := time.Date(2026, 9, 4, 15, 0, 0, 0, time.UTC)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Now: friday,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC), result.Scheduled[0].ScheduledTime)
	assert.Equal(t, time.Monday, result.Scheduled[0].ScheduledTime.Weekday())
}

func TestEngine_EveningAvailabilityUsesEveningSlots(t *testing.T) {
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "evenings only"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, 18, result.Scheduled[0].ScheduledTime.Hour())
}

func TestEngine_ExternallyReservedSlotIsSkipped(t *testing.T) {
	reserver := NewMemoryReserver()

	slot := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	claimed, err := reserver.Reserve(context.Background(), "int-a", slot)
	require.NoError(t, err)
	require.True(t, claimed)

	engine := NewEngine(testLogger(), reserver)

	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "mornings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Now: tuesdayNoon,
	}

	result, err := engine.Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Scheduled, 1)
	assert.Equal(t, slot.Add(time.Hour), result.Scheduled[0].ScheduledTime)
}

func TestEngine_ExhaustedWindowReportsReason(t *testing.T) {
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1", TimeAvailability: "mornings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			// Block every morning of the single search day.
			"int-a": {{
				Start: time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC),
			}},
		},
		Now:        tuesdayNoon,
		SearchDays: 1,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Scheduled)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "no matching time slot", result.Unscheduled[0].Reason)
}

func TestEngine_PartialSuccessRate(t *testing.T) {
	req := &Request{
		Job: backendJob(),
		Candidates: []*models.Candidate{
			{ID: "cand-1", Name: "Dana", Email: "dana@example.com", JobID: "job-1"},
			{ID: "cand-2", Name: "Eli", Email: "eli@example.com", JobID: "job-1", TimeAvailability: "evenings"},
		},
		Interviewers: []*models.Interviewer{
			{ID: "int-a", JobID: "job-1", Name: "A", Email: "a@example.com", Technologies: []string{"python"}, MaxInterviewsPerDay: 3},
		},
		Busy: map[string][]models.BusyInterval{
			// Evenings are fully booked on every search day.
			"int-a": eveningBlocks(tuesdayNoon, DefaultSearchDays),
		},
		Now: tuesdayNoon,
	}

	result, err := newTestEngine().Schedule(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, result.Scheduled, 1)
	assert.Len(t, result.Unscheduled, 1)
	assert.InDelta(t, 50.0, result.SuccessRate, 1e-9)
}

func eveningBlocks(now time.Time, days int) []models.BusyInterval {
	intervals := make([]models.BusyInterval, 0, days)

	for _, day := range businessDays(now, days) {
		intervals = append(intervals, models.BusyInterval{
			Start: day.Add(18 * time.Hour),
			End:   day.Add(20 * time.Hour),
		})
	}

	return intervals
}
