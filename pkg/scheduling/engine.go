// Package scheduling assigns approved candidates to interviewer slots.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// Request describes one scheduling pass: the approved candidates of a job,
// the interviewer panel, and each interviewer's existing commitments.
type Request struct {
	Job          *models.Job
	Candidates   []*models.Candidate
	Interviewers []*models.Interviewer

	// Busy intervals per interviewer ID, from already persisted interviews.
	Busy map[string][]models.BusyInterval

	// InterviewType selects the slot duration; empty means the 60-minute
	// default.
	InterviewType string

	// Now anchors the search window; the first candidate slot is on the
	// next business day. Zero means time.Now().
	Now time.Time

	// SearchDays bounds the lookahead; zero means DefaultSearchDays.
	SearchDays int
}

// Unscheduled names a candidate the pass could not place and why.
type Unscheduled struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
}

// Result is the outcome of one scheduling pass.
type Result struct {
	Scheduled   []*models.Interview `json:"scheduled"`
	Unscheduled []Unscheduled       `json:"unscheduled,omitempty"`
	SuccessRate float64             `json:"success_rate"`
}

// Engine places candidates one at a time, matching each with the single
// interviewer holding the strongest technology match and, on ties, the
// lightest load. Slots claimed earlier in the pass are visible to later
// candidates.
type Engine struct {
	reserver SlotReserver
	logger   *slog.Logger
}

// NewEngine creates a scheduling engine using the given slot reserver.
func NewEngine(logger *slog.Logger, reserver SlotReserver) *Engine {
	return &Engine{
		reserver: reserver,
		logger:   logger,
	}
}

// passState tracks the commitments accumulated during one pass, merged
// over the request's persisted busy intervals.
type passState struct {
	busy     map[string][]models.BusyInterval
	capacity map[string]map[string]int
}

func newPassState(req *Request) *passState {
	state := &passState{
		busy:     make(map[string][]models.BusyInterval, len(req.Interviewers)),
		capacity: make(map[string]map[string]int, len(req.Interviewers)),
	}

	for id, intervals := range req.Busy {
		state.busy[id] = append(state.busy[id], intervals...)

		days := make(map[string]int)
		for _, interval := range intervals {
			days[dayKey(interval.Start)]++
		}

		state.capacity[id] = days
	}

	return state
}

func (s *passState) overlaps(interviewerID string, start, end time.Time) bool {
	for _, interval := range s.busy[interviewerID] {
		if interval.Overlaps(start, end) {
			return true
		}
	}

	return false
}

func (s *passState) load(interviewerID string) int {
	return len(s.busy[interviewerID])
}

func (s *passState) dayCount(interviewerID string, day time.Time) int {
	return s.capacity[interviewerID][dayKey(day)]
}

func (s *passState) commit(interviewerID string, start, end time.Time) {
	s.busy[interviewerID] = append(s.busy[interviewerID], models.BusyInterval{Start: start, End: end})

	if s.capacity[interviewerID] == nil {
		s.capacity[interviewerID] = make(map[string]int)
	}

	s.capacity[interviewerID][dayKey(start)]++
}

// Schedule runs one pass over the request's candidates in order. It never
// fails a whole batch: candidates that cannot be placed are reported in
// Result.Unscheduled.
func (e *Engine) Schedule(ctx context.Context, req *Request) (*Result, error) {
	if req.Job == nil {
		return nil, fmt.Errorf("scheduling request requires a job")
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	searchDays := req.SearchDays
	if searchDays <= 0 {
		searchDays = DefaultSearchDays
	}

	duration := time.Duration(models.InterviewDuration(req.InterviewType)) * time.Minute
	state := newPassState(req)

	result := &Result{Scheduled: make([]*models.Interview, 0, len(req.Candidates))}

	for _, candidate := range req.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scheduling pass cancelled: %w", err)
		}

		interview, reason, err := e.placeCandidate(ctx, req, state, candidate, now, searchDays, duration)
		if err != nil {
			return nil, err
		}

		if interview == nil {
			e.logger.Warn("Candidate could not be scheduled",
				"candidate_id", candidate.ID, "job_id", req.Job.ID, "reason", reason)

			result.Unscheduled = append(result.Unscheduled, Unscheduled{CandidateID: candidate.ID, Reason: reason})

			continue
		}

		e.logger.Info("Interview scheduled",
			"candidate_id", candidate.ID,
			"interviewer_id", interview.InterviewerID,
			"scheduled_time", interview.ScheduledTime)

		result.Scheduled = append(result.Scheduled, interview)
	}

	if len(req.Candidates) > 0 {
		result.SuccessRate = float64(len(result.Scheduled)) / float64(len(req.Candidates)) * 100
	}

	return result, nil
}

// placeCandidate picks the single best interviewer for the candidate and
// searches only that interviewer's calendar. A lower-ranked interviewer is
// never substituted when the chosen one has no matching slot.
func (e *Engine) placeCandidate(
	ctx context.Context,
	req *Request,
	state *passState,
	candidate *models.Candidate,
	now time.Time,
	searchDays int,
	duration time.Duration,
) (*models.Interview, string, error) {
	interviewer := e.bestInterviewer(req, state, now)
	if interviewer == nil {
		return nil, "no available interviewer", nil
	}

	bucket := models.ClassifyAvailability(candidate.TimeAvailability)

	for _, day := range businessDays(now, searchDays) {
		for _, start := range slotStarts(day, bucket) {
			end := start.Add(duration)

			if state.overlaps(interviewer.ID, start, end) {
				continue
			}

			claimed, err := e.reserver.Reserve(ctx, interviewer.ID, start)
			if err != nil {
				return nil, "", fmt.Errorf("slot reservation failed: %w", err)
			}

			if !claimed {
				continue
			}

			state.commit(interviewer.ID, start, end)

			return &models.Interview{
				ID:              uuid.New().String(),
				CandidateID:     candidate.ID,
				InterviewerID:   interviewer.ID,
				JobID:           req.Job.ID,
				InterviewType:   req.InterviewType,
				RoundNumber:     1,
				ScheduledTime:   start,
				DurationMinutes: int(duration / time.Minute),
				Status:          models.InterviewStatusScheduled,
				MaxReschedules:  models.DefaultMaxReschedules,
			}, "", nil
		}
	}

	return nil, "no matching time slot", nil
}

// bestInterviewer filters the panel to interviewers with a technology
// overlap whose load on the pass's reference date is under the daily cap,
// then picks the highest match score; ties go to the lighter total load,
// then the smaller ID for a stable choice.
func (e *Engine) bestInterviewer(req *Request, state *passState, now time.Time) *models.Interviewer {
	var (
		best      *models.Interviewer
		bestMatch int
		bestLoad  int
	)

	for _, interviewer := range req.Interviewers {
		match := interviewer.MatchScore(req.Job.RequiredTechnologies)
		if match == 0 {
			continue
		}

		if state.dayCount(interviewer.ID, now) >= maxPerDay(interviewer) {
			continue
		}

		load := state.load(interviewer.ID)

		switch {
		case best == nil,
			match > bestMatch,
			match == bestMatch && load < bestLoad,
			match == bestMatch && load == bestLoad && interviewer.ID < best.ID:
			best = interviewer
			bestMatch = match
			bestLoad = load
		}
	}

	return best
}

func maxPerDay(interviewer *models.Interviewer) int {
	if interviewer.MaxInterviewsPerDay > 0 {
		return interviewer.MaxInterviewsPerDay
	}

	return 3
}
