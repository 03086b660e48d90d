package file

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

const kindInterviews = "interviews"

// InterviewRepository handles interview file operations. Creation is
// serialized with a process-wide mutex so the overlap re-check and the
// write behave as one atomic step.
type InterviewRepository struct {
	root string
	mu   sync.Mutex
}

// NewInterviewRepository creates a new interview repository.
func NewInterviewRepository(root string) *InterviewRepository {
	return &InterviewRepository{root: root}
}

func (ir *InterviewRepository) CreateScheduled(ctx context.Context, interview *models.Interview) error {
	ir.mu.Lock()
	defer ir.mu.Unlock()

	taken, err := ir.intervalTaken(ctx, interview)
	if err != nil {
		return err
	}

	if taken {
		return persistence.NewEntityError("CreateScheduled", "interview", interview.ID, persistence.ErrSlotTaken)
	}

	now := time.Now().UTC()
	interview.CreatedAt = now
	interview.UpdatedAt = now

	return writeDocument(ir.root, kindInterviews, interview.ID, interview)
}

// intervalTaken re-validates the slot against every stored interview for
// the same interviewer. Cancelled records do not block the interval.
func (ir *InterviewRepository) intervalTaken(ctx context.Context, interview *models.Interview) (bool, error) {
	existing, err := ir.InterviewerSchedule(ctx, interview.InterviewerID, time.Time{}, time.Time{})
	if err != nil {
		return false, err
	}

	start, end := interview.ScheduledTime, interview.End()

	for _, other := range existing {
		if other.Status == models.InterviewStatusCancelled {
			continue
		}

		busy := models.BusyInterval{Start: other.ScheduledTime, End: other.End()}
		if busy.Overlaps(start, end) {
			return true, nil
		}
	}

	return false, nil
}

func (ir *InterviewRepository) GetByID(_ context.Context, id string) (*models.Interview, error) {
	var interview models.Interview

	found, err := readDocument(ir.root, kindInterviews, id, &interview)
	if err != nil {
		return nil, persistence.NewEntityError("GetByID", "interview", id, err)
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "interview", id, persistence.ErrInterviewNotFound)
	}

	return &interview, nil
}

func (ir *InterviewRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	return ir.list(ctx, func(i *models.Interview) bool {
		return i.CandidateID == candidateID
	})
}

// InterviewerSchedule returns the interviewer's interviews whose interval
// intersects [from, to). Zero bounds disable the corresponding cut.
func (ir *InterviewRepository) InterviewerSchedule(ctx context.Context, interviewerID string, from, to time.Time) ([]*models.Interview, error) {
	return ir.list(ctx, func(i *models.Interview) bool {
		if i.InterviewerID != interviewerID {
			return false
		}

		if !from.IsZero() && !i.End().After(from) {
			return false
		}

		if !to.IsZero() && !i.ScheduledTime.Before(to) {
			return false
		}

		return true
	})
}

func (ir *InterviewRepository) Update(_ context.Context, interview *models.Interview) error {
	var existing models.Interview

	found, err := readDocument(ir.root, kindInterviews, interview.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Update", "interview", interview.ID, err)
	}

	if !found {
		return persistence.NewEntityError("Update", "interview", interview.ID, persistence.ErrInterviewNotFound)
	}

	interview.CreatedAt = existing.CreatedAt
	interview.UpdatedAt = time.Now().UTC()

	return writeDocument(ir.root, kindInterviews, interview.ID, interview)
}

func (ir *InterviewRepository) list(ctx context.Context, keep func(*models.Interview) bool) ([]*models.Interview, error) {
	ids, err := listIDs(ir.root, kindInterviews)
	if err != nil {
		return nil, persistence.NewEntityError("List", "interview", "", err)
	}

	interviews := make([]*models.Interview, 0, len(ids))

	for _, id := range ids {
		interview, err := ir.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if keep(interview) {
			interviews = append(interviews, interview)
		}
	}

	sort.Slice(interviews, func(i, j int) bool {
		return interviews[i].ScheduledTime.Before(interviews[j].ScheduledTime)
	})

	return interviews, nil
}
