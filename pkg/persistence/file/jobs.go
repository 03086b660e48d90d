package file

import (
	"context"
	"sort"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

const (
	kindJobs         = "jobs"
	kindInterviewers = "interviewers"
)

// JobRepository handles job and interviewer file operations.
type JobRepository struct {
	root string
}

// NewJobRepository creates a new job repository.
func NewJobRepository(root string) *JobRepository {
	return &JobRepository{root: root}
}

func (jr *JobRepository) Create(_ context.Context, job *models.Job) error {
	var existing models.Job

	found, err := readDocument(jr.root, kindJobs, job.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Create", "job", job.ID, err)
	}

	if found {
		return persistence.NewEntityError("Create", "job", job.ID, persistence.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	return writeDocument(jr.root, kindJobs, job.ID, job)
}

func (jr *JobRepository) GetByID(_ context.Context, id string) (*models.Job, error) {
	var job models.Job

	found, err := readDocument(jr.root, kindJobs, id, &job)
	if err != nil {
		return nil, persistence.NewEntityError("GetByID", "job", id, err)
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "job", id, persistence.ErrJobNotFound)
	}

	return &job, nil
}

func (jr *JobRepository) List(ctx context.Context) ([]*models.Job, error) {
	ids, err := listIDs(jr.root, kindJobs)
	if err != nil {
		return nil, persistence.NewEntityError("List", "job", "", err)
	}

	jobs := make([]*models.Job, 0, len(ids))

	for _, id := range ids {
		job, err := jr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	return jobs, nil
}

func (jr *JobRepository) Update(_ context.Context, job *models.Job) error {
	var existing models.Job

	found, err := readDocument(jr.root, kindJobs, job.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Update", "job", job.ID, err)
	}

	if !found {
		return persistence.NewEntityError("Update", "job", job.ID, persistence.ErrJobNotFound)
	}

	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = time.Now().UTC()

	return writeDocument(jr.root, kindJobs, job.ID, job)
}

func (jr *JobRepository) Interviewers(_ context.Context, jobID string) ([]*models.Interviewer, error) {
	ids, err := listIDs(jr.root, kindInterviewers)
	if err != nil {
		return nil, persistence.NewEntityError("Interviewers", "job", jobID, err)
	}

	interviewers := make([]*models.Interviewer, 0, len(ids))

	for _, id := range ids {
		var interviewer models.Interviewer

		found, err := readDocument(jr.root, kindInterviewers, id, &interviewer)
		if err != nil {
			return nil, persistence.NewEntityError("Interviewers", "interviewer", id, err)
		}

		if found && interviewer.JobID == jobID {
			interviewers = append(interviewers, &interviewer)
		}
	}

	sort.Slice(interviewers, func(i, j int) bool {
		return interviewers[i].ID < interviewers[j].ID
	})

	return interviewers, nil
}

func (jr *JobRepository) SaveInterviewer(_ context.Context, interviewer *models.Interviewer) error {
	return writeDocument(jr.root, kindInterviewers, interviewer.ID, interviewer)
}
