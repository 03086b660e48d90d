// Package persistence provides the data storage abstraction for jobs,
// candidates, interviews and workflow runs.
package persistence

import (
	"context"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// Persistence bundles the repositories behind one connection-owning
// implementation.
type Persistence interface {
	Jobs() JobRepository
	Candidates() CandidateRepository
	Interviews() InterviewRepository
	Workflows() WorkflowRepository
	Checkpoints() CheckpointRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// JobRepository stores job openings and their interview panels.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context) ([]*models.Job, error)
	Update(ctx context.Context, job *models.Job) error

	Interviewers(ctx context.Context, jobID string) ([]*models.Interviewer, error)
	SaveInterviewer(ctx context.Context, interviewer *models.Interviewer) error
}

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	JobID string
	Stage models.CandidateStage
}

// CandidateRepository stores applicants.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	List(ctx context.Context, filter CandidateFilter) ([]*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	UpdateStage(ctx context.Context, id string, stage models.CandidateStage) error
}

// InterviewRepository stores interview records. CreateScheduled is the
// authoritative conflict check: implementations must re-validate that the
// interval is still free for the interviewer and serialize creation per
// interviewer, returning ErrSlotTaken on a lost race.
type InterviewRepository interface {
	CreateScheduled(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error)
	InterviewerSchedule(ctx context.Context, interviewerID string, from, to time.Time) ([]*models.Interview, error)
	Update(ctx context.Context, interview *models.Interview) error
}

// WorkflowFilter narrows workflow-run listings.
type WorkflowFilter struct {
	Status models.WorkflowStatus
	JobID  string
}

// WorkflowRepository stores workflow run records.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context, filter WorkflowFilter) ([]*models.Workflow, error)
	Update(ctx context.Context, workflow *models.Workflow) error
}

// CheckpointRepository persists serialized orchestrator state at the
// human-decision gate, keyed by workflow ID. Save overwrites; Delete after
// a completed resumption is advisory cleanup.
type CheckpointRepository interface {
	Save(ctx context.Context, workflowID string, state []byte) error
	Load(ctx context.Context, workflowID string) ([]byte, error)
	Delete(ctx context.Context, workflowID string) error
}
