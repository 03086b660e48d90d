package file

import (
	"context"
	"sort"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

const kindCandidates = "candidates"

// CandidateRepository handles candidate file operations.
type CandidateRepository struct {
	root string
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(root string) *CandidateRepository {
	return &CandidateRepository{root: root}
}

func (cr *CandidateRepository) Create(_ context.Context, candidate *models.Candidate) error {
	var existing models.Candidate

	found, err := readDocument(cr.root, kindCandidates, candidate.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Create", "candidate", candidate.ID, err)
	}

	if found {
		return persistence.NewEntityError("Create", "candidate", candidate.ID, persistence.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	return writeDocument(cr.root, kindCandidates, candidate.ID, candidate)
}

func (cr *CandidateRepository) GetByID(_ context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate

	found, err := readDocument(cr.root, kindCandidates, id, &candidate)
	if err != nil {
		return nil, persistence.NewEntityError("GetByID", "candidate", id, err)
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "candidate", id, persistence.ErrCandidateNotFound)
	}

	return &candidate, nil
}

func (cr *CandidateRepository) List(ctx context.Context, filter persistence.CandidateFilter) ([]*models.Candidate, error) {
	ids, err := listIDs(cr.root, kindCandidates)
	if err != nil {
		return nil, persistence.NewEntityError("List", "candidate", "", err)
	}

	candidates := make([]*models.Candidate, 0, len(ids))

	for _, id := range ids {
		candidate, err := cr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if filter.JobID != "" && candidate.JobID != filter.JobID {
			continue
		}

		if filter.Stage != "" && candidate.Stage != filter.Stage {
			continue
		}

		candidates = append(candidates, candidate)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	return candidates, nil
}

func (cr *CandidateRepository) Update(_ context.Context, candidate *models.Candidate) error {
	var existing models.Candidate

	found, err := readDocument(cr.root, kindCandidates, candidate.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Update", "candidate", candidate.ID, err)
	}

	if !found {
		return persistence.NewEntityError("Update", "candidate", candidate.ID, persistence.ErrCandidateNotFound)
	}

	candidate.CreatedAt = existing.CreatedAt
	candidate.UpdatedAt = time.Now().UTC()

	return writeDocument(cr.root, kindCandidates, candidate.ID, candidate)
}

func (cr *CandidateRepository) UpdateStage(ctx context.Context, id string, stage models.CandidateStage) error {
	candidate, err := cr.GetByID(ctx, id)
	if err != nil {
		return err
	}

	candidate.Stage = stage
	candidate.UpdatedAt = time.Now().UTC()

	return writeDocument(cr.root, kindCandidates, candidate.ID, candidate)
}
