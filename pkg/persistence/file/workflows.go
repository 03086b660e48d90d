package file

import (
	"context"
	"sort"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

const (
	kindWorkflows   = "workflows"
	kindCheckpoints = "checkpoints"
)

// WorkflowRepository handles workflow-run file operations.
type WorkflowRepository struct {
	root string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) Create(_ context.Context, workflow *models.Workflow) error {
	var existing models.Workflow

	found, err := readDocument(wr.root, kindWorkflows, workflow.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Create", "workflow", workflow.ID, err)
	}

	if found {
		return persistence.NewEntityError("Create", "workflow", workflow.ID, persistence.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	return writeDocument(wr.root, kindWorkflows, workflow.ID, workflow)
}

func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := readDocument(wr.root, kindWorkflows, id, &workflow)
	if err != nil {
		return nil, persistence.NewEntityError("GetByID", "workflow", id, err)
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) List(ctx context.Context, filter persistence.WorkflowFilter) ([]*models.Workflow, error) {
	ids, err := listIDs(wr.root, kindWorkflows)
	if err != nil {
		return nil, persistence.NewEntityError("List", "workflow", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if filter.Status != "" && workflow.Status != filter.Status {
			continue
		}

		if filter.JobID != "" && workflow.JobID != filter.JobID {
			continue
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (wr *WorkflowRepository) Update(_ context.Context, workflow *models.Workflow) error {
	var existing models.Workflow

	found, err := readDocument(wr.root, kindWorkflows, workflow.ID, &existing)
	if err != nil {
		return persistence.NewEntityError("Update", "workflow", workflow.ID, err)
	}

	if !found {
		return persistence.NewEntityError("Update", "workflow", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	return writeDocument(wr.root, kindWorkflows, workflow.ID, workflow)
}

// CheckpointRepository stores serialized orchestrator state as raw JSON
// documents keyed by workflow ID.
type CheckpointRepository struct {
	root string
}

// NewCheckpointRepository creates a new checkpoint repository.
func NewCheckpointRepository(root string) *CheckpointRepository {
	return &CheckpointRepository{root: root}
}

func (cr *CheckpointRepository) Save(_ context.Context, workflowID string, state []byte) error {
	var doc checkpointDocument

	if err := doc.fill(workflowID, state); err != nil {
		return persistence.NewEntityError("Save", "checkpoint", workflowID, err)
	}

	return writeDocument(cr.root, kindCheckpoints, workflowID, &doc)
}

func (cr *CheckpointRepository) Load(_ context.Context, workflowID string) ([]byte, error) {
	var doc checkpointDocument

	found, err := readDocument(cr.root, kindCheckpoints, workflowID, &doc)
	if err != nil {
		return nil, persistence.NewEntityError("Load", "checkpoint", workflowID, err)
	}

	if !found {
		return nil, persistence.NewEntityError("Load", "checkpoint", workflowID, persistence.ErrCheckpointNotFound)
	}

	return doc.State, nil
}

func (cr *CheckpointRepository) Delete(_ context.Context, workflowID string) error {
	return removeDocument(cr.root, kindCheckpoints, workflowID)
}
