package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

// WorkflowRepository handles workflow-run database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , job_id
  , name
  , status
  , stage
  , progress_percentage
  , pending_decisions
  , decision_history
  , started_at
  , last_activity_at
  , completed_at
  , created_at
  , updated_at
`

func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	pendingJSON, historyJSON, err := marshalWorkflowDecisions(workflow)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID, workflow.JobID, workflow.Name, workflow.Status, workflow.Stage,
		workflow.ProgressPercentage, pendingJSON, historyJSON, workflow.StartedAt,
		workflow.LastActivityAt, workflow.CompletedAt, workflow.CreatedAt, workflow.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.NewEntityError("Create", "workflow", workflow.ID, persistence.ErrAlreadyExists)
		}

		return persistence.NewEntityError("Create", "workflow", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewEntityError("GetByID", "workflow", id, err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) List(ctx context.Context, filter persistence.WorkflowFilter) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE 1=1`

	args := make([]any, 0, 2)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if filter.JobID != "" {
		args = append(args, filter.JobID)
		query += fmt.Sprintf(" AND job_id = $%d", len(args))
	}

	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewEntityError("List", "workflow", "", err)
	}
	defer closeRows(ctx, r.logger, rows)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, persistence.NewEntityError("List", "workflow", "", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewEntityError("List", "workflow", "", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	workflow.UpdatedAt = time.Now().UTC()

	pendingJSON, historyJSON, err := marshalWorkflowDecisions(workflow)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflows SET
			job_id = $2
		  , name = $3
		  , status = $4
		  , stage = $5
		  , progress_percentage = $6
		  , pending_decisions = $7
		  , decision_history = $8
		  , started_at = $9
		  , last_activity_at = $10
		  , completed_at = $11
		  , updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		workflow.ID, workflow.JobID, workflow.Name, workflow.Status, workflow.Stage,
		workflow.ProgressPercentage, pendingJSON, historyJSON, workflow.StartedAt,
		workflow.LastActivityAt, workflow.CompletedAt, workflow.UpdatedAt,
	)
	if err != nil {
		return persistence.NewEntityError("Update", "workflow", workflow.ID, err)
	}

	return requireRowAffected(result, "Update", "workflow", workflow.ID, persistence.ErrWorkflowNotFound)
}

func marshalWorkflowDecisions(workflow *models.Workflow) ([]byte, []byte, error) {
	pending := workflow.PendingDecisions
	if pending == nil {
		pending = make([]models.PendingDecision, 0)
	}

	history := workflow.DecisionHistory
	if history == nil {
		history = make([]models.DecisionRecord, 0)
	}

	pendingJSON, err := json.Marshal(pending)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal pending decisions: %w", err)
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal decision history: %w", err)
	}

	return pendingJSON, historyJSON, nil
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		pendingJSON []byte
		historyJSON []byte
		completedAt sql.NullTime
	)

	err := row.Scan(
		&workflow.ID, &workflow.JobID, &workflow.Name, &workflow.Status,
		&workflow.Stage, &workflow.ProgressPercentage, &pendingJSON, &historyJSON,
		&workflow.StartedAt, &workflow.LastActivityAt, &completedAt,
		&workflow.CreatedAt, &workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time.UTC()
		workflow.CompletedAt = &t
	}

	if err := json.Unmarshal(pendingJSON, &workflow.PendingDecisions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending decisions: %w", err)
	}

	if err := json.Unmarshal(historyJSON, &workflow.DecisionHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision history: %w", err)
	}

	return &workflow, nil
}

// CheckpointRepository stores serialized orchestrator state keyed by
// workflow ID.
type CheckpointRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCheckpointRepository creates a new checkpoint repository.
func NewCheckpointRepository(db *sql.DB, logger *slog.Logger) *CheckpointRepository {
	return &CheckpointRepository{db: db, logger: logger}
}

func (r *CheckpointRepository) Save(ctx context.Context, workflowID string, state []byte) error {
	if !json.Valid(state) {
		return persistence.NewEntityError("Save", "checkpoint", workflowID,
			errors.New("checkpoint state is not valid JSON"))
	}

	query := `
		INSERT INTO workflow_checkpoints (workflow_id, state, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (workflow_id) DO UPDATE SET
			state = EXCLUDED.state
		  , saved_at = EXCLUDED.saved_at
	`

	_, err := r.db.ExecContext(ctx, query, workflowID, state, time.Now().UTC())
	if err != nil {
		return persistence.NewEntityError("Save", "checkpoint", workflowID, err)
	}

	return nil
}

func (r *CheckpointRepository) Load(ctx context.Context, workflowID string) ([]byte, error) {
	var state []byte

	err := r.db.QueryRowContext(ctx,
		"SELECT state FROM workflow_checkpoints WHERE workflow_id = $1", workflowID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("Load", "checkpoint", workflowID, persistence.ErrCheckpointNotFound)
		}

		return nil, persistence.NewEntityError("Load", "checkpoint", workflowID, err)
	}

	return state, nil
}

func (r *CheckpointRepository) Delete(ctx context.Context, workflowID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM workflow_checkpoints WHERE workflow_id = $1", workflowID)
	if err != nil {
		return persistence.NewEntityError("Delete", "checkpoint", workflowID, err)
	}

	return nil
}
