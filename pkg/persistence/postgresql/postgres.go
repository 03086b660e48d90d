// Package postgresql provides PostgreSQL persistence for jobs, candidates,
// interviews and workflow runs.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	jobs       *JobRepository
	candidates *CandidateRepository
	interviews *InterviewRepository
	workflows  *WorkflowRepository
	checkpoint *CheckpointRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	databaseURL = strings.TrimPrefix(databaseURL, "postgresql://")
	if !strings.HasPrefix(databaseURL, "postgres://") {
		databaseURL = "postgres://" + databaseURL
	}

	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:         database,
		logger:     logger,
		jobs:       NewJobRepository(database, logger),
		candidates: NewCandidateRepository(database, logger),
		interviews: NewInterviewRepository(database, logger),
		workflows:  NewWorkflowRepository(database, logger),
		checkpoint: NewCheckpointRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Jobs() persistence.JobRepository {
	return p.jobs
}

func (p *Persistence) Candidates() persistence.CandidateRepository {
	return p.candidates
}

func (p *Persistence) Interviews() persistence.InterviewRepository {
	return p.interviews
}

func (p *Persistence) Workflows() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) Checkpoints() persistence.CheckpointRepository {
	return p.checkpoint
}
