package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

// JobRepository handles job and interviewer database operations.
type JobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *sql.DB, logger *slog.Logger) *JobRepository {
	return &JobRepository{db: db, logger: logger}
}

const jobColumns = `
	id
  , title
  , description
  , department
  , location
  , required_technologies
  , experience_required
  , status
  , positions_available
  , created_at
  , updated_at
`

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	techJSON, err := json.Marshal(job.RequiredTechnologies)
	if err != nil {
		return fmt.Errorf("failed to marshal required technologies: %w", err)
	}

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Description, job.Department, job.Location,
		techJSON, job.ExperienceRequired, job.Status, job.PositionsAvailable,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.NewEntityError("Create", "job", job.ID, persistence.ErrAlreadyExists)
		}

		return persistence.NewEntityError("Create", "job", job.ID, err)
	}

	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "job", id, persistence.ErrJobNotFound)
		}

		return nil, persistence.NewEntityError("GetByID", "job", id, err)
	}

	return job, nil
}

func (r *JobRepository) List(ctx context.Context) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, persistence.NewEntityError("List", "job", "", err)
	}
	defer closeRows(ctx, r.logger, rows)

	jobs := make([]*models.Job, 0)

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, persistence.NewEntityError("List", "job", "", err)
		}

		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewEntityError("List", "job", "", err)
	}

	return jobs, nil
}

func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()

	techJSON, err := json.Marshal(job.RequiredTechnologies)
	if err != nil {
		return fmt.Errorf("failed to marshal required technologies: %w", err)
	}

	query := `
		UPDATE jobs SET
			title = $2
		  , description = $3
		  , department = $4
		  , location = $5
		  , required_technologies = $6
		  , experience_required = $7
		  , status = $8
		  , positions_available = $9
		  , updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Description, job.Department, job.Location,
		techJSON, job.ExperienceRequired, job.Status, job.PositionsAvailable,
		job.UpdatedAt,
	)
	if err != nil {
		return persistence.NewEntityError("Update", "job", job.ID, err)
	}

	return requireRowAffected(result, "Update", "job", job.ID, persistence.ErrJobNotFound)
}

func (r *JobRepository) Interviewers(ctx context.Context, jobID string) ([]*models.Interviewer, error) {
	query := `
		SELECT
			id
		  , job_id
		  , name
		  , email
		  , role
		  , technologies
		  , max_interviews_per_day
		  , timezone
		FROM interviewers
		WHERE job_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, persistence.NewEntityError("Interviewers", "job", jobID, err)
	}
	defer closeRows(ctx, r.logger, rows)

	interviewers := make([]*models.Interviewer, 0)

	for rows.Next() {
		var (
			interviewer models.Interviewer
			techJSON    []byte
			role        sql.NullString
			timezone    sql.NullString
		)

		err := rows.Scan(
			&interviewer.ID, &interviewer.JobID, &interviewer.Name, &interviewer.Email,
			&role, &techJSON, &interviewer.MaxInterviewsPerDay, &timezone,
		)
		if err != nil {
			return nil, persistence.NewEntityError("Interviewers", "job", jobID, err)
		}

		interviewer.Role = role.String
		interviewer.Timezone = timezone.String

		if err := json.Unmarshal(techJSON, &interviewer.Technologies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interviewer technologies: %w", err)
		}

		interviewers = append(interviewers, &interviewer)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewEntityError("Interviewers", "job", jobID, err)
	}

	return interviewers, nil
}

func (r *JobRepository) SaveInterviewer(ctx context.Context, interviewer *models.Interviewer) error {
	techJSON, err := json.Marshal(interviewer.Technologies)
	if err != nil {
		return fmt.Errorf("failed to marshal interviewer technologies: %w", err)
	}

	query := `
		INSERT INTO interviewers (id, job_id, name, email, role, technologies, max_interviews_per_day, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			job_id = EXCLUDED.job_id
		  , name = EXCLUDED.name
		  , email = EXCLUDED.email
		  , role = EXCLUDED.role
		  , technologies = EXCLUDED.technologies
		  , max_interviews_per_day = EXCLUDED.max_interviews_per_day
		  , timezone = EXCLUDED.timezone
	`

	_, err = r.db.ExecContext(ctx, query,
		interviewer.ID, interviewer.JobID, interviewer.Name, interviewer.Email,
		interviewer.Role, techJSON, interviewer.MaxInterviewsPerDay, interviewer.Timezone,
	)
	if err != nil {
		return persistence.NewEntityError("SaveInterviewer", "interviewer", interviewer.ID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job        models.Job
		techJSON   []byte
		department sql.NullString
		location   sql.NullString
		experience sql.NullString
	)

	err := row.Scan(
		&job.ID, &job.Title, &job.Description, &department, &location,
		&techJSON, &experience, &job.Status, &job.PositionsAvailable,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Department = department.String
	job.Location = location.String
	job.ExperienceRequired = experience.String

	if err := json.Unmarshal(techJSON, &job.RequiredTechnologies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal required technologies: %w", err)
	}

	return &job, nil
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func requireRowAffected(result sql.Result, op, entity, id string, sentinel error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewEntityError(op, entity, id, err)
	}

	if affected == 0 {
		return persistence.NewEntityError(op, entity, id, sentinel)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
