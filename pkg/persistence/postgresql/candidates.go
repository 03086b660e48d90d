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

// CandidateRepository handles candidate database operations.
type CandidateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *sql.DB, logger *slog.Logger) *CandidateRepository {
	return &CandidateRepository{db: db, logger: logger}
}

const candidateColumns = `
	id
  , name
  , email
  , phone
  , experience_years
  , technologies
  , resume_text
  , time_availability
  , stage
  , job_id
  , workflow_id
  , overall_score
  , match_percentage
  , created_at
  , updated_at
`

func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	now := time.Now().UTC()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	techJSON, err := json.Marshal(candidate.Technologies)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate technologies: %w", err)
	}

	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		candidate.ID, candidate.Name, candidate.Email, candidate.Phone,
		candidate.ExperienceYears, techJSON, candidate.ResumeText,
		candidate.TimeAvailability, candidate.Stage, candidate.JobID,
		candidate.WorkflowID, candidate.OverallScore, candidate.MatchPercentage,
		candidate.CreatedAt, candidate.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.NewEntityError("Create", "candidate", candidate.ID, persistence.ErrAlreadyExists)
		}

		return persistence.NewEntityError("Create", "candidate", candidate.ID, err)
	}

	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`

	candidate, err := scanCandidate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "candidate", id, persistence.ErrCandidateNotFound)
		}

		return nil, persistence.NewEntityError("GetByID", "candidate", id, err)
	}

	return candidate, nil
}

func (r *CandidateRepository) List(ctx context.Context, filter persistence.CandidateFilter) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`

	args := make([]any, 0, 2)

	if filter.JobID != "" {
		args = append(args, filter.JobID)
		query += fmt.Sprintf(" AND job_id = $%d", len(args))
	}

	if filter.Stage != "" {
		args = append(args, filter.Stage)
		query += fmt.Sprintf(" AND stage = $%d", len(args))
	}

	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewEntityError("List", "candidate", "", err)
	}
	defer closeRows(ctx, r.logger, rows)

	candidates := make([]*models.Candidate, 0)

	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, persistence.NewEntityError("List", "candidate", "", err)
		}

		candidates = append(candidates, candidate)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewEntityError("List", "candidate", "", err)
	}

	return candidates, nil
}

func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()

	techJSON, err := json.Marshal(candidate.Technologies)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate technologies: %w", err)
	}

	query := `
		UPDATE candidates SET
			name = $2
		  , email = $3
		  , phone = $4
		  , experience_years = $5
		  , technologies = $6
		  , resume_text = $7
		  , time_availability = $8
		  , stage = $9
		  , job_id = $10
		  , workflow_id = $11
		  , overall_score = $12
		  , match_percentage = $13
		  , updated_at = $14
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		candidate.ID, candidate.Name, candidate.Email, candidate.Phone,
		candidate.ExperienceYears, techJSON, candidate.ResumeText,
		candidate.TimeAvailability, candidate.Stage, candidate.JobID,
		candidate.WorkflowID, candidate.OverallScore, candidate.MatchPercentage,
		candidate.UpdatedAt,
	)
	if err != nil {
		return persistence.NewEntityError("Update", "candidate", candidate.ID, err)
	}

	return requireRowAffected(result, "Update", "candidate", candidate.ID, persistence.ErrCandidateNotFound)
}

func (r *CandidateRepository) UpdateStage(ctx context.Context, id string, stage models.CandidateStage) error {
	query := `UPDATE candidates SET stage = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, stage, time.Now().UTC())
	if err != nil {
		return persistence.NewEntityError("UpdateStage", "candidate", id, err)
	}

	return requireRowAffected(result, "UpdateStage", "candidate", id, persistence.ErrCandidateNotFound)
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var (
		candidate    models.Candidate
		techJSON     []byte
		phone        sql.NullString
		resumeText   sql.NullString
		availability sql.NullString
		workflowID   sql.NullString
		overallScore sql.NullFloat64
		matchPercent sql.NullInt64
	)

	err := row.Scan(
		&candidate.ID, &candidate.Name, &candidate.Email, &phone,
		&candidate.ExperienceYears, &techJSON, &resumeText, &availability,
		&candidate.Stage, &candidate.JobID, &workflowID, &overallScore,
		&matchPercent, &candidate.CreatedAt, &candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	candidate.Phone = phone.String
	candidate.ResumeText = resumeText.String
	candidate.TimeAvailability = availability.String
	candidate.WorkflowID = workflowID.String
	candidate.OverallScore = overallScore.Float64
	candidate.MatchPercentage = int(matchPercent.Int64)

	if err := json.Unmarshal(techJSON, &candidate.Technologies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate technologies: %w", err)
	}

	return &candidate, nil
}
