package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

// InterviewRepository handles interview database operations.
type InterviewRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInterviewRepository creates a new interview repository.
func NewInterviewRepository(db *sql.DB, logger *slog.Logger) *InterviewRepository {
	return &InterviewRepository{db: db, logger: logger}
}

const interviewColumns = `
	id
  , candidate_id
  , interviewer_id
  , job_id
  , interview_type
  , round_number
  , scheduled_time
  , duration_minutes
  , meeting_link
  , meeting_id
  , status
  , reschedule_count
  , max_reschedules
  , created_at
  , updated_at
`

// CreateScheduled inserts an interview after re-validating the interval
// inside a transaction holding a per-interviewer advisory lock. Concurrent
// writers for the same interviewer serialize on the lock; the loser of a
// race for an overlapping interval gets ErrSlotTaken.
func (r *InterviewRepository) CreateScheduled(ctx context.Context, interview *models.Interview) error {
	now := time.Now().UTC()
	interview.CreatedAt = now
	interview.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence.NewEntityError("CreateScheduled", "interview", interview.ID, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", interviewerLockKey(interview.InterviewerID))
	if err != nil {
		return persistence.NewEntityError("CreateScheduled", "interview", interview.ID, err)
	}

	overlapQuery := `
		SELECT COUNT(*)
		FROM interviews
		WHERE interviewer_id = $1
		  AND status <> 'cancelled'
		  AND scheduled_time < $3
		  AND scheduled_time + (duration_minutes || ' minutes')::interval > $2
	`

	var conflicts int

	err = tx.QueryRowContext(ctx, overlapQuery,
		interview.InterviewerID, interview.ScheduledTime, interview.End(),
	).Scan(&conflicts)
	if err != nil {
		return persistence.NewEntityError("CreateScheduled", "interview", interview.ID, err)
	}

	if conflicts > 0 {
		err = persistence.NewEntityError("CreateScheduled", "interview", interview.ID, persistence.ErrSlotTaken)

		return err
	}

	insertQuery := `
		INSERT INTO interviews (` + interviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = tx.ExecContext(ctx, insertQuery,
		interview.ID, interview.CandidateID, interview.InterviewerID, interview.JobID,
		interview.InterviewType, interview.RoundNumber, interview.ScheduledTime,
		interview.DurationMinutes, interview.MeetingLink, interview.MeetingID,
		interview.Status, interview.RescheduleCount, interview.MaxReschedules,
		interview.CreatedAt, interview.UpdatedAt,
	)
	if err != nil {
		return persistence.NewEntityError("CreateScheduled", "interview", interview.ID, err)
	}

	err = tx.Commit()
	if err != nil {
		return persistence.NewEntityError("CreateScheduled", "interview", interview.ID, err)
	}

	return nil
}

func (r *InterviewRepository) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	interview, err := scanInterview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "interview", id, persistence.ErrInterviewNotFound)
		}

		return nil, persistence.NewEntityError("GetByID", "interview", id, err)
	}

	return interview, nil
}

func (r *InterviewRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE candidate_id = $1 ORDER BY scheduled_time`

	return r.queryInterviews(ctx, query, candidateID)
}

// InterviewerSchedule returns the interviewer's interviews whose interval
// intersects [from, to). Zero bounds disable the corresponding cut.
func (r *InterviewRepository) InterviewerSchedule(ctx context.Context, interviewerID string, from, to time.Time) ([]*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE interviewer_id = $1`

	args := []any{interviewerID}

	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND scheduled_time + (duration_minutes || ' minutes')::interval > $%d", len(args))
	}

	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND scheduled_time < $%d", len(args))
	}

	query += " ORDER BY scheduled_time"

	return r.queryInterviews(ctx, query, args...)
}

func (r *InterviewRepository) Update(ctx context.Context, interview *models.Interview) error {
	interview.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE interviews SET
			interview_type = $2
		  , round_number = $3
		  , scheduled_time = $4
		  , duration_minutes = $5
		  , meeting_link = $6
		  , meeting_id = $7
		  , status = $8
		  , reschedule_count = $9
		  , max_reschedules = $10
		  , updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		interview.ID, interview.InterviewType, interview.RoundNumber,
		interview.ScheduledTime, interview.DurationMinutes, interview.MeetingLink,
		interview.MeetingID, interview.Status, interview.RescheduleCount,
		interview.MaxReschedules, interview.UpdatedAt,
	)
	if err != nil {
		return persistence.NewEntityError("Update", "interview", interview.ID, err)
	}

	return requireRowAffected(result, "Update", "interview", interview.ID, persistence.ErrInterviewNotFound)
}

func (r *InterviewRepository) queryInterviews(ctx context.Context, query string, args ...any) ([]*models.Interview, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewEntityError("List", "interview", "", err)
	}
	defer closeRows(ctx, r.logger, rows)

	interviews := make([]*models.Interview, 0)

	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, persistence.NewEntityError("List", "interview", "", err)
		}

		interviews = append(interviews, interview)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewEntityError("List", "interview", "", err)
	}

	return interviews, nil
}

func scanInterview(row rowScanner) (*models.Interview, error) {
	var (
		interview     models.Interview
		interviewType sql.NullString
		meetingLink   sql.NullString
		meetingID     sql.NullString
	)

	err := row.Scan(
		&interview.ID, &interview.CandidateID, &interview.InterviewerID,
		&interview.JobID, &interviewType, &interview.RoundNumber,
		&interview.ScheduledTime, &interview.DurationMinutes, &meetingLink,
		&meetingID, &interview.Status, &interview.RescheduleCount,
		&interview.MaxReschedules, &interview.CreatedAt, &interview.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	interview.InterviewType = interviewType.String
	interview.MeetingLink = meetingLink.String
	interview.MeetingID = meetingID.String
	interview.ScheduledTime = interview.ScheduledTime.UTC()

	return &interview, nil
}

// interviewerLockKey folds the interviewer ID into the int64 keyspace of
// pg_advisory_xact_lock.
func interviewerLockKey(interviewerID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(interviewerID))

	return int64(h.Sum64())
}
