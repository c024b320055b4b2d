package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// JobStore implements secondary.JobStore with SQLite. The jobs table doubles
// as a transactional outbox: EnqueueJob called inside a pipeline transaction
// makes the job visible to workers only once that transaction commits.
type JobStore struct {
	db DBTX
}

// NewJobStore creates a new SQLite job store.
func NewJobStore(db DBTX) *JobStore {
	return &JobStore{db: db}
}

// EnqueueJob persists a new queued job.
func (s *JobStore) EnqueueJob(ctx context.Context, job *secondary.JobRecord) error {
	if job.ID == "" {
		return fmt.Errorf("job ID must be pre-populated by service layer")
	}
	if job.Kind == "" {
		return fmt.Errorf("job Kind must be pre-populated by service layer")
	}

	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = pipeline.DefaultMaxAttempts
	}

	force := 0
	if job.Force {
		force = 1
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO jobs (id, session_id, kind, status, force_regenerate, max_attempts) VALUES (?, ?, ?, ?, ?, ?)",
		job.ID, job.SessionID, job.Kind, secondary.JobStatusQueued, force, maxAttempts,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// ClaimNextJob atomically claims the oldest due queued job. The single
// UPDATE makes claiming safe across concurrent workers: each row transitions
// queued -> running exactly once.
func (s *JobStore) ClaimNextJob(ctx context.Context) (*secondary.JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE jobs
		SET status = ?, attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = ? AND run_at <= CURRENT_TIMESTAMP
			ORDER BY run_at, created_at
			LIMIT 1
		)
		RETURNING id, session_id, kind, status, force_regenerate, attempts, max_attempts, run_at, last_error, created_at, updated_at`,
		secondary.JobStatusRunning, secondary.JobStatusQueued,
	)

	record, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return record, nil
}

// CompleteJob marks a running job completed.
func (s *JobStore) CompleteJob(ctx context.Context, id string) error {
	return s.setTerminal(ctx, id, secondary.JobStatusCompleted, "")
}

// FailJob marks a running job failed terminally.
func (s *JobStore) FailJob(ctx context.Context, id string, lastError string) error {
	return s.setTerminal(ctx, id, secondary.JobStatusFailed, lastError)
}

func (s *JobStore) setTerminal(ctx context.Context, id, status, lastError string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, pipeline.TruncateErrorMessage(lastError), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "job", ID: id}
	}
	return nil
}

// RescheduleJob returns a running job to the queue to run after delay.
func (s *JobStore) RescheduleJob(ctx context.Context, id string, delay time.Duration, lastError string) error {
	modifier := fmt.Sprintf("+%d seconds", int(delay.Seconds()))
	res, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, run_at = datetime('now', ?), last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		secondary.JobStatusQueued, modifier, pipeline.TruncateErrorMessage(lastError), id,
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "job", ID: id}
	}
	return nil
}

func scanJob(row rowScanner) (*secondary.JobRecord, error) {
	var (
		force     int
		runAt     time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.JobRecord{}
	err := row.Scan(&record.ID, &record.SessionID, &record.Kind, &record.Status,
		&force, &record.Attempts, &record.MaxAttempts, &runAt,
		&record.LastError, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Force = force != 0
	record.RunAt = runAt.Format(time.RFC3339)
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}
