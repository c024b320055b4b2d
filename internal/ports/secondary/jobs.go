package secondary

import (
	"context"
	"time"
)

// Job kinds understood by the worker pool.
const (
	JobKindTranscribe     = "transcribe_session"
	JobKindGenerateReport = "generate_report"
)

// Job statuses.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// JobRecord represents one unit of asynchronous pipeline work. Jobs live in
// the same database as the entities they reference so that enqueueing inside
// a transaction is atomic with the data write.
type JobRecord struct {
	ID          string
	SessionID   string
	Kind        string
	Status      string
	Force       bool // report jobs only: regenerate even if completed
	Attempts    int
	MaxAttempts int
	RunAt       string
	LastError   string
	CreatedAt   string
	UpdatedAt   string
}

// JobEnqueuer is the enqueue-side port, available inside pipeline
// transactions.
type JobEnqueuer interface {
	// EnqueueJob persists a new queued job. ID, Kind, and MaxAttempts must be
	// pre-populated by the service layer.
	EnqueueJob(ctx context.Context, job *JobRecord) error
}

// JobStore is the worker-side port for consuming the durable queue with
// at-least-once delivery.
type JobStore interface {
	JobEnqueuer

	// ClaimNextJob atomically claims the oldest due queued job, marking it
	// running and incrementing its attempt counter. Returns (nil, nil) when
	// no job is due.
	ClaimNextJob(ctx context.Context) (*JobRecord, error)

	// CompleteJob marks a running job completed.
	CompleteJob(ctx context.Context, id string) error

	// RescheduleJob returns a running job to the queue to run after delay.
	RescheduleJob(ctx context.Context, id string, delay time.Duration, lastError string) error

	// FailJob marks a running job failed terminally.
	FailJob(ctx context.Context, id string, lastError string) error
}
