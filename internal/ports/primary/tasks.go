package primary

import "context"

// PipelineTaskService defines the primary port for one execution attempt of
// each asynchronous pipeline stage. The worker pool drives it; the `pipeline
// run` command drives it directly for debugging.
//
// An attempt returns (result, nil) when the stage finished or was skipped by
// an idempotency guard, and (nil, err) when it failed. The caller classifies
// the error: retryable failures go back to the queue until the attempt cap,
// terminal failures do not.
type PipelineTaskService interface {
	// RunTranscription executes one transcription attempt for a session.
	RunTranscription(ctx context.Context, req TaskAttempt) (*TaskResult, error)

	// RunReportGeneration executes one report-generation attempt for a
	// session.
	RunReportGeneration(ctx context.Context, req TaskAttempt) (*TaskResult, error)
}

// TaskAttempt identifies one execution attempt of a stage.
type TaskAttempt struct {
	SessionID   string
	Attempt     int // 1-based
	MaxAttempts int
	Force       bool // report stage only: regenerate a completed report
}

// TaskResult describes the outcome of a successful (or skipped) attempt.
type TaskResult struct {
	SessionID    string
	Skipped      bool
	SkipReason   string
	TranscriptID string
	ReportID     string
}
