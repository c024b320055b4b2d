package app

import (
	"context"
	"log"
	"time"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// PipelineTaskServiceImpl implements the PipelineTaskService interface: one
// execution attempt of each pipeline stage. Attempts are driven by the worker
// pool (or directly by the pipeline debug command); at-least-once delivery is
// assumed, so both stages carry idempotency guards.
type PipelineTaskServiceImpl struct {
	store       secondary.PipelineStore
	sessions    secondary.SessionRepository
	audio       secondary.AudioRepository
	transcripts secondary.TranscriptRepository
	reports     secondary.ReportRepository
	blobs       secondary.BlobStore
	transcriber secondary.TranscriptionProvider
	reporter    secondary.ReportProvider
	locks       *SessionLocks
	logger      *log.Logger

	providerTimeout time.Duration
	defaultLang     string
	maxAttempts     int
}

// NewPipelineTaskService creates a new PipelineTaskService with injected
// dependencies. Providers are already-resolved capability variants; the task
// never branches on provider names.
func NewPipelineTaskService(
	store secondary.PipelineStore,
	sessions secondary.SessionRepository,
	audio secondary.AudioRepository,
	transcripts secondary.TranscriptRepository,
	reports secondary.ReportRepository,
	blobs secondary.BlobStore,
	transcriber secondary.TranscriptionProvider,
	reporter secondary.ReportProvider,
	locks *SessionLocks,
	logger *log.Logger,
	providerTimeout time.Duration,
	defaultLang string,
	maxAttempts int,
) *PipelineTaskServiceImpl {
	return &PipelineTaskServiceImpl{
		store:           store,
		sessions:        sessions,
		audio:           audio,
		transcripts:     transcripts,
		reports:         reports,
		blobs:           blobs,
		transcriber:     transcriber,
		reporter:        reporter,
		locks:           locks,
		logger:          logger,
		providerTimeout: providerTimeout,
		defaultLang:     defaultLang,
		maxAttempts:     maxAttempts,
	}
}

// providerContext bounds a single provider invocation so a hung external
// call cannot silently exhaust the retry budget.
func (s *PipelineTaskServiceImpl) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.providerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.providerTimeout)
}
