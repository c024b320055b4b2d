package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// Pool polls the durable job queue and executes pipeline stages through the
// task service. Delivery is at-least-once: claiming marks a job running and
// increments its attempt counter, so a crash between claim and completion
// leaves a running row behind rather than re-running the job silently.
type Pool struct {
	jobs   secondary.JobStore
	tasks  primary.PipelineTaskService
	logger *log.Logger

	workers      int
	pollInterval time.Duration
	retryBase    time.Duration

	wg sync.WaitGroup
}

// NewPool creates a worker pool. workers is the number of concurrent
// polling goroutines; retryBase is the backoff unit for requeued jobs.
func NewPool(
	jobs secondary.JobStore,
	tasks primary.PipelineTaskService,
	logger *log.Logger,
	workers int,
	pollInterval time.Duration,
	retryBase time.Duration,
) *Pool {
	if workers < 1 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Pool{
		jobs:         jobs,
		tasks:        tasks,
		logger:       logger,
		workers:      workers,
		pollInterval: pollInterval,
		retryBase:    retryBase,
	}
}

// Start launches the polling goroutines. They stop when ctx is cancelled;
// Wait blocks until all of them have drained.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Printf("starting %d pipeline workers (poll interval %s)", p.workers, p.pollInterval)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i + 1)
	}
}

// Wait blocks until every worker goroutine has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		// Drain all due jobs before going back to sleep.
		for {
			if ctx.Err() != nil {
				return
			}
			done, err := p.RunNext(ctx)
			if err != nil {
				p.logger.Printf("worker %d: %v", id, err)
				break
			}
			if !done {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunNext claims and executes at most one due job. It returns true when a
// job was claimed, false when the queue had nothing due.
func (p *Pool) RunNext(ctx context.Context) (bool, error) {
	job, err := p.jobs.ClaimNextJob(ctx)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}
	p.execute(ctx, job)
	return true, nil
}

// execute runs one claimed job and settles its queue row. The task service
// owns session and artifact state; the pool owns only the job lifecycle.
func (p *Pool) execute(ctx context.Context, job *secondary.JobRecord) {
	attempt := primary.TaskAttempt{
		SessionID:   job.SessionID,
		Attempt:     job.Attempts,
		MaxAttempts: job.MaxAttempts,
		Force:       job.Force,
	}

	var (
		result *primary.TaskResult
		err    error
	)
	switch job.Kind {
	case secondary.JobKindTranscribe:
		result, err = p.tasks.RunTranscription(ctx, attempt)
	case secondary.JobKindGenerateReport:
		result, err = p.tasks.RunReportGeneration(ctx, attempt)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	if err == nil {
		if result.Skipped {
			p.logger.Printf("job %s (%s) skipped for session %s: %s",
				job.ID, job.Kind, job.SessionID, result.SkipReason)
		}
		if cerr := p.jobs.CompleteJob(ctx, job.ID); cerr != nil {
			p.logger.Printf("complete job %s: %v", job.ID, cerr)
		}
		return
	}

	if pipeline.IsRetryable(err) && !pipeline.IsFinalAttempt(job.Attempts, job.MaxAttempts) {
		delay := pipeline.BackoffDelay(job.Attempts, p.retryBase)
		p.logger.Printf("job %s (%s) attempt %d/%d failed, retrying in %s: %v",
			job.ID, job.Kind, job.Attempts, job.MaxAttempts, delay, err)
		if rerr := p.jobs.RescheduleJob(ctx, job.ID, delay, err.Error()); rerr != nil {
			p.logger.Printf("reschedule job %s: %v", job.ID, rerr)
		}
		return
	}

	p.logger.Printf("job %s (%s) failed terminally after attempt %d/%d: %v",
		job.ID, job.Kind, job.Attempts, job.MaxAttempts, err)
	if ferr := p.jobs.FailJob(ctx, job.ID, err.Error()); ferr != nil {
		p.logger.Printf("fail job %s: %v", job.ID, ferr)
	}
}
