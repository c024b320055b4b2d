// Package wire provides dependency injection for the therapyd application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"sync"

	"github.com/ananmuhameed/therapy-ai-platform/internal/adapters/blobstore"
	"github.com/ananmuhameed/therapy-ai-platform/internal/adapters/httpapi"
	"github.com/ananmuhameed/therapy-ai-platform/internal/adapters/sqlite"
	"github.com/ananmuhameed/therapy-ai-platform/internal/app"
	"github.com/ananmuhameed/therapy-ai-platform/internal/config"
	"github.com/ananmuhameed/therapy-ai-platform/internal/db"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/providers/reporting"
	"github.com/ananmuhameed/therapy-ai-platform/internal/providers/transcription"
	"github.com/ananmuhameed/therapy-ai-platform/internal/worker"
)

var (
	cfg      config.Config
	logger   *log.Logger
	ingest   primary.IngestService
	reads    primary.SessionReadService
	tasks    primary.PipelineTaskService
	jobStore secondary.JobStore
	once     sync.Once
)

// Config returns the loaded process configuration.
func Config() config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared process logger.
func Logger() *log.Logger {
	once.Do(initServices)
	return logger
}

// IngestService returns the singleton IngestService instance.
func IngestService() primary.IngestService {
	once.Do(initServices)
	return ingest
}

// SessionReadService returns the singleton SessionReadService instance.
func SessionReadService() primary.SessionReadService {
	once.Do(initServices)
	return reads
}

// PipelineTaskService returns the singleton PipelineTaskService instance.
func PipelineTaskService() primary.PipelineTaskService {
	once.Do(initServices)
	return tasks
}

// JobStore returns the singleton durable job queue.
func JobStore() secondary.JobStore {
	once.Do(initServices)
	return jobStore
}

// WorkerPool builds a worker pool over the singleton services.
func WorkerPool() *worker.Pool {
	once.Do(initServices)
	return worker.NewPool(jobStore, tasks, logger, cfg.WorkerCount, cfg.PollInterval, cfg.JobRetryBase)
}

// HTTPServer builds the HTTP server over the singleton services.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	return httpapi.NewServer(cfg, ingest, reads, logger)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger = log.New(os.Stderr, "therapyd ", log.LstdFlags|log.Lmsgprefix)

	// Open the database and apply the schema
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := db.InitSchema(database); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	// Repository adapters (secondary ports) over the shared handle
	sessionRepo := sqlite.NewSessionRepository(database)
	audioRepo := sqlite.NewAudioRepository(database)
	transcriptRepo := sqlite.NewTranscriptRepository(database)
	reportRepo := sqlite.NewReportRepository(database)
	jobStore = sqlite.NewJobStore(database)
	store := sqlite.NewStore(database)

	blobs, err := blobstore.NewFileStore(cfg.DataDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("failed to initialize blob store: %v", err)
	}

	// Provider variants are resolved once here; services never branch on
	// provider names.
	transcriber, err := transcription.New(cfg.TranscriptionProvider, cfg)
	if err != nil {
		log.Fatalf("failed to initialize transcription provider: %v", err)
	}
	reporter, err := reporting.New(cfg.ReportProvider, cfg)
	if err != nil {
		log.Fatalf("failed to initialize report provider: %v", err)
	}

	// One lock table shared by ingest and tasks, so an upload and a worker
	// attempt for the same session serialize.
	locks := app.NewSessionLocks()

	ingest = app.NewIngestService(store, sessionRepo, blobs, locks, cfg.JobMaxAttempts, cfg.DefaultLanguage)
	reads = app.NewSessionReadService(transcriptRepo, reportRepo)
	tasks = app.NewPipelineTaskService(
		store,
		sessionRepo,
		audioRepo,
		transcriptRepo,
		reportRepo,
		blobs,
		transcriber,
		reporter,
		locks,
		logger,
		cfg.ProviderTimeout,
		cfg.DefaultLanguage,
		cfg.JobMaxAttempts,
	)
}
