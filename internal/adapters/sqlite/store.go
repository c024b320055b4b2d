// Package sqlite contains SQLite implementations of the repository, job
// queue, and transactional store ports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// DBTX abstracts *sql.DB and *sql.Tx so each repository works both
// standalone and inside a pipeline transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements secondary.PipelineStore over a *sql.DB. The database is
// opened with immediate transaction locking, so InTx serializes with every
// other writer: this is the pessimistic lock scope the ingestion and
// orchestrator steps run under.
type Store struct {
	db *sql.DB
}

// NewStore creates a new transactional store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// pipelineTx bundles all repositories over one *sql.Tx. The embedded types
// have disjoint method sets, so the union implements secondary.PipelineTx.
type pipelineTx struct {
	*SessionRepository
	*AudioRepository
	*TranscriptRepository
	*ReportRepository
	*JobStore
}

// InTx runs fn within a single write transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx secondary.PipelineTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	ptx := &pipelineTx{
		SessionRepository:    NewSessionRepository(tx),
		AudioRepository:      NewAudioRepository(tx),
		TranscriptRepository: NewTranscriptRepository(tx),
		ReportRepository:     NewReportRepository(tx),
		JobStore:             NewJobStore(tx),
	}

	if err := fn(ptx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
