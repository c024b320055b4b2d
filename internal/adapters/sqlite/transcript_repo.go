package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	coretranscript "github.com/ananmuhameed/therapy-ai-platform/internal/core/transcript"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// TranscriptRepository implements secondary.TranscriptRepository with SQLite.
type TranscriptRepository struct {
	db DBTX
}

// NewTranscriptRepository creates a new SQLite transcript repository.
func NewTranscriptRepository(db DBTX) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// GetTranscriptBySession retrieves the transcript for a session.
func (r *TranscriptRepository) GetTranscriptBySession(ctx context.Context, sessionID string) (*secondary.TranscriptRecord, error) {
	var createdAt, updatedAt time.Time

	record := &secondary.TranscriptRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, session_id, status, raw_transcript, cleaned_transcript, word_count, language_code, model_name, created_at, updated_at FROM session_transcripts WHERE session_id = ?",
		sessionID,
	).Scan(&record.ID, &record.SessionID, &record.Status, &record.RawTranscript,
		&record.CleanedTranscript, &record.WordCount, &record.LanguageCode,
		&record.ModelName, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, &pipeline.NotFoundError{Entity: "transcript", ID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

// CreateTranscript persists a new transcript row.
func (r *TranscriptRepository) CreateTranscript(ctx context.Context, transcript *secondary.TranscriptRecord) error {
	if transcript.ID == "" {
		return fmt.Errorf("transcript ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO session_transcripts (id, session_id, status, language_code) VALUES (?, ?, ?, ?)",
		transcript.ID, transcript.SessionID, transcript.Status, transcript.LanguageCode,
	)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	return nil
}

// UpdateTranscriptStatus sets only the transcript status.
func (r *TranscriptRepository) UpdateTranscriptStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE session_transcripts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update transcript status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "transcript", ID: id}
	}
	return nil
}

// SaveTranscriptResult persists the transcription output together with the
// new status, atomically with the enclosing transaction.
func (r *TranscriptRepository) SaveTranscriptResult(ctx context.Context, transcript *secondary.TranscriptRecord) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE session_transcripts SET status = ?, raw_transcript = ?, cleaned_transcript = ?, word_count = ?, language_code = ?, model_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		transcript.Status, transcript.RawTranscript, transcript.CleanedTranscript,
		transcript.WordCount, transcript.LanguageCode, transcript.ModelName, transcript.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save transcript result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "transcript", ID: transcript.ID}
	}
	return nil
}

// ResetTranscript clears transcription progress for a session after its
// audio was replaced. Missing transcript is a no-op.
func (r *TranscriptRepository) ResetTranscript(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE session_transcripts SET status = ?, raw_transcript = '', cleaned_transcript = '', word_count = 0, model_name = '', updated_at = CURRENT_TIMESTAMP WHERE session_id = ?",
		string(coretranscript.StatusPending), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to reset transcript: %w", err)
	}
	return nil
}
