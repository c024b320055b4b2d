package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// AudioRepository implements secondary.AudioRepository with SQLite.
type AudioRepository struct {
	db DBTX
}

// NewAudioRepository creates a new SQLite audio repository.
func NewAudioRepository(db DBTX) *AudioRepository {
	return &AudioRepository{db: db}
}

// CreateAudio persists a new attachment. The session_id UNIQUE index makes
// double-uploads a conflict even across processes.
func (r *AudioRepository) CreateAudio(ctx context.Context, audio *secondary.AudioRecord) error {
	if audio.ID == "" {
		return fmt.Errorf("audio ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO session_audio (id, session_id, blob_key, original_filename, duration_seconds, sample_rate, language_code) VALUES (?, ?, ?, ?, ?, ?, ?)",
		audio.ID, audio.SessionID, audio.BlobKey, audio.OriginalFilename,
		audio.DurationSeconds, audio.SampleRate, audio.LanguageCode,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return &pipeline.ConflictError{
				Reason: fmt.Sprintf("audio already uploaded for session %s", audio.SessionID),
			}
		}
		return fmt.Errorf("failed to create audio attachment: %w", err)
	}
	return nil
}

// GetAudioBySession retrieves the attachment for a session.
func (r *AudioRepository) GetAudioBySession(ctx context.Context, sessionID string) (*secondary.AudioRecord, error) {
	var uploadedAt time.Time

	record := &secondary.AudioRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, session_id, blob_key, original_filename, duration_seconds, sample_rate, language_code, uploaded_at FROM session_audio WHERE session_id = ?",
		sessionID,
	).Scan(&record.ID, &record.SessionID, &record.BlobKey, &record.OriginalFilename,
		&record.DurationSeconds, &record.SampleRate, &record.LanguageCode, &uploadedAt)

	if err == sql.ErrNoRows {
		return nil, &pipeline.NotFoundError{Entity: "audio attachment", ID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio attachment: %w", err)
	}

	record.UploadedAt = uploadedAt.Format(time.RFC3339)
	return record, nil
}

// DeleteAudioBySession removes the attachment record for a session.
func (r *AudioRepository) DeleteAudioBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM session_audio WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete audio attachment: %w", err)
	}
	return nil
}
