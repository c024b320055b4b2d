// Package primary defines the primary ports (driving adapters) for the
// application. These are the interfaces through which the outside world
// drives the application.
package primary

import (
	"context"
	"io"
)

// IngestService defines the primary port for session creation and audio
// ingestion. Uploading or replacing audio triggers the processing pipeline.
type IngestService interface {
	// CreateSession creates a new session in the empty state.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// ListSessions lists sessions with optional filters.
	ListSessions(ctx context.Context, filters SessionFilters) ([]*Session, error)

	// UpdateSessionNotes updates the therapist's before/after session notes.
	UpdateSessionNotes(ctx context.Context, req UpdateSessionNotesRequest) (*Session, error)

	// UploadAudio attaches audio to a session that has none and starts
	// transcription. Fails with a conflict error if audio already exists.
	UploadAudio(ctx context.Context, req UploadAudioRequest) (*UploadAudioResponse, error)

	// ReplaceAudio swaps the audio of a session that already has an
	// attachment, discards prior pipeline progress, and restarts
	// transcription. Fails if no attachment exists.
	ReplaceAudio(ctx context.Context, req UploadAudioRequest) (*UploadAudioResponse, error)
}

// CreateSessionRequest contains parameters for creating a session.
type CreateSessionRequest struct {
	TherapistID     string
	PatientID       string
	SessionDate     string // RFC3339, optional
	DurationMinutes int
	NotesBefore     string
	NotesAfter      string
}

// UpdateSessionNotesRequest updates only the session note fields.
type UpdateSessionNotesRequest struct {
	SessionID   string
	NotesBefore string
	NotesAfter  string
}

// UploadAudioRequest contains parameters for uploading or replacing audio.
type UploadAudioRequest struct {
	SessionID    string
	Filename     string
	Content      io.Reader
	LanguageHint string
}

// UploadAudioResponse contains the result of an upload or replace.
type UploadAudioResponse struct {
	AudioID       string
	SessionStatus string
}

// Session is the session read model exposed to adapters.
type Session struct {
	ID               string
	TherapistID      string
	PatientID        string
	SessionDate      string
	DurationMinutes  int
	Status           string
	LastErrorStage   string
	LastErrorMessage string
	NotesBefore      string
	NotesAfter       string
	CreatedAt        string
	UpdatedAt        string
}

// SessionFilters contains filter options for listing sessions.
type SessionFilters struct {
	PatientID string
	Status    string
	Limit     int
}
