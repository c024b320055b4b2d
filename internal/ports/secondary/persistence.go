// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import "context"

// SessionRepository defines the secondary port for session persistence.
type SessionRepository interface {
	// CreateSession persists a new session. The record must have ID and
	// Status pre-populated by the service layer.
	CreateSession(ctx context.Context, session *SessionRecord) error

	// GetSession retrieves a session by its ID.
	GetSession(ctx context.Context, id string) (*SessionRecord, error)

	// ListSessions retrieves sessions matching the given filters.
	ListSessions(ctx context.Context, filters SessionFilters) ([]*SessionRecord, error)

	// UpdateSessionStatus sets the pipeline status and error fields together.
	// Empty errorStage/errorMessage clear any previous error.
	UpdateSessionStatus(ctx context.Context, id, status, errorStage, errorMessage string) error

	// UpdateSessionNotes updates the therapist's before/after session notes.
	UpdateSessionNotes(ctx context.Context, id, notesBefore, notesAfter string) error
}

// SessionRecord represents a session as stored in persistence.
type SessionRecord struct {
	ID               string
	TherapistID      string
	PatientID        string
	SessionDate      string // RFC3339, empty when unscheduled
	DurationMinutes  int
	Status           string
	LastErrorStage   string
	LastErrorMessage string
	NotesBefore      string
	NotesAfter       string
	CreatedAt        string
	UpdatedAt        string
}

// SessionFilters contains filter options for querying sessions.
type SessionFilters struct {
	PatientID string
	Status    string
	Limit     int
}

// AudioRepository defines the secondary port for audio attachment persistence.
// A session owns at most one attachment; the session_id unique index enforces
// this at the storage layer.
type AudioRepository interface {
	// CreateAudio persists a new attachment. Returns a conflict error if the
	// session already has one.
	CreateAudio(ctx context.Context, audio *AudioRecord) error

	// GetAudioBySession retrieves the attachment for a session.
	GetAudioBySession(ctx context.Context, sessionID string) (*AudioRecord, error)

	// DeleteAudioBySession removes the attachment record for a session.
	DeleteAudioBySession(ctx context.Context, sessionID string) error
}

// AudioRecord represents an audio attachment as stored in persistence.
type AudioRecord struct {
	ID               string
	SessionID        string
	BlobKey          string
	OriginalFilename string
	DurationSeconds  int
	SampleRate       int
	LanguageCode     string
	UploadedAt       string
}

// TranscriptRepository defines the secondary port for transcript persistence.
type TranscriptRepository interface {
	// GetTranscriptBySession retrieves the transcript for a session.
	GetTranscriptBySession(ctx context.Context, sessionID string) (*TranscriptRecord, error)

	// CreateTranscript persists a new transcript row.
	CreateTranscript(ctx context.Context, transcript *TranscriptRecord) error

	// UpdateTranscriptStatus sets only the transcript status.
	UpdateTranscriptStatus(ctx context.Context, id, status string) error

	// SaveTranscriptResult persists the transcription output (text, word
	// count, language, model) together with the new status.
	SaveTranscriptResult(ctx context.Context, transcript *TranscriptRecord) error

	// ResetTranscript clears transcription progress for a session after its
	// audio was replaced: status back to pending, all content fields empty.
	ResetTranscript(ctx context.Context, sessionID string) error
}

// TranscriptRecord represents a transcript as stored in persistence.
type TranscriptRecord struct {
	ID                string
	SessionID         string
	Status            string
	RawTranscript     string
	CleanedTranscript string
	WordCount         int
	LanguageCode      string
	ModelName         string
	CreatedAt         string
	UpdatedAt         string
}

// ReportRepository defines the secondary port for report persistence.
// TherapistNotes is written only through UpdateTherapistNotes; no other
// method touches it.
type ReportRepository interface {
	// GetReportBySession retrieves the report for a session.
	GetReportBySession(ctx context.Context, sessionID string) (*ReportRecord, error)

	// CreateReport persists a new report row.
	CreateReport(ctx context.Context, report *ReportRecord) error

	// UpdateReportStatus sets only the report status.
	UpdateReportStatus(ctx context.Context, id, status string) error

	// SaveReportResult persists the generated content (summary, key points,
	// risk flags, treatment plan, model) together with the new status,
	// leaving therapist_notes untouched.
	SaveReportResult(ctx context.Context, report *ReportRecord) error

	// UpdateTherapistNotes replaces the therapist notes. This is the single
	// write path for the field.
	UpdateTherapistNotes(ctx context.Context, id, notes string) error

	// ResetReportContent clears generated fields for a session after its
	// audio was replaced: status back to draft, summary/points/flags/plan
	// empty, therapist_notes preserved.
	ResetReportContent(ctx context.Context, sessionID string) error
}

// ReportRecord represents a report as stored in persistence. The list fields
// are stored as JSON text columns.
type ReportRecord struct {
	ID                string
	SessionID         string
	Status            string
	GeneratedSummary  string
	KeyPointsJSON     string
	RiskFlagsJSON     string
	TreatmentPlanJSON string
	TherapistNotes    string
	ModelName         string
	CreatedAt         string
	UpdatedAt         string
}

// PipelineTx is the union of repository ports available inside one
// transaction. Mutations made through it commit atomically; jobs enqueued on
// it become visible to workers only after the transaction commits, which is
// what makes enqueue-after-commit hold.
type PipelineTx interface {
	SessionRepository
	AudioRepository
	TranscriptRepository
	ReportRepository
	JobEnqueuer
}

// PipelineStore is the transactional secondary port for pipeline mutations.
type PipelineStore interface {
	// InTx runs fn inside a single write transaction and commits if fn
	// returns nil. fn must not retain the PipelineTx beyond the call.
	InTx(ctx context.Context, fn func(tx PipelineTx) error) error
}
