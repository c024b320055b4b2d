package primary

import (
	"context"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// SessionReadService defines the primary port for reading pipeline output and
// updating the therapist's report notes.
type SessionReadService interface {
	// GetTranscript returns the transcript for a session, or a not-found
	// error if transcription has not produced one yet.
	GetTranscript(ctx context.Context, sessionID string) (*Transcript, error)

	// GetReport returns the report for a session, or a not-found error if
	// generation has not produced one yet.
	GetReport(ctx context.Context, sessionID string) (*Report, error)

	// UpdateTherapistNotes replaces the therapist notes on an existing
	// report. This is the only way notes are ever written.
	UpdateTherapistNotes(ctx context.Context, sessionID, notes string) (*Report, error)
}

// Transcript is the transcript read model exposed to adapters.
type Transcript struct {
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

// Report is the report read model exposed to adapters. List fields are
// decoded from their stored JSON; malformed stored JSON yields empty lists
// rather than an error.
type Report struct {
	ID               string
	SessionID        string
	Status           string
	GeneratedSummary string
	KeyPoints        []string
	RiskFlags        []secondary.RiskFlag
	TreatmentPlan    []string
	TherapistNotes   string
	ModelName        string
	CreatedAt        string
	UpdatedAt        string
}
