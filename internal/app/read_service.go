package app

import (
	"context"
	"encoding/json"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// SessionReadServiceImpl implements the SessionReadService interface:
// transcript and report read models plus the single write path for
// therapist notes.
type SessionReadServiceImpl struct {
	transcripts secondary.TranscriptRepository
	reports     secondary.ReportRepository
}

// NewSessionReadService creates a new SessionReadService with injected
// dependencies.
func NewSessionReadService(
	transcripts secondary.TranscriptRepository,
	reports secondary.ReportRepository,
) *SessionReadServiceImpl {
	return &SessionReadServiceImpl{
		transcripts: transcripts,
		reports:     reports,
	}
}

// GetTranscript returns the transcript for a session.
func (s *SessionReadServiceImpl) GetTranscript(ctx context.Context, sessionID string) (*primary.Transcript, error) {
	record, err := s.transcripts.GetTranscriptBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &primary.Transcript{
		ID:                record.ID,
		SessionID:         record.SessionID,
		Status:            record.Status,
		RawTranscript:     record.RawTranscript,
		CleanedTranscript: record.CleanedTranscript,
		WordCount:         record.WordCount,
		LanguageCode:      record.LanguageCode,
		ModelName:         record.ModelName,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}, nil
}

// GetReport returns the report for a session with its list fields decoded.
func (s *SessionReadServiceImpl) GetReport(ctx context.Context, sessionID string) (*primary.Report, error) {
	record, err := s.reports.GetReportBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return recordToReport(record), nil
}

// UpdateTherapistNotes replaces the therapist notes on an existing report.
func (s *SessionReadServiceImpl) UpdateTherapistNotes(ctx context.Context, sessionID, notes string) (*primary.Report, error) {
	record, err := s.reports.GetReportBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.reports.UpdateTherapistNotes(ctx, record.ID, notes); err != nil {
		return nil, err
	}
	record.TherapistNotes = notes
	return recordToReport(record), nil
}

func recordToReport(record *secondary.ReportRecord) *primary.Report {
	return &primary.Report{
		ID:               record.ID,
		SessionID:        record.SessionID,
		Status:           record.Status,
		GeneratedSummary: record.GeneratedSummary,
		KeyPoints:        decodeStringList(record.KeyPointsJSON),
		RiskFlags:        decodeRiskFlags(record.RiskFlagsJSON),
		TreatmentPlan:    decodeStringList(record.TreatmentPlanJSON),
		TherapistNotes:   record.TherapistNotes,
		ModelName:        record.ModelName,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

// decodeStringList tolerates malformed stored JSON: readers get an empty
// list, never a decode error.
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func decodeRiskFlags(raw string) []secondary.RiskFlag {
	if raw == "" {
		return []secondary.RiskFlag{}
	}
	var out []secondary.RiskFlag
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []secondary.RiskFlag{}
	}
	return out
}
