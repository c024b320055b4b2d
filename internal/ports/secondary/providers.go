package secondary

import "context"

// TranscriptionProvider defines the secondary port for the speech-to-text
// capability. Implementations are selected once at startup; the pipeline
// never branches on provider names at call time.
type TranscriptionProvider interface {
	// Transcribe converts the audio file at audioPath into text. Every field
	// of the result must be populated; callers reject incomplete results
	// before persisting.
	Transcribe(ctx context.Context, audioPath, language string) (*TranscriptionResult, error)
}

// TranscriptionResult is the complete output contract of a transcription
// provider.
type TranscriptionResult struct {
	RawText     string
	CleanedText string
	Language    string
	WordCount   int
	ModelName   string
}

// ReportProvider defines the secondary port for the clinical report
// generation capability.
type ReportProvider interface {
	// GenerateReport produces a structured report from transcript text.
	// Empty transcript text is an error, never a valid empty report.
	GenerateReport(ctx context.Context, req ReportRequest) (*GeneratedReport, error)
}

// ReportRequest carries the transcript text and optional session context for
// report generation.
type ReportRequest struct {
	TranscriptText string
	SessionContext map[string]string
	Language       string
}

// GeneratedReport is the complete output contract of a report provider.
type GeneratedReport struct {
	Summary       string
	KeyPoints     []string
	RiskFlags     []RiskFlag
	TreatmentPlan []string
	ModelName     string
}

// RiskFlag is one detected clinical risk with its supporting evidence.
type RiskFlag struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Evidence string `json:"evidence"`
}
