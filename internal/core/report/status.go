// Package report contains the pure business logic for clinical report state.
// This is part of the Functional Core - no I/O, only pure functions.
package report

import "strings"

// Status represents the possible states of a session report.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// InitialStatus returns the status for a lazily created report.
func InitialStatus() Status {
	return StatusDraft
}

// EffectiveText returns the transcript text report generation should consume:
// the cleaned transcript, falling back to the raw transcript, trimmed.
// An empty result means there is nothing to generate a report from.
func EffectiveText(cleaned, raw string) string {
	text := strings.TrimSpace(cleaned)
	if text == "" {
		text = strings.TrimSpace(raw)
	}
	return text
}
