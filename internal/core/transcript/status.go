// Package transcript contains the pure business logic for transcript state.
// This is part of the Functional Core - no I/O, only pure functions.
package transcript

import "strings"

// Status represents the possible states of a session transcript.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// InitialStatus returns the status for a transcript created by the first
// transcription attempt.
func InitialStatus() Status {
	return StatusTranscribing
}

// CountWords returns the word count of cleaned transcript text.
func CountWords(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	return len(strings.Fields(trimmed))
}

// CleanText collapses all whitespace runs to single spaces and trims the
// result. This is the canonical cleaning applied to provider output before
// persisting.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
