// Package session contains the pure business logic for the session pipeline
// state machine. This is part of the Functional Core - no I/O, only pure
// functions.
package session

// Status represents the possible states of a therapy session's pipeline.
type Status string

const (
	// StatusEmpty means the session was created but has no audio yet.
	StatusEmpty Status = "empty"
	// StatusUploaded means audio was uploaded from a file.
	StatusUploaded Status = "uploaded"
	// StatusRecorded means audio was recorded in-app.
	StatusRecorded Status = "recorded"
	// StatusTranscribing means the transcription stage is running.
	StatusTranscribing Status = "transcribing"
	// StatusAnalyzing means the report-generation stage is running.
	StatusAnalyzing Status = "analyzing"
	// StatusCompleted means the report is ready.
	StatusCompleted Status = "completed"
	// StatusFailed means a stage failed terminally; recoverable by re-upload.
	StatusFailed Status = "failed"
)

// InitialStatus returns the status for a newly created session.
func InitialStatus() Status {
	return StatusEmpty
}

// validTransitions is the authoritative transition table. Status is mutated
// exclusively through Ingestion and the two pipeline tasks; every write goes
// through CanTransition so no other code path can invent a transition.
var validTransitions = map[Status][]Status{
	StatusEmpty:        {StatusUploaded, StatusRecorded, StatusTranscribing},
	StatusUploaded:     {StatusTranscribing},
	StatusRecorded:     {StatusTranscribing},
	StatusTranscribing: {StatusTranscribing, StatusAnalyzing, StatusCompleted, StatusFailed},
	StatusAnalyzing:    {StatusAnalyzing, StatusCompleted, StatusFailed, StatusTranscribing},
	StatusCompleted:    {StatusCompleted, StatusTranscribing},
	StatusFailed:       {StatusFailed, StatusTranscribing},
}

// CanTransition reports whether moving from one status to another is allowed.
// Self-transitions for in-flight states are allowed so that re-delivered jobs
// can reassert the current state without error.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known session status.
func IsValid(s Status) bool {
	switch s {
	case StatusEmpty, StatusUploaded, StatusRecorded, StatusTranscribing,
		StatusAnalyzing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// AfterTranscriptCompleted derives the session status once the transcript is
// known to be completed. The session is completed only if the report is also
// completed; otherwise report generation is the next step and the session is
// analyzing. This keeps the displayed status consistent with the satellite
// statuses on re-delivered transcription jobs.
func AfterTranscriptCompleted(reportCompleted bool) Status {
	if reportCompleted {
		return StatusCompleted
	}
	return StatusAnalyzing
}
