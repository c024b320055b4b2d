package session

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard failure as an error, or nil if allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// AudioContext provides context for audio ingestion guards.
type AudioContext struct {
	SessionID string
	HasAudio  bool
}

// CanUploadAudio evaluates whether audio can be uploaded to a session.
// Rules:
// - Session must not already have an audio attachment (use replace instead)
func CanUploadAudio(ctx AudioContext) GuardResult {
	if ctx.HasAudio {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("audio already uploaded for session %s, use replace-audio", ctx.SessionID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanReplaceAudio evaluates whether a session's audio can be replaced.
// Rules:
// - Session must already have an audio attachment to replace
func CanReplaceAudio(ctx AudioContext) GuardResult {
	if !ctx.HasAudio {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("no audio found for session %s, use upload-audio first", ctx.SessionID),
		}
	}
	return GuardResult{Allowed: true}
}
