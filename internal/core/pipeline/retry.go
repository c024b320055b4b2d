package pipeline

import "time"

// DefaultMaxAttempts is the fixed attempt cap per pipeline job.
const DefaultMaxAttempts = 3

// MaxErrorMessageLen bounds last_error_message; provider errors can embed
// whole response bodies.
const MaxErrorMessageLen = 500

// TruncateErrorMessage bounds msg to MaxErrorMessageLen runes.
func TruncateErrorMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxErrorMessageLen {
		return msg
	}
	return string(runes[:MaxErrorMessageLen])
}

// BackoffDelay returns the delay before the next attempt after `attempt`
// failed attempts (attempt >= 1). Exponential: base, 2*base, 4*base, ...
func BackoffDelay(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// IsFinalAttempt reports whether attempt exhausts the retry budget.
func IsFinalAttempt(attempt, maxAttempts int) bool {
	return attempt >= maxAttempts
}
