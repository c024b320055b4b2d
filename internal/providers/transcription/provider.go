// Package transcription contains the speech-to-text capability variants. The
// variant is selected once at startup through New; unknown selections are a
// configuration error.
package transcription

import (
	"fmt"
	"strings"

	"github.com/ananmuhameed/therapy-ai-platform/internal/config"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// New returns the transcription provider for the configured selection.
func New(name string, cfg config.Config) (secondary.TranscriptionProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.TranscriptionProviderMock:
		return NewMock(cfg.DefaultLanguage), nil
	case config.TranscriptionProviderWhisper:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("TRANSCRIPTION_PROVIDER=whisper requires OPENAI_API_KEY")
		}
		return NewWhisper(cfg.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown TRANSCRIPTION_PROVIDER: %s", name)
	}
}

// ValidateResult rejects incomplete provider output before anything is
// persisted. Every provider must populate all five fields.
func ValidateResult(result *secondary.TranscriptionResult) error {
	if result == nil {
		return fmt.Errorf("transcription result is nil")
	}
	var missing []string
	if strings.TrimSpace(result.RawText) == "" {
		missing = append(missing, "raw_text")
	}
	if strings.TrimSpace(result.CleanedText) == "" {
		missing = append(missing, "cleaned_text")
	}
	if strings.TrimSpace(result.Language) == "" {
		missing = append(missing, "language")
	}
	if result.WordCount <= 0 {
		missing = append(missing, "word_count")
	}
	if strings.TrimSpace(result.ModelName) == "" {
		missing = append(missing, "model_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid transcription output, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
