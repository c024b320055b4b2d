package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	coretranscript "github.com/ananmuhameed/therapy-ai-platform/internal/core/transcript"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// MockModelName identifies output produced by the deterministic mock.
const MockModelName = "mock-v1"

// Mock is the deterministic transcription variant used in tests and CI. If
// the audio file contains valid UTF-8 text it is treated as the spoken words,
// which lets tests script exact transcripts; binary content yields a stable
// canned sentence.
type Mock struct {
	defaultLanguage string
}

// NewMock creates the mock provider.
func NewMock(defaultLanguage string) *Mock {
	return &Mock{defaultLanguage: defaultLanguage}
}

// Transcribe implements secondary.TranscriptionProvider.
func (m *Mock) Transcribe(ctx context.Context, audioPath, language string) (*secondary.TranscriptionResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	raw := string(data)
	if len(data) == 0 || !utf8.ValidString(raw) {
		raw = fmt.Sprintf("Mock transcription of %s (%d bytes of audio).", filepath.Base(audioPath), len(data))
	}

	cleaned := coretranscript.CleanText(raw)
	if cleaned == "" {
		cleaned = raw
	}

	if language == "" {
		language = m.defaultLanguage
	}

	return &secondary.TranscriptionResult{
		RawText:     raw,
		CleanedText: cleaned,
		Language:    language,
		WordCount:   coretranscript.CountWords(cleaned),
		ModelName:   MockModelName,
	}, nil
}
