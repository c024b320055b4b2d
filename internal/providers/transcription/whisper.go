package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	coretranscript "github.com/ananmuhameed/therapy-ai-platform/internal/core/transcript"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

const (
	whisperEndpoint = "https://api.openai.com/v1/audio/transcriptions"
	whisperModel    = "whisper-1"
)

// Whisper transcribes audio through the OpenAI transcription endpoint.
type Whisper struct {
	apiKey     string
	httpClient *http.Client
}

// NewWhisper creates the Whisper-backed provider. Call deadlines come from
// the caller's context, not the client.
func NewWhisper(apiKey string) *Whisper {
	return &Whisper{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Transcribe implements secondary.TranscriptionProvider.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, language string) (*secondary.TranscriptionResult, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err := writer.WriteField("model", whisperModel); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, whisperEndpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("transcription API status %d: %s", resp.StatusCode, payload)
	}

	var parsed struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	cleaned := coretranscript.CleanText(parsed.Text)
	lang := parsed.Language
	if lang == "" {
		lang = language
	}

	return &secondary.TranscriptionResult{
		RawText:     parsed.Text,
		CleanedText: cleaned,
		Language:    lang,
		WordCount:   coretranscript.CountWords(cleaned),
		ModelName:   whisperModel,
	}, nil
}
