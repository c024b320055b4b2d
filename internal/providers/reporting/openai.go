package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

const (
	chatEndpoint = "https://api.openai.com/v1/chat/completions"
	openaiModel  = "gpt-4.1-mini"
)

var reportSystemPrompt = strings.Join([]string{
	"You are a clinical assistant generating structured therapy reports.",
	"Return ONLY valid JSON with keys: summary (string), key_points (array of strings),",
	"risk_flags (array of {type, severity, evidence}), treatment_plan (array of strings).",
	"Be concise, factual, and clinically neutral.",
	"ALWAYS assess suicide and self-harm risk; if the transcript contains suicidal ideation,",
	"intent, or desire to die, include at least one risk_flags item with severity = high.",
	"key_points must not be empty and must be grounded in the transcript; provide 4-8 items.",
	"treatment_plan must not be empty and must be actionable; provide 3-6 items.",
}, " ")

// OpenAI generates reports through the OpenAI chat completions endpoint with
// a JSON response format.
type OpenAI struct {
	apiKey     string
	httpClient *http.Client
}

// NewOpenAI creates the OpenAI-backed provider. Call deadlines come from the
// caller's context, not the client.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type reportPayload struct {
	Summary       string              `json:"summary"`
	KeyPoints     []string            `json:"key_points"`
	RiskFlags     []secondary.RiskFlag `json:"risk_flags"`
	TreatmentPlan []string            `json:"treatment_plan"`
}

// GenerateReport implements secondary.ReportProvider.
func (o *OpenAI) GenerateReport(ctx context.Context, req secondary.ReportRequest) (*secondary.GeneratedReport, error) {
	if strings.TrimSpace(req.TranscriptText) == "" {
		return nil, fmt.Errorf("transcript text is empty; cannot generate report")
	}

	contextPairs := make([]string, 0, len(req.SessionContext))
	for k, v := range req.SessionContext {
		contextPairs = append(contextPairs, k+"="+v)
	}

	payload := chatRequest{
		Model: openaiModel,
		Messages: []chatMessage{
			{Role: "system", Content: reportSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Language: %s\nContext: %s\n\nTranscript:\n%s",
				req.Language, strings.Join(contextPairs, ", "), req.TranscriptText,
			)},
		},
	}
	payload.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, chatEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errPayload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("chat API status %d: %s", resp.StatusCode, errPayload)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}

	var generated reportPayload
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &generated); err != nil {
		return nil, fmt.Errorf("decode report payload: %w", err)
	}
	if generated.Summary == "" || len(generated.KeyPoints) == 0 {
		return nil, fmt.Errorf("report payload missing summary or key points")
	}

	return &secondary.GeneratedReport{
		Summary:       generated.Summary,
		KeyPoints:     generated.KeyPoints,
		RiskFlags:     generated.RiskFlags,
		TreatmentPlan: generated.TreatmentPlan,
		ModelName:     openaiModel,
	}, nil
}
