package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// MockModelName identifies output produced by the deterministic mock.
const MockModelName = "mock-v1"

var riskTerms = []string{"suicide", "self-harm", "kill myself", "die", "hopeless"}

var highSeverityTerms = map[string]bool{
	"suicide":     true,
	"kill myself": true,
	"self-harm":   true,
}

// Mock is the deterministic report variant: stable output for tests and CI,
// zero external dependencies.
type Mock struct{}

// NewMock creates the mock provider.
func NewMock() *Mock {
	return &Mock{}
}

// GenerateReport implements secondary.ReportProvider. Empty transcript text
// is an error, never a valid empty report.
func (m *Mock) GenerateReport(ctx context.Context, req secondary.ReportRequest) (*secondary.GeneratedReport, error) {
	text := strings.TrimSpace(req.TranscriptText)
	if text == "" {
		return nil, fmt.Errorf("transcript text is empty; cannot generate report")
	}

	lower := strings.ToLower(text)

	// Deterministic risk scan over a fixed keyword list.
	var hits []string
	for _, term := range riskTerms {
		if strings.Contains(lower, term) {
			hits = append(hits, term)
		}
	}
	sort.Strings(hits)

	riskFlags := make([]secondary.RiskFlag, 0, len(hits))
	for _, term := range hits {
		severity := "medium"
		if highSeverityTerms[term] {
			severity = "high"
		}
		riskFlags = append(riskFlags, secondary.RiskFlag{
			Type:     "risk_keyword",
			Severity: severity,
			Evidence: term,
		})
	}

	summary := text
	if runes := []rune(text); len(runes) > 600 {
		summary = string(runes[:600]) + "…"
	}

	// Crude but stable key points: split on '.' after flattening newlines.
	flattened := strings.ReplaceAll(text, "\n", " ")
	var keyPoints []string
	for _, sentence := range strings.Split(flattened, ".") {
		if s := strings.TrimSpace(sentence); s != "" {
			keyPoints = append(keyPoints, s)
		}
		if len(keyPoints) == 5 {
			break
		}
	}
	if len(keyPoints) == 0 {
		cut := text
		if runes := []rune(text); len(runes) > 120 {
			cut = string(runes[:120])
		}
		keyPoints = []string{cut}
	}

	return &secondary.GeneratedReport{
		Summary:   summary,
		KeyPoints: keyPoints,
		RiskFlags: riskFlags,
		TreatmentPlan: []string{
			"Identify primary stressors mentioned",
			"Track mood/trigger patterns until next session",
			"Agree on 1-2 coping strategies to practice daily",
		},
		ModelName: MockModelName,
	}, nil
}
