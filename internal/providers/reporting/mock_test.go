package reporting

import (
	"context"
	"strings"
	"testing"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

func generate(t *testing.T, text string) *secondary.GeneratedReport {
	t.Helper()

	report, err := NewMock().GenerateReport(context.Background(), secondary.ReportRequest{
		TranscriptText: text,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return report
}

func TestMockGenerateReport_EmptyTextFails(t *testing.T) {
	_, err := NewMock().GenerateReport(context.Background(), secondary.ReportRequest{
		TranscriptText: "   ",
	})
	if err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestMockGenerateReport_NoRiskKeywords(t *testing.T) {
	report := generate(t, "We talked about work stress. Patient is sleeping better.")

	if len(report.RiskFlags) != 0 {
		t.Errorf("expected no risk flags, got %+v", report.RiskFlags)
	}
	if report.ModelName != MockModelName {
		t.Errorf("expected model '%s', got '%s'", MockModelName, report.ModelName)
	}
	if len(report.TreatmentPlan) != 3 {
		t.Errorf("expected canned 3-item treatment plan, got %d items", len(report.TreatmentPlan))
	}
}

func TestMockGenerateReport_FlagsRiskKeywords(t *testing.T) {
	report := generate(t, "Patient said they feel hopeless and mentioned suicide.")

	if len(report.RiskFlags) != 2 {
		t.Fatalf("expected 2 risk flags, got %+v", report.RiskFlags)
	}
	// Hits come back sorted, so the order is stable.
	if report.RiskFlags[0].Evidence != "hopeless" || report.RiskFlags[0].Severity != "medium" {
		t.Errorf("expected medium 'hopeless' first, got %+v", report.RiskFlags[0])
	}
	if report.RiskFlags[1].Evidence != "suicide" || report.RiskFlags[1].Severity != "high" {
		t.Errorf("expected high 'suicide' second, got %+v", report.RiskFlags[1])
	}
}

func TestMockGenerateReport_CaseInsensitiveScan(t *testing.T) {
	report := generate(t, "Patient talked about Self-Harm urges.")

	if len(report.RiskFlags) != 1 || report.RiskFlags[0].Severity != "high" {
		t.Errorf("expected one high flag, got %+v", report.RiskFlags)
	}
}

func TestMockGenerateReport_TruncatesLongSummary(t *testing.T) {
	long := strings.Repeat("patient spoke at length ", 100)
	report := generate(t, long)

	runes := []rune(report.Summary)
	if len(runes) != 601 {
		t.Errorf("expected 600 runes plus ellipsis, got %d", len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Error("expected summary to end with ellipsis")
	}
}

func TestMockGenerateReport_KeyPointsCappedAtFive(t *testing.T) {
	report := generate(t, "One. Two. Three. Four. Five. Six. Seven.")

	if len(report.KeyPoints) != 5 {
		t.Fatalf("expected 5 key points, got %d", len(report.KeyPoints))
	}
	if report.KeyPoints[0] != "One" || report.KeyPoints[4] != "Five" {
		t.Errorf("expected first five sentences, got %+v", report.KeyPoints)
	}
}

func TestMockGenerateReport_FallbackKeyPoint(t *testing.T) {
	report := generate(t, "no sentence terminator here")

	if len(report.KeyPoints) != 1 {
		t.Fatalf("expected 1 key point, got %d", len(report.KeyPoints))
	}
	if report.KeyPoints[0] != "no sentence terminator here" {
		t.Errorf("unexpected key point: %q", report.KeyPoints[0])
	}
}
