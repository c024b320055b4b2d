package transcript

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"hello", 1},
		{"patient discussed progress today", 4},
		{"  spaced   out\n words ", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  patient \n\n discussed\t progress  ")
	if got != "patient discussed progress" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
	if CleanText("   ") != "" {
		t.Error("expected blank input to clean to empty")
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus() != StatusTranscribing {
		t.Errorf("expected initial status 'transcribing', got '%s'", InitialStatus())
	}
}
