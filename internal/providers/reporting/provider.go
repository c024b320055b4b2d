// Package reporting contains the clinical report generation capability
// variants. The variant is selected once at startup through New; unknown
// selections are a configuration error.
package reporting

import (
	"fmt"
	"strings"

	"github.com/ananmuhameed/therapy-ai-platform/internal/config"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// New returns the report provider for the configured selection.
func New(name string, cfg config.Config) (secondary.ReportProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.ReportProviderMock:
		return NewMock(), nil
	case config.ReportProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("REPORT_PROVIDER=openai requires OPENAI_API_KEY")
		}
		return NewOpenAI(cfg.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown REPORT_PROVIDER: %s", name)
	}
}
