// Package config loads process configuration from the environment. Provider
// selections are resolved here once at startup and injected into the
// services; nothing reads ambient configuration at call time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Provider selection names.
const (
	TranscriptionProviderMock    = "mock"
	TranscriptionProviderWhisper = "whisper"

	ReportProviderMock   = "mock"
	ReportProviderOpenAI = "openai"
)

// Config holds all runtime configuration.
type Config struct {
	Port    string
	DBPath  string
	DataDir string

	TranscriptionProvider string
	ReportProvider        string
	OpenAIAPIKey          string

	WorkerCount     int
	JobMaxAttempts  int
	JobRetryBase    time.Duration
	PollInterval    time.Duration
	ProviderTimeout time.Duration

	MaxUploadBytes  int64
	DefaultLanguage string
}

// Load reads configuration from the environment with defaults.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("THERAPYD_PORT", "8080")
	cfg.DataDir = envOrDefault("THERAPYD_DATA_DIR", "data")
	cfg.DBPath = envOrDefault("THERAPYD_DB_PATH", filepath.Join(cfg.DataDir, "therapyd.db"))

	cfg.TranscriptionProvider = envOrDefault("TRANSCRIPTION_PROVIDER", TranscriptionProviderMock)
	cfg.ReportProvider = envOrDefault("REPORT_PROVIDER", ReportProviderMock)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	workerCount, err := parseIntEnv("WORKER_COUNT", 2)
	if err != nil {
		return Config{}, err
	}
	cfg.WorkerCount = workerCount

	maxAttempts, err := parseIntEnv("JOB_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.JobMaxAttempts = maxAttempts

	retryBaseSeconds, err := parseIntEnv("JOB_RETRY_BASE_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.JobRetryBase = time.Duration(retryBaseSeconds) * time.Second

	pollMillis, err := parseIntEnv("JOB_POLL_INTERVAL_MS", 500)
	if err != nil {
		return Config{}, err
	}
	cfg.PollInterval = time.Duration(pollMillis) * time.Millisecond

	providerTimeoutSeconds, err := parseIntEnv("PROVIDER_TIMEOUT_SECONDS", 600)
	if err != nil {
		return Config{}, err
	}
	cfg.ProviderTimeout = time.Duration(providerTimeoutSeconds) * time.Second

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_MB", 50)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxUploadBytes = int64(maxUploadMB) * 1024 * 1024

	cfg.DefaultLanguage = envOrDefault("DEFAULT_LANGUAGE", "ar")

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return n, nil
}
