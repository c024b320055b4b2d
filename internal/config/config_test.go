package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TranscriptionProvider != TranscriptionProviderMock {
		t.Errorf("TranscriptionProvider = %q, want mock", cfg.TranscriptionProvider)
	}
	if cfg.ReportProvider != ReportProviderMock {
		t.Errorf("ReportProvider = %q, want mock", cfg.ReportProvider)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d, want 2", cfg.WorkerCount)
	}
	if cfg.JobMaxAttempts != 3 {
		t.Errorf("JobMaxAttempts = %d, want 3", cfg.JobMaxAttempts)
	}
	if cfg.JobRetryBase != 10*time.Second {
		t.Errorf("JobRetryBase = %v, want 10s", cfg.JobRetryBase)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.PollInterval)
	}
	if cfg.MaxUploadBytes != 50*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 50 MiB", cfg.MaxUploadBytes)
	}
	if cfg.DefaultLanguage != "ar" {
		t.Errorf("DefaultLanguage = %q, want ar", cfg.DefaultLanguage)
	}
	if !filepath.IsAbs(cfg.DataDir) {
		t.Errorf("DataDir = %q, want absolute path", cfg.DataDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("THERAPYD_PORT", "9090")
	t.Setenv("THERAPYD_DATA_DIR", t.TempDir())
	t.Setenv("TRANSCRIPTION_PROVIDER", "whisper")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_RETRY_BASE_SECONDS", "30")
	t.Setenv("DEFAULT_LANGUAGE", "en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.TranscriptionProvider != "whisper" {
		t.Errorf("TranscriptionProvider = %q, want whisper", cfg.TranscriptionProvider)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("WorkerCount = %d, want 8", cfg.WorkerCount)
	}
	if cfg.JobRetryBase != 30*time.Second {
		t.Errorf("JobRetryBase = %v, want 30s", cfg.JobRetryBase)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", cfg.DefaultLanguage)
	}
}

func TestLoad_DBPathFollowsDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("THERAPYD_DATA_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "therapyd.db") {
		t.Errorf("DBPath = %q, want it under the data dir", cfg.DBPath)
	}
}

func TestLoad_RejectsMalformedInt(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric WORKER_COUNT")
	}
}
