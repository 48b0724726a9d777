package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Storage.Backend != "file" {
		t.Errorf("Expected file backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Recommend.TopN != 3 {
		t.Errorf("Expected TopN 3, got %d", cfg.Recommend.TopN)
	}
	if cfg.Recommend.InvalidateOnWrite {
		t.Error("Expected InvalidateOnWrite to default to false")
	}
	if cfg.Recommend.SpinnerInterval != 200*time.Millisecond {
		t.Errorf("Expected 200ms spinner interval, got %v", cfg.Recommend.SpinnerInterval)
	}
}

func TestLoadFileYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidequest.yaml")
	yaml := `
storage:
  backend: duckdb
  path: /tmp/ledger.duckdb
recommend:
  top_n: 5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("SIDEQUEST_RECOMMEND_TOP_N", "7")
	t.Setenv("SIDEQUEST_RECOMMEND_INVALIDATE_ON_WRITE", "true")
	t.Setenv("SIDEQUEST_SERVER_PORT", "9090")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Storage.Backend != "duckdb" {
		t.Errorf("Expected duckdb from file, got %q", cfg.Storage.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug from file, got %q", cfg.Logging.Level)
	}
	if cfg.Recommend.TopN != 7 {
		t.Errorf("Expected env to override TopN to 7, got %d", cfg.Recommend.TopN)
	}
	if !cfg.Recommend.InvalidateOnWrite {
		t.Error("Expected env to enable InvalidateOnWrite")
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Server.Port)
	}
}

func TestLoadFileRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SIDEQUEST_STORAGE_BACKEND", "postgres")

	if _, err := LoadFile(""); err == nil {
		t.Error("Expected validation error for unknown backend")
	}
}
