package hostproc

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LogLevel != "info" {
		t.Fatalf("got log level %q, want info", cfg.LogLevel)
	}
	if cfg.TickTimeout != 30*time.Second {
		t.Fatalf("got tick timeout %v, want 30s", cfg.TickTimeout)
	}
}

func TestLoadConfigReadsEnvOverrides(t *testing.T) {
	t.Setenv("MXL_LOG_LEVEL", "debug")
	t.Setenv("MXL_GRAPH_SPEC_PATH", "/tmp/graph.yaml")
	t.Setenv("MXL_TICK_TIMEOUT", "5s")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("got log level %q, want debug", cfg.LogLevel)
	}
	if cfg.GraphSpecPath != "/tmp/graph.yaml" {
		t.Fatalf("got graph spec path %q", cfg.GraphSpecPath)
	}
	if cfg.TickTimeout != 5*time.Second {
		t.Fatalf("got tick timeout %v, want 5s", cfg.TickTimeout)
	}
}

func TestLoadConfigMissingEnvFileIsNotAnError(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/.env"); err != nil {
		t.Fatalf("expected a missing .env file to be tolerated, got %v", err)
	}
}
