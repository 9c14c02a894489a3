package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json

metrics:
  enabled: true

policies:
  search-api:
    max_calls: 5
    period: 1s
  billing-api:
    max_calls: 30
    period: 1m
    fifo: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging config not parsed: %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled")
	}
	// Unset metrics fields fall back to defaults.
	if cfg.Metrics.ListenAddress != DefaultMetricsListenAddress {
		t.Errorf("ListenAddress = %q, want default %q", cfg.Metrics.ListenAddress, DefaultMetricsListenAddress)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}

	p, ok := cfg.Policies["search-api"]
	if !ok {
		t.Fatal("Policy search-api missing")
	}
	if p.MaxCalls != 5 || p.Period != time.Second || p.FIFO {
		t.Errorf("Policy search-api = %+v", p)
	}

	b := cfg.Policies["billing-api"]
	if b.MaxCalls != 30 || b.Period != time.Minute || !b.FIFO {
		t.Errorf("Policy billing-api = %+v", b)
	}
}

func TestLoad_DefaultsForEmptyFile(t *testing.T) {
	path := writeConfig(t, "policies: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Format = %q, want %q", cfg.Logging.Format, DefaultLogFormat)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics should default to disabled")
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "policies: [not: a: map\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoad_InvalidPolicyRejected(t *testing.T) {
	path := writeConfig(t, `
policies:
  broken:
    max_calls: 0
    period: -1s
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T: %v", err, err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("Expected 2 field errors, got %d: %v", len(verr.Errors), verr)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
policies:
  api:
    max_calls: 1
    period: 1s
`)

	t.Setenv("RATEGATE_LOGGING_LEVEL", "error")
	t.Setenv("RATEGATE_METRICS_ENABLED", "true")
	t.Setenv("RATEGATE_METRICS_LISTEN_ADDRESS", "0.0.0.0:9100")

	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides failed: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "error")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled via env")
	}
	if cfg.Metrics.ListenAddress != "0.0.0.0:9100" {
		t.Errorf("ListenAddress = %q", cfg.Metrics.ListenAddress)
	}
}

func TestLoadWithEnvOverrides_InvalidOverrideRejected(t *testing.T) {
	path := writeConfig(t, `
policies:
  api:
    max_calls: 1
    period: 1s
`)

	t.Setenv("RATEGATE_LOGGING_LEVEL", "loud")

	if _, err := LoadWithEnvOverrides(path); err == nil {
		t.Error("Expected validation failure for invalid override")
	}
}
