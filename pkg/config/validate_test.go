package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{
		Policies: map[string]PolicyConfig{
			"api": {MaxCalls: 5, Period: time.Second},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Policies["bad"] = PolicyConfig{MaxCalls: -1, Period: 0}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("Expected 4 field errors, got %d: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(verr.Error(), "policies.bad.max_calls") {
		t.Errorf("Error message missing field path: %v", verr)
	}
}

func TestValidate_MetricsOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Path = "no-slash"

	// Disabled metrics are not validated.
	if err := Validate(cfg); err != nil {
		t.Errorf("Disabled metrics should skip validation: %v", err)
	}

	cfg.Metrics.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Error("Enabled metrics with bad path should fail validation")
	}
}

func TestValidate_NoPolicies(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	// An empty policy set is valid; the CLI decides whether it is useful.
	if err := Validate(cfg); err != nil {
		t.Errorf("Empty policy set rejected: %v", err)
	}
}
