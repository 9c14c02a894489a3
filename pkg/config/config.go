package config

import "time"

// Config is the root configuration structure for rategate.
type Config struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Policies maps policy names to throttling policies. Each policy
	// becomes one independent rate gate.
	Policies map[string]PolicyConfig `yaml:"policies"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains configuration for the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the host:port the metrics server binds to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics handler.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric name prefix.
	// Default: "rategate"
	Namespace string `yaml:"namespace"`
}

// PolicyConfig describes one throttling policy: at most MaxCalls
// admissions within any trailing window of length Period. Both values are
// fixed for the lifetime of the gate built from them.
type PolicyConfig struct {
	// MaxCalls is the maximum number of admissions per period. Must be
	// positive.
	MaxCalls int `yaml:"max_calls"`

	// Period is the sliding window length. Must be positive. Accepts Go
	// duration strings ("500ms", "1s", "2m30s").
	Period time.Duration `yaml:"period"`

	// FIFO admits blocked waiters in strict arrival order instead of
	// letting them race for freed slots.
	// Default: false
	FIFO bool `yaml:"fifo"`
}
