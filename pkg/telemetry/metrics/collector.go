package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/rategate/pkg/config"
)

// Admission outcomes recorded per policy.
const (
	OutcomeAdmitted  = "admitted"
	OutcomeRejected  = "rejected"
	OutcomeTimeout   = "timeout"
	OutcomeCancelled = "cancelled"
)

// Collector owns the Prometheus metrics for rategate.
//
// Metrics (under the configured namespace, default "rategate"):
//   - admissions_total{policy, outcome}: admission attempts by outcome
//   - wait_duration_seconds{policy}: time callers spent blocked
//   - in_window{policy}: admissions currently inside the sliding window
//   - waiters{policy}: callers currently blocked waiting for a slot
type Collector struct {
	registry *prometheus.Registry

	admissions   *prometheus.CounterVec
	waitDuration *prometheus.HistogramVec
	inWindow     *prometheus.GaugeVec
	waiters      *prometheus.GaugeVec
}

// NewCollector creates a collector registered against the given registry.
// If registry is nil, a private registry is created; the default global
// registry is never used, so tests and embedders stay isolated.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		registry: registry,

		admissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admissions_total",
				Help:      "Total admission attempts by policy and outcome",
			},
			[]string{"policy", "outcome"},
		),

		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wait_duration_seconds",
				Help:      "Time callers spent blocked waiting for admission",
				// 1ms up to ~2 minutes; waits are sized by policy periods.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 18),
			},
			[]string{"policy"},
		),

		inWindow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "in_window",
				Help:      "Admissions currently inside the sliding window",
			},
			[]string{"policy"},
		),

		waiters: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "waiters",
				Help:      "Callers currently blocked waiting for a slot",
			},
			[]string{"policy"},
		),
	}

	registry.MustRegister(c.admissions, c.waitDuration, c.inWindow, c.waiters)
	return c
}

// RecordAdmission counts one admission attempt.
func (c *Collector) RecordAdmission(policy, outcome string) {
	c.admissions.WithLabelValues(policy, outcome).Inc()
}

// ObserveWait records how long a caller was blocked before its outcome.
func (c *Collector) ObserveWait(policy string, d time.Duration) {
	c.waitDuration.WithLabelValues(policy).Observe(d.Seconds())
}

// SetInWindow updates the current window occupancy for a policy.
func (c *Collector) SetInWindow(policy string, n int) {
	c.inWindow.WithLabelValues(policy).Set(float64(n))
}

// SetWaiters updates the current blocked-caller count for a policy.
func (c *Collector) SetWaiters(policy string, n int) {
	c.waiters.WithLabelValues(policy).Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
