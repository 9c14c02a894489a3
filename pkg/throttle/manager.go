package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"mercator-hq/rategate/pkg/config"
	"mercator-hq/rategate/pkg/ratelimit"
	"mercator-hq/rategate/pkg/telemetry/metrics"
)

// Manager coordinates one rate gate per named policy.
//
// All methods are safe for concurrent use. The policy map is guarded by a
// read-write mutex; admission itself happens outside that lock, on the
// gate's own synchronization, so a slow waiter never blocks lookups or
// reconfiguration.
type Manager struct {
	logger    *slog.Logger
	collector *metrics.Collector

	mu       sync.RWMutex
	gates    map[string]*ratelimit.Gate
	policies map[string]config.PolicyConfig
}

// NewManager builds a gate for every policy in the map.
//
// The collector may be nil to disable instrumentation. Policy settings
// are expected to have passed config validation; invalid entries still
// fail construction rather than producing a half-built manager.
func NewManager(policies map[string]config.PolicyConfig, logger *slog.Logger, collector *metrics.Collector) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gates, err := buildGates(policies)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger:    logger,
		collector: collector,
		gates:     gates,
		policies:  clonePolicies(policies),
	}

	for name, p := range policies {
		logger.Debug("policy registered",
			"policy", name,
			"max_calls", p.MaxCalls,
			"period", p.Period,
			"fifo", p.FIFO,
		)
	}
	return m, nil
}

// Gate returns the gate backing a policy, for callers that want the core
// API (WaitTimeout, Transport, ...) directly.
func (m *Manager) Gate(name string) (*ratelimit.Gate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.gates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return g, nil
}

// TryAcquire attempts a non-blocking admission against the named policy.
func (m *Manager) TryAcquire(name string) (bool, error) {
	g, err := m.Gate(name)
	if err != nil {
		return false, err
	}

	ok := g.TryAcquire()
	if m.collector != nil {
		outcome := metrics.OutcomeRejected
		if ok {
			outcome = metrics.OutcomeAdmitted
		}
		m.collector.RecordAdmission(name, outcome)
		m.collector.SetInWindow(name, g.InWindow())
	}
	return ok, nil
}

// Wait blocks until the named policy admits the caller or ctx is done.
func (m *Manager) Wait(ctx context.Context, name string) error {
	g, err := m.Gate(name)
	if err != nil {
		return err
	}

	start := time.Now()
	waitErr := g.WaitContext(ctx)
	waited := time.Since(start)

	if m.collector != nil {
		m.collector.RecordAdmission(name, waitOutcome(waitErr))
		m.collector.ObserveWait(name, waited)
		m.collector.SetInWindow(name, g.InWindow())
		m.collector.SetWaiters(name, g.Waiting())
	}

	if waitErr != nil {
		m.logger.Debug("admission abandoned",
			"policy", name,
			"waited", waited,
			"error", waitErr,
		)
		return waitErr
	}

	if waited > g.Period() {
		// Waiting longer than one full period means sustained saturation.
		m.logger.Warn("slow admission", "policy", name, "waited", waited)
	}
	return nil
}

// Policies returns the configured policy names in sorted order.
func (m *Manager) Policies() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.gates))
	for name := range m.gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reconfigure replaces the policy set.
//
// Policies whose settings are unchanged keep their existing gate, so
// their admission windows survive the reload. Changed policies get a
// fresh gate; removed ones are dropped. On error the manager is left
// untouched.
func (m *Manager) Reconfigure(policies map[string]config.PolicyConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	gates := make(map[string]*ratelimit.Gate, len(policies))
	for name, p := range policies {
		if old, ok := m.gates[name]; ok && m.policies[name] == p {
			gates[name] = old
			continue
		}
		g, err := newGate(p)
		if err != nil {
			return fmt.Errorf("policy %q: %w", name, err)
		}
		gates[name] = g
		m.logger.Info("policy reconfigured",
			"policy", name,
			"max_calls", p.MaxCalls,
			"period", p.Period,
			"fifo", p.FIFO,
		)
	}

	for name := range m.gates {
		if _, ok := policies[name]; !ok {
			m.logger.Info("policy removed", "policy", name)
		}
	}

	m.gates = gates
	m.policies = clonePolicies(policies)
	return nil
}

func buildGates(policies map[string]config.PolicyConfig) (map[string]*ratelimit.Gate, error) {
	gates := make(map[string]*ratelimit.Gate, len(policies))
	for name, p := range policies {
		g, err := newGate(p)
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
		gates[name] = g
	}
	return gates, nil
}

func newGate(p config.PolicyConfig) (*ratelimit.Gate, error) {
	var opts []ratelimit.Option
	if p.FIFO {
		opts = append(opts, ratelimit.WithFIFO())
	}
	return ratelimit.New(p.MaxCalls, p.Period, opts...)
}

func clonePolicies(policies map[string]config.PolicyConfig) map[string]config.PolicyConfig {
	cloned := make(map[string]config.PolicyConfig, len(policies))
	for name, p := range policies {
		cloned[name] = p
	}
	return cloned
}

func waitOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAdmitted
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeCancelled
	}
}
