package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Gate admits at most maxCalls operations per trailing period.
//
// All state lives behind a single mutex: the capacity check and the
// admission record update must be atomic together, so the Gate never uses
// bare atomic counters for the decision. The lock is held only for the
// brief check-and-record; blocked callers sleep with no lock held.
//
// A Gate corresponds to one throttled resource or policy. Independent
// Gates share no state, even when configured identically.
type Gate struct {
	maxCalls int
	period   time.Duration

	mu     sync.Mutex
	window *window

	// FIFO extension state, unused unless constructed with WithFIFO.
	fifo  bool
	queue []chan struct{}

	waiting atomic.Int64

	// now is swappable in tests.
	now func() time.Time
}

// Option configures optional Gate behavior.
type Option func(*Gate)

// WithFIFO makes blocked waiters admit strictly in arrival order.
//
// By default, waiters that wake at the same instant race for the freed
// slot. With FIFO enabled, each blocking waiter joins a queue at Wait
// entry and only the head of the queue attempts admission. TryAcquire is
// unaffected: it never waits, so it contends directly.
func WithFIFO() Option {
	return func(g *Gate) { g.fifo = true }
}

// New creates a Gate admitting at most maxCalls operations per period.
//
// Both arguments must be positive; otherwise New returns a configuration
// error wrapping ErrInvalidMaxCalls or ErrInvalidPeriod and no Gate is
// produced.
//
// Example:
//
//	// at most 30 calls in any trailing 10 seconds
//	gate, err := ratelimit.New(30, 10*time.Second)
func New(maxCalls int, period time.Duration, opts ...Option) (*Gate, error) {
	if maxCalls <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidMaxCalls, maxCalls)
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidPeriod, period)
	}

	g := &Gate{
		maxCalls: maxCalls,
		period:   period,
		window:   newWindow(period),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// TryAcquire attempts a non-blocking admission.
//
// It returns true and records the admission if the trailing window has a
// free slot, false otherwise. Rejection has no side effects.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.window.prune(now)
	if g.window.len() >= g.maxCalls {
		return false
	}
	g.window.record(now)
	return true
}

// Wait blocks until admitted. It always succeeds eventually, given that
// the clock advances.
func (g *Gate) Wait() {
	// Background context never cancels, so the error is always nil.
	_ = g.WaitContext(context.Background())
}

// WaitTimeout blocks until admitted or until timeout elapses, measured
// from call entry. It returns false on timeout without having consumed a
// slot; partially elapsed sleeps count against the budget.
func (g *Gate) WaitTimeout(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return g.WaitContext(ctx) == nil
}

// WaitContext blocks until admitted or ctx is done, whichever comes
// first. On cancellation it returns ctx.Err() with the admission record
// untouched: admission is all-or-nothing.
//
// The loop re-validates capacity after every wake. The computed wake time
// is a hint, not a promise: other callers may have raced in and consumed
// the freed slot during the sleep.
func (g *Gate) WaitContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.fifo {
		return g.waitFIFO(ctx)
	}

	blocked := false
	defer func() {
		if blocked {
			g.waiting.Add(-1)
		}
	}()

	for {
		g.mu.Lock()
		now := g.now()
		g.window.prune(now)
		if g.window.len() < g.maxCalls {
			g.window.record(now)
			g.mu.Unlock()
			return nil
		}
		wake := g.window.nextAvailableAt()
		g.mu.Unlock()

		if !blocked {
			blocked = true
			g.waiting.Add(1)
		}
		if err := g.sleepUntil(ctx, wake); err != nil {
			return err
		}
	}
}

// sleepUntil sleeps with no lock held until t or ctx expiry. A zero or
// negative remaining duration returns immediately: the slot may already
// have freed while the lock was released.
func (g *Gate) sleepUntil(ctx context.Context, t time.Time) error {
	d := t.Sub(g.now())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MaxCalls returns the configured admission limit.
func (g *Gate) MaxCalls() int { return g.maxCalls }

// Period returns the configured window length.
func (g *Gate) Period() time.Duration { return g.period }

// InWindow returns the number of non-expired admissions right now.
func (g *Gate) InWindow() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.window.prune(g.now())
	return g.window.len()
}

// Waiting returns the number of callers currently blocked in a wait.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}
