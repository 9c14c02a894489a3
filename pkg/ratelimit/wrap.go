package ratelimit

import (
	"context"
	"net/http"
)

// Throttled wraps fn so every invocation passes through the gate first.
// The returned function is otherwise identical to fn and safe to call
// from any number of goroutines.
//
// Example:
//
//	gate, _ := ratelimit.New(5, time.Second)
//	throttled := ratelimit.Throttled(gate, refreshCache)
//	for i := 0; i < 100; i++ {
//	    go throttled() // collectively at most 5 per second
//	}
func Throttled(g *Gate, fn func()) func() {
	return func() {
		g.Wait()
		fn()
	}
}

// ThrottledErr is Throttled for operations that return an error.
func ThrottledErr(g *Gate, fn func() error) func() error {
	return func() error {
		g.Wait()
		return fn()
	}
}

// ThrottledContext is Throttled for context-aware operations. The wait
// itself honors ctx: on cancellation the wrapped operation is never
// invoked and the context error is returned.
func ThrottledContext(g *Gate, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := g.WaitContext(ctx); err != nil {
			return err
		}
		return fn(ctx)
	}
}

// Transport is an http.RoundTripper that gates outbound requests.
//
// Use it to throttle an HTTP client against a remote API without touching
// call sites:
//
//	client := &http.Client{
//	    Transport: &ratelimit.Transport{Gate: gate},
//	}
type Transport struct {
	// Gate admits requests. Required.
	Gate *Gate

	// Base performs the actual round trip. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip waits for admission, then delegates to the base transport.
// The request's own context bounds the wait.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Gate.WaitContext(req.Context()); err != nil {
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
