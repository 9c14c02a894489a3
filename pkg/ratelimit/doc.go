// Package ratelimit provides a client-side call throttler.
//
// # Overview
//
// A Gate bounds how many operations a process performs within a rolling
// time window. Many goroutines can share one Gate; collectively they never
// exceed the configured rate when calling an external resource:
//
//	gate, err := ratelimit.New(5, time.Second) // 5 calls per second
//	if err != nil {
//	    // invalid configuration
//	}
//
//	gate.Wait() // blocks until a slot is free
//	callRemoteAPI()
//
// # Sliding Window
//
// Admissions are counted over a trailing window of fixed length, not over
// aligned clock buckets. This avoids the burst-at-boundary behavior of
// fixed-window counters: at every instant, at most maxCalls admissions
// fall within the trailing period.
//
// # Blocking
//
// Wait does not poll. A blocked caller computes when the oldest admission
// leaves the window, sleeps until then with no lock held, and re-validates
// on wake. Re-validation is mandatory: another caller may have taken the
// freed slot during the sleep.
//
// # Fairness
//
// By default, waiters that wake simultaneously contend for the freed slot;
// whichever re-acquires the lock first wins. Construct the gate with
// WithFIFO to admit blocked waiters strictly in arrival order instead.
//
// # Wrapping Operations
//
// Throttled and friends turn any function into a rate-limited one, and
// Transport gates an http.RoundTripper:
//
//	limited := ratelimit.ThrottledErr(gate, fetchPage)
//	for i := 0; i < 100; i++ {
//	    go limited()
//	}
//
// # Thread Safety
//
// All Gate methods are safe for concurrent use. The admission record is
// owned by the Gate and only ever touched under its mutex.
package ratelimit
