package ratelimit

import "errors"

var (
	// ErrInvalidMaxCalls is returned by New when maxCalls is zero or negative.
	ErrInvalidMaxCalls = errors.New("ratelimit: max calls must be positive")

	// ErrInvalidPeriod is returned by New when the period is zero or negative.
	ErrInvalidPeriod = errors.New("ratelimit: period must be positive")
)
