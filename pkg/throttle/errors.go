package throttle

import "errors"

// ErrUnknownPolicy is returned when an operation names a policy the
// Manager was not configured with.
var ErrUnknownPolicy = errors.New("throttle: unknown policy")
