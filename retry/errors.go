package retry

import "errors"

// ErrAborted matches errors returned when the context is canceled before an
// attempt or during a backoff wait. It is distinct from any operation
// failure so callers can tell deliberate cancellation from a real error.
var ErrAborted = errors.New("retry: aborted")

// AbortedError reports cancellation observed by the retry loop. It wraps
// the context's error and matches ErrAborted.
type AbortedError struct {
	Err error
}

// Error implements the error interface.
func (e *AbortedError) Error() string {
	if e.Err == nil {
		return "retry: aborted"
	}
	return "retry: aborted: " + e.Err.Error()
}

// Unwrap returns the context error.
func (e *AbortedError) Unwrap() error { return e.Err }

// Is reports whether target is ErrAborted.
func (e *AbortedError) Is(target error) bool { return target == ErrAborted }
