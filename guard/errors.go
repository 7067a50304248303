package guard

import "errors"

var (
	// ErrRateLimited indicates the call was denied by the rate limiter.
	ErrRateLimited = errors.New("guard: rate limit exceeded")

	// ErrSaturated indicates the concurrency limit left no free slot.
	ErrSaturated = errors.New("guard: concurrency limit reached")
)
