// Package guard composes resilience patterns around a single operation:
// rate limiting, concurrency limiting, circuit breaking, retries, and
// per-call deadlines.
//
// A Guard is assembled once from options and then shared:
//
//	g := guard.New("payments",
//	    guard.WithBreaker(br),
//	    guard.WithRetry(retry.Options{MaxRetries: 2}),
//	    guard.WithRateLimit(100, 10),
//	    guard.WithConcurrencyLimit(32),
//	    guard.WithDeadline(2*time.Second),
//	)
//	result, err := guard.Do[*Receipt](ctx, g, charge)
//
// Patterns apply outside-in: the rate limiter and concurrency limit gate
// admission, the circuit breaker decides whether the backend is worth
// calling, retries run inside the breaker so an exhausted retry sequence
// counts as a single failure, and the deadline bounds each individual
// attempt.
package guard
