// Package retry executes operations with exponential backoff.
//
// Do runs an operation up to MaxRetries+1 times, waiting between attempts
// with exponentially growing, capped, jittered delays. Retries happen only
// for failures the policy classifies as transient; everything else
// propagates to the caller unchanged. Cancellation is checked before every
// attempt and during every backoff wait, and surfaces as a distinct
// ErrAborted so callers can tell deliberate cancellation from real failure.
//
//	users, err := retry.Do(ctx, retry.Options{MaxRetries: 3}, func(ctx context.Context) ([]User, error) {
//	    return client.ListUsers(ctx)
//	})
//
// The default classifier treats network failures, timeouts, and structured
// HTTP 5xx/408/429 statuses (see package fault) as retryable. Operations
// that must be composed ahead of time can be bound to their options with
// Operation, and HTTP request loops can use DoRequest, which converts
// retryable status codes into classified failures.
//
// The package holds no state between calls; every Do invocation is
// independent.
package retry
