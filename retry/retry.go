package retry

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/jonwraymond/breakwater/fault"
)

// Options configures the retry behavior.
type Options struct {
	// MaxRetries is the number of retries after the first attempt, so up to
	// MaxRetries+1 calls are made in total.
	// Zero or negative selects the default: 3
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	// Default: 1 second
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries, before jitter.
	// Default: 30 seconds
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// DisableJitter turns off delay randomization. When jitter is on, each
	// delay is multiplied by a uniform value in [0.5, 1.0], so jitter only
	// ever shortens the wait.
	DisableJitter bool

	// RetryIf classifies an error as retryable.
	// Default: Retryable
	RetryIf func(err error) bool

	// Observer is notified before each retry. Notification is purely
	// observational and never affects the retry decision.
	Observer Observer
}

// Observer receives a notification before each retry attempt.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; they cannot alter control flow.
type Observer interface {
	// OnRetry is called with the error that triggered the retry, the attempt
	// number that failed (starting at 1), and the delay before the next attempt.
	OnRetry(err error, attempt int, delay time.Duration)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(err error, attempt int, delay time.Duration)

// OnRetry calls f.
func (f ObserverFunc) OnRetry(err error, attempt int, delay time.Duration) {
	f(err, attempt, delay)
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	if o.RetryIf == nil {
		o.RetryIf = Retryable
	}
	return o
}

// Do runs op with retry. On success the result is returned immediately. On
// failure the most recent operation error propagates unchanged; Do never
// substitutes a synthesized exhaustion error for the real cause. Cancellation
// before an attempt or during a backoff wait returns an error satisfying
// errors.Is(err, ErrAborted) that unwraps to the context error.
func Do[T any](ctx context.Context, opts Options, op func(context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error

	attempts := opts.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &AbortedError{Err: err}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if !opts.RetryIf(err) {
			return zero, err
		}

		delay := opts.delay(attempt)
		if opts.Observer != nil {
			opts.Observer.OnRetry(err, attempt, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, &AbortedError{Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// delay computes the backoff before the retry following the given attempt:
// min(InitialDelay * Multiplier^(attempt-1), MaxDelay), jittered into
// [0.5, 1.0] of itself unless disabled, rounded to the nearest millisecond.
func (o Options) delay(attempt int) time.Duration {
	d := float64(o.InitialDelay) * math.Pow(o.Multiplier, float64(attempt-1))
	if d > float64(o.MaxDelay) {
		d = float64(o.MaxDelay)
	}

	if !o.DisableJitter {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d *= 0.5 + rand.Float64()/2
	}

	return time.Duration(d).Round(time.Millisecond)
}

// Retryable is the default classifier. An error is retryable when it is a
// network-level failure, a timeout, or carries a structured HTTP status of
// 5xx, 408, or 429. Classification uses package fault's structured fields
// only; status codes embedded in message text are never matched. Plain
// context.Canceled is not retryable.
func Retryable(err error) bool {
	switch fault.KindOf(err) {
	case fault.KindNetwork, fault.KindTimeout:
		return true
	}

	if status, ok := fault.StatusOf(err); ok {
		return status == http.StatusRequestTimeout ||
			status == http.StatusTooManyRequests ||
			status >= 500
	}

	return false
}
