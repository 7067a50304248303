// Package breaker implements a three-state circuit breaker with a rolling
// failure-rate window.
//
// A Breaker guards calls to one downstream dependency. While closed, calls
// pass through and failures are counted; the circuit opens when consecutive
// failures reach a threshold or when the failure rate over a rolling time
// window crosses a configured percentage. While open, calls are rejected
// without touching the dependency — either producing a configured fallback
// value or an OpenError naming the breaker. After the recovery timeout the
// next call is let through as a probe (half-open); one probe failure
// reopens the circuit immediately, while a run of probe successes closes it.
//
//	b := breaker.New(breaker.Config{Name: "billing"})
//	v, err := breaker.Do(ctx, b, func(ctx context.Context) (*Invoice, error) {
//	    return client.FetchInvoice(ctx, id)
//	})
//
// Breakers are safe for concurrent use; counters and call history are
// guarded by a mutex and owned exclusively by their instance. A Registry
// holds one breaker per dependency name for the life of the process.
//
// The breaker never retries and knows nothing about retry policies; compose
// the two by nesting when both are wanted (see package guard).
package breaker
