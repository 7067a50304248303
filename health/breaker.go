package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/breakwater/breaker"
)

// BreakerChecker reports a circuit breaker's state as a health check.
// Closed maps to healthy, half-open to degraded, open to unhealthy.
type BreakerChecker struct {
	b *breaker.Breaker
}

// NewBreakerChecker wraps a breaker as a health checker.
func NewBreakerChecker(b *breaker.Breaker) *BreakerChecker {
	return &BreakerChecker{b: b}
}

func (c *BreakerChecker) Name() string {
	return "breaker." + c.b.Name()
}

func (c *BreakerChecker) Check(ctx context.Context) Result {
	stats := c.b.Stats()

	details := map[string]any{
		"state":          stats.State.String(),
		"failures":       stats.Failures,
		"window_calls":   stats.WindowCalls,
		"failure_rate":   stats.WindowFailureRate,
		"avg_latency_ms": stats.WindowAvgLatency.Milliseconds(),
	}
	if !stats.LastTransition.IsZero() {
		details["last_transition"] = stats.LastTransition
	}

	switch stats.State {
	case breaker.StateClosed:
		return Healthy("circuit closed").WithDetails(details)
	case breaker.StateHalfOpen:
		return Degraded("circuit half-open, probing recovery").WithDetails(details)
	default:
		return Unhealthy(fmt.Sprintf("circuit open after %d failures", stats.Failures), breaker.ErrOpen).
			WithDetails(details)
	}
}

// RegisterBreakers registers one checker per breaker currently in the
// registry. Breakers added to the registry later need another call.
func RegisterBreakers(agg *Aggregator, reg *breaker.Registry) {
	for _, name := range reg.Names() {
		if b, ok := reg.Lookup(name); ok {
			checker := NewBreakerChecker(b)
			agg.Register(checker.Name(), checker)
		}
	}
}
