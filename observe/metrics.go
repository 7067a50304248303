package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records resilience telemetry for guarded calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic and must return quickly.
type Metrics interface {
	// RecordCall records one guarded call with its total attempt count,
	// wall-clock duration, and final error (nil on success).
	RecordCall(ctx context.Context, name string, attempts int, duration time.Duration, err error)

	// RecordRejection records a call denied without reaching the operation
	// (open circuit, rate limit, saturation).
	RecordRejection(ctx context.Context, name string)

	// RecordStateChange records a circuit breaker transition.
	RecordStateChange(ctx context.Context, name, from, to string)
}

// metricsImpl is the OpenTelemetry implementation of Metrics.
type metricsImpl struct {
	calls        metric.Int64Counter
	callErrors   metric.Int64Counter
	attempts     metric.Int64Histogram
	durationHist metric.Float64Histogram
	rejections   metric.Int64Counter
	transitions  metric.Int64Counter
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	calls, err := meter.Int64Counter(
		"resilience.calls",
		metric.WithDescription("Total guarded calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callErrors, err := meter.Int64Counter(
		"resilience.call.errors",
		metric.WithDescription("Guarded calls that ultimately failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	attempts, err := meter.Int64Histogram(
		"resilience.call.attempts",
		metric.WithDescription("Attempts used per guarded call, including the first"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"resilience.call.duration_ms",
		metric.WithDescription("Guarded call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"resilience.rejections",
		metric.WithDescription("Calls denied before reaching the operation"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"resilience.breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		calls:        calls,
		callErrors:   callErrors,
		attempts:     attempts,
		durationHist: durationHist,
		rejections:   rejections,
		transitions:  transitions,
	}, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, name string, attempts int, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("guard.name", name))

	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.callErrors.Add(ctx, 1, opt)
	}
	m.attempts.Record(ctx, int64(attempts), opt)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordRejection(ctx context.Context, name string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("guard.name", name)))
}

func (m *metricsImpl) RecordStateChange(ctx context.Context, name, from, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker.name", name),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordCall(ctx context.Context, name string, attempts int, duration time.Duration, err error) {
}
func (nopMetrics) RecordRejection(ctx context.Context, name string)          {}
func (nopMetrics) RecordStateChange(ctx context.Context, name, from, to string) {}
