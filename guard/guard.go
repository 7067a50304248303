package guard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/jonwraymond/breakwater/breaker"
	"github.com/jonwraymond/breakwater/observe"
	"github.com/jonwraymond/breakwater/retry"
)

// Guard composes resilience patterns around one logical operation.
type Guard struct {
	name     string
	breaker  *breaker.Breaker
	retry    *retry.Options
	limiter  *rate.Limiter
	sem      *semaphore.Weighted
	deadline time.Duration
	logger   observe.Logger
	metrics  observe.Metrics
	tracer   observe.Tracer
}

// Option configures a Guard.
type Option func(*Guard)

// New creates a Guard with the given name and options.
func New(name string, opts ...Option) *Guard {
	g := &Guard{
		name:    name,
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithBreaker routes calls through the given circuit breaker.
func WithBreaker(b *breaker.Breaker) Option {
	return func(g *Guard) {
		g.breaker = b
	}
}

// WithRetry retries failed attempts with the given options.
func WithRetry(opts retry.Options) Option {
	return func(g *Guard) {
		g.retry = &opts
	}
}

// WithRateLimit admits at most rps calls per second with the given burst.
// Calls over the limit fail immediately with ErrRateLimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Guard) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithConcurrencyLimit caps in-flight calls at n. Calls beyond the cap
// fail immediately with ErrSaturated.
func WithConcurrencyLimit(n int64) Option {
	return func(g *Guard) {
		g.sem = semaphore.NewWeighted(n)
	}
}

// WithDeadline bounds each individual attempt.
func WithDeadline(d time.Duration) Option {
	return func(g *Guard) {
		g.deadline = d
	}
}

// WithLogger sets the logger for admission decisions.
func WithLogger(l observe.Logger) Option {
	return func(g *Guard) {
		g.logger = l
	}
}

// WithMetrics records call outcomes and rejections.
func WithMetrics(m observe.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithTracer wraps each call in a span.
func WithTracer(t observe.Tracer) Option {
	return func(g *Guard) {
		g.tracer = t
	}
}

// Name returns the guard's name.
func (g *Guard) Name() string {
	return g.name
}

// Execute runs the operation through every configured pattern.
//
// Admission checks come first: the rate limiter, then the concurrency
// limit. An admitted call then runs through the circuit breaker, with
// retries and the per-attempt deadline applied inside it.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) (any, error)) (any, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		g.logger.Warn(ctx, "call rate limited", observe.Field{Key: "guard", Value: g.name})
		g.metrics.RecordRejection(ctx, g.name)
		return nil, ErrRateLimited
	}

	if g.sem != nil {
		if !g.sem.TryAcquire(1) {
			g.logger.Warn(ctx, "call rejected, no free slot", observe.Field{Key: "guard", Value: g.name})
			g.metrics.RecordRejection(ctx, g.name)
			return nil, ErrSaturated
		}
		defer g.sem.Release(1)
	}

	var attempts atomic.Int64

	// Build the chain inside-out: deadline, attempt counting, retry,
	// breaker.
	execute := op

	if g.deadline > 0 {
		inner := execute
		execute = func(ctx context.Context) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, g.deadline)
			defer cancel()
			return inner(ctx)
		}
	}

	{
		inner := execute
		execute = func(ctx context.Context) (any, error) {
			attempts.Add(1)
			return inner(ctx)
		}
	}

	if g.retry != nil {
		inner := execute
		execute = func(ctx context.Context) (any, error) {
			return retry.Do[any](ctx, *g.retry, inner)
		}
	}

	if g.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) (any, error) {
			return g.breaker.Execute(ctx, inner)
		}
	}

	start := time.Now()

	var span trace.Span
	if g.tracer != nil {
		ctx, span = g.tracer.StartCall(ctx, g.name)
	}

	v, err := execute(ctx)

	if g.tracer != nil {
		g.tracer.EndCall(span, int(attempts.Load()), err)
	}

	if errors.Is(err, breaker.ErrOpen) {
		g.metrics.RecordRejection(ctx, g.name)
	}
	g.metrics.RecordCall(ctx, g.name, int(attempts.Load()), time.Since(start), err)

	return v, err
}

// Do runs a typed operation through the guard.
func Do[T any](ctx context.Context, g *Guard, op func(context.Context) (T, error)) (T, error) {
	var zero T

	v, err := g.Execute(ctx, func(ctx context.Context) (any, error) {
		return op(ctx)
	})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("guard %q: operation produced %T, want %T", g.name, v, zero)
	}
	return typed, nil
}
