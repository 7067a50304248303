package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps OpenTelemetry tracing with call-oriented span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCall must be best-effort and must not panic.
type Tracer interface {
	// StartCall starts a span for one guarded call.
	StartCall(ctx context.Context, name string) (context.Context, trace.Span)

	// EndCall ends the span, recording the attempt count and any error.
	EndCall(span trace.Span, attempts int, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartCall(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "guard.call."+name,
		trace.WithAttributes(
			attribute.String("guard.name", name),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndCall(span trace.Span, attempts int, err error) {
	span.SetAttributes(attribute.Int("guard.attempts", attempts))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a Tracer that records nothing.
func NopTracer() Tracer {
	return &nopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

type nopTracer struct {
	noop trace.Tracer
}

func (t *nopTracer) StartCall(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, name)
}

func (t *nopTracer) EndCall(span trace.Span, attempts int, err error) {
	span.End()
}
