package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanName returns the deterministic span name for an operation.
// Format: resilience.execute <operation>
func SpanName(operation string) string {
	return "resilience.execute " + operation
}

// Tracer wraps OpenTelemetry tracing with one span per resilient call.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span covering every attempt of one call.
	StartSpan(ctx context.Context, operation string) (context.Context, trace.Span)

	// EndSpan ends the span, recording the attempt count and any error.
	EndSpan(span trace.Span, attempts int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer on top of an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanName(operation),
		trace.WithAttributes(
			attribute.String("resilience.operation", operation),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, attempts int, err error) {
	span.SetAttributes(
		attribute.Int("resilience.attempts", attempts),
		attribute.Bool("resilience.error", err != nil),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer producing non-recording spans.
func NopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, SpanName(operation))
}

func (t *noopTracer) EndSpan(span trace.Span, attempts int, err error) {
	span.End()
}
