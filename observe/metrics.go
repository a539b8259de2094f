package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricExecuteTotal       = "resilience.execute.total"
	MetricExecuteErrors      = "resilience.execute.errors"
	MetricExecuteDuration    = "resilience.execute.duration_ms"
	MetricExecuteAttempts    = "resilience.execute.attempts"
	MetricCircuitRejections  = "resilience.circuit.rejections"
	MetricCircuitTransitions = "resilience.circuit.transitions"
)

// Metrics records resilient call outcomes and circuit breaker activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records a call that reached the operation.
	RecordExecution(ctx context.Context, operation string, attempts int, duration time.Duration, err error)

	// RecordRejection records a call rejected by an open circuit.
	RecordRejection(ctx context.Context, operation string)

	// RecordTransition records a circuit state change.
	RecordTransition(ctx context.Context, operation, from, to string)
}

type metricsImpl struct {
	totalCount      metric.Int64Counter
	errorCount      metric.Int64Counter
	durationHist    metric.Float64Histogram
	attemptsHist    metric.Int64Histogram
	rejectionCount  metric.Int64Counter
	transitionCount metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.totalCount, err = meter.Int64Counter(MetricExecuteTotal,
		metric.WithDescription("Total number of resilient calls"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.errorCount, err = meter.Int64Counter(MetricExecuteErrors,
		metric.WithDescription("Resilient calls that ended in an error"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.durationHist, err = meter.Float64Histogram(MetricExecuteDuration,
		metric.WithDescription("Resilient call duration including backoff, in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.attemptsHist, err = meter.Int64Histogram(MetricExecuteAttempts,
		metric.WithDescription("Attempts made per resilient call"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}

	if m.rejectionCount, err = meter.Int64Counter(MetricCircuitRejections,
		metric.WithDescription("Calls rejected by an open circuit"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.transitionCount, err = meter.Int64Counter(MetricCircuitTransitions,
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, operation string, attempts int, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("resilience.operation", operation))

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
	m.attemptsHist.Record(ctx, int64(attempts), opt)
}

func (m *metricsImpl) RecordRejection(ctx context.Context, operation string) {
	m.rejectionCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resilience.operation", operation),
	))
}

func (m *metricsImpl) RecordTransition(ctx context.Context, operation, from, to string) {
	m.transitionCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resilience.operation", operation),
		attribute.String("resilience.circuit.from", from),
		attribute.String("resilience.circuit.to", to),
	))
}

type noopMetrics struct{}

func (noopMetrics) RecordExecution(ctx context.Context, operation string, attempts int, duration time.Duration, err error) {
}
func (noopMetrics) RecordRejection(ctx context.Context, operation string)              {}
func (noopMetrics) RecordTransition(ctx context.Context, operation, from, to string) {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}
