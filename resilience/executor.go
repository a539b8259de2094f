package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/retrykit/observe"
)

// Operation is a unit of remote work. It receives a context that is
// cancelled when the attempt times out or the caller gives up, and it has
// no knowledge of whether it is being retried.
type Operation[T any] func(ctx context.Context) (T, error)

// Executor runs operations under retry, backoff, per-attempt timeouts and a
// circuit breaker keyed by operation name.
//
// Contract:
// - Concurrency: safe for concurrent use. Calls sharing an operation name
// share its circuit; attempts within one call never overlap.
// - Errors: Execute never panics on operation failure; every outcome is
// reported through Result.
type Executor struct {
	registry   *Registry
	classifier Classifier
	clock      Clock
	tracer     observe.Tracer
	metrics    observe.Metrics
	logger     observe.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRegistry sets the circuit breaker registry. Executors sharing a
// registry share circuit state.
func WithRegistry(r *Registry) ExecutorOption {
	return func(e *Executor) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithClassifier replaces the default pattern classifier.
func WithClassifier(c Classifier) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithExecutorClock sets the clock used for history timestamps and total
// time.
func WithExecutorClock(c Clock) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithInstrumentation attaches tracing, metrics and logging.
func WithInstrumentation(in observe.Instrumentation) ExecutorOption {
	return func(e *Executor) {
		if in.Tracer != nil {
			e.tracer = in.Tracer
		}
		if in.Metrics != nil {
			e.metrics = in.Metrics
		}
		if in.Logger != nil {
			e.logger = in.Logger
		}
	}
}

// WithLogger attaches a logger only.
func WithLogger(l observe.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates an executor. Without options it owns a fresh registry,
// uses the default classifier and records nothing.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		classifier: DefaultClassifier(),
		clock:      SystemClock(),
		tracer:     observe.NopTracer(),
		metrics:    observe.NopMetrics(),
		logger:     observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry(
			WithClock(e.clock),
			WithRegistryLogger(e.logger),
			WithRegistryMetrics(e.metrics),
		)
	}
	return e
}

// Registry returns the executor's circuit breaker registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// CircuitState returns the circuit snapshot for name.
func (e *Executor) CircuitState(name string) (CircuitState, bool) {
	return e.registry.State(name)
}

// ResetCircuit reverts name to an implicit closed circuit.
func (e *Executor) ResetCircuit(name string) {
	e.registry.Reset(name)
}

// ResetAllCircuits reverts every circuit to closed.
func (e *Executor) ResetAllCircuits() {
	e.registry.ResetAll()
}

// Do runs an operation that produces no value.
func (e *Executor) Do(ctx context.Context, name string, policy Policy, op func(context.Context) error) Result[struct{}] {
	return Execute(ctx, e, name, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
}

// Execute runs op under policy, using name as the circuit breaker key.
//
// Attempts run one at a time, each bounded by policy.OperationTimeout. A
// timed-out attempt is abandoned, not stopped: op's context is cancelled,
// but if op ignores it the call keeps running in the background while the
// executor moves on. Operations must therefore tolerate being abandoned.
//
// The circuit breaker sees one outcome per call, not per attempt. Caller
// cancellation ends the call with the context error and records no outcome.
func Execute[T any](ctx context.Context, e *Executor, name string, policy Policy, op Operation[T]) Result[T] {
	if e == nil {
		e = Default()
	}

	start := e.clock.Now()
	ctx, span := e.tracer.StartSpan(ctx, name)

	res := execute(ctx, e, name, policy, op)
	res.TotalTime = e.clock.Now().Sub(start)

	e.tracer.EndSpan(span, res.Attempts, res.Err)
	if res.CircuitBreakerTriggered {
		e.metrics.RecordRejection(ctx, name)
	} else {
		e.metrics.RecordExecution(ctx, name, res.Attempts, res.TotalTime, res.Err)
	}
	return res
}

func execute[T any](ctx context.Context, e *Executor, name string, policy Policy, op Operation[T]) Result[T] {
	p := policy.Resolve()
	if err := p.Validate(); err != nil {
		return Result[T]{Err: err}
	}

	allowed, probe := e.registry.admit(name, p)
	if !allowed {
		e.logger.Warn(ctx, "call rejected by open circuit",
			observe.Field{Key: "operation", Value: name},
		)
		return Result[T]{
			Err:                     fmt.Errorf("%w for %s", ErrCircuitOpen, name),
			CircuitBreakerTriggered: true,
		}
	}

	span := trace.SpanFromContext(ctx)
	var (
		history []Attempt
		lastErr error
	)

	// A cancelled call records no outcome, so a probe it held goes back.
	cancelled := func(err error, attempts int) Result[T] {
		if probe {
			e.registry.ReleaseProbe(name)
		}
		return Result[T]{Err: err, Attempts: attempts, History: history}
	}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return cancelled(err, attempt-1)
		}

		value, err := runAttempt(ctx, p.OperationTimeout, op)
		if err == nil {
			e.registry.RecordSuccess(name)
			return Result[T]{Value: value, Attempts: attempt, History: history}
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return cancelled(err, attempt)
		}
		lastErr = err

		category := e.classifier.Classify(err)
		if !category.Retryable() {
			e.registry.RecordFailure(name, p)
			span.AddEvent("attempt.failed", trace.WithAttributes(
				attribute.Int("resilience.attempt", attempt),
				attribute.String("resilience.category", category.String()),
			))
			e.logger.Error(ctx, "permanent failure, not retrying",
				observe.Field{Key: "operation", Value: name},
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "error", Value: err.Error()},
			)
			return Result[T]{Err: Permanent(err), Attempts: attempt, History: history}
		}

		delay := ComputeDelay(attempt, p, err)
		history = append(history, Attempt{
			Number:    attempt,
			Delay:     delay,
			Err:       err,
			Timestamp: e.clock.Now(),
		})
		span.AddEvent("attempt.failed", trace.WithAttributes(
			attribute.Int("resilience.attempt", attempt),
			attribute.String("resilience.category", category.String()),
			attribute.Int64("resilience.delay_ms", delay.Milliseconds()),
		))

		if attempt == p.MaxAttempts {
			e.registry.RecordFailure(name, p)
			break
		}

		e.logger.Warn(ctx, "attempt failed, retrying",
			observe.Field{Key: "operation", Value: name},
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "max_attempts", Value: p.MaxAttempts},
			observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
			observe.Field{Key: "category", Value: category.String()},
			observe.Field{Key: "error", Value: err.Error()},
		)

		if err := sleep(ctx, delay); err != nil {
			return cancelled(err, attempt)
		}
	}

	e.logger.Error(ctx, "retries exhausted",
		observe.Field{Key: "operation", Value: name},
		observe.Field{Key: "attempts", Value: p.MaxAttempts},
		observe.Field{Key: "error", Value: lastErr.Error()},
	)
	return Result[T]{Err: lastErr, Attempts: p.MaxAttempts, History: history}
}

// sleep waits for d or until ctx ends, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
