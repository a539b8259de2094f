package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Attempt records one failed attempt. Delay is the wait computed after it;
// the final attempt's delay is recorded even though no wait follows it.
type Attempt struct {
	Number    int
	Delay     time.Duration
	Err       error
	Timestamp time.Time
}

// Result is the outcome of one Execute call.
type Result[T any] struct {
	// Value is set when Err is nil.
	Value T

	// Err is the terminal error: a *PermanentError, the last transient
	// error after exhaustion, an ErrCircuitOpen rejection, an
	// ErrInvalidPolicy violation, or the caller's context error.
	Err error

	// Attempts is the number of times the operation was invoked. It is zero
	// when the circuit breaker rejected the call.
	Attempts int

	TotalTime time.Duration

	// History lists failed attempts in order.
	History []Attempt

	CircuitBreakerTriggered bool
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Get returns the value or an error suitable for propagation. Permanent,
// circuit-open, invalid-policy and cancellation errors are returned as-is;
// exhausted retries are reported as ErrMaxRetriesExceeded wrapping the last
// error together with the attempt count.
func (r Result[T]) Get() (T, error) {
	if r.Err == nil {
		return r.Value, nil
	}

	var zero T
	switch {
	case IsPermanent(r.Err),
		r.CircuitBreakerTriggered,
		errors.Is(r.Err, ErrInvalidPolicy),
		errors.Is(r.Err, context.Canceled),
		errors.Is(r.Err, context.DeadlineExceeded) && !errors.Is(r.Err, ErrTimeout):
		return zero, r.Err
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, r.Attempts, r.Err)
}
