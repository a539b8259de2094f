package resilience

import (
	"errors"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker open")

	// ErrMaxRetriesExceeded is returned by Result.Get when every attempt failed.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrTimeout is returned when a single attempt exceeds the operation timeout.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrInvalidPolicy is returned when a resolved policy violates its invariants.
	ErrInvalidPolicy = errors.New("resilience: invalid policy")

	// ErrPanic wraps a value recovered from a panicking operation.
	ErrPanic = errors.New("resilience: operation panicked")
)

// Category classifies a failure for retry purposes.
type Category int

const (
	// CategoryTransient marks failures expected to resolve on their own.
	CategoryTransient Category = iota
	// CategoryPermanent marks failures that retrying cannot fix.
	CategoryPermanent
	// CategoryUnknown marks failures of unknown nature. They are retried.
	CategoryUnknown
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategoryUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Retryable reports whether failures of this category are eligible for retry.
func (c Category) Retryable() bool {
	return c != CategoryPermanent
}

// RetriableError is produced by callers with privileged knowledge of a
// failure, such as an HTTP client that parsed a 429 response. Its Category is
// authoritative for classification.
type RetriableError struct {
	Err        error
	Category   Category
	StatusCode int

	// RetryAfter is the server-supplied wait hint. Zero means no hint.
	RetryAfter time.Duration
}

func (e *RetriableError) Error() string {
	if e.Err == nil {
		return "resilience: " + e.Category.String() + " error"
	}
	return e.Err.Error()
}

func (e *RetriableError) Unwrap() error {
	return e.Err
}

// PermanentError signals that an operation must not be retried.
type PermanentError struct {
	Err        error
	StatusCode int
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "resilience: permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that it is never retried. A nil err yields nil and
// an existing *PermanentError is returned unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	var pe *PermanentError
	if errors.As(err, &pe) {
		return err
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a *PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// WithRetryAfter wraps err as a transient *RetriableError carrying a
// server-supplied wait hint.
func WithRetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetriableError{Err: err, Category: CategoryTransient, RetryAfter: after}
}

// RetryAfterHint extracts the server-supplied wait hint from err, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var re *RetriableError
	if errors.As(err, &re) && re.RetryAfter > 0 {
		return re.RetryAfter, true
	}
	return 0, false
}
