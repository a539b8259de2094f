package resilience

import (
	"context"
	"fmt"
	"time"
)

type outcome[T any] struct {
	value T
	err   error
}

// runAttempt races op against timeout. The operation receives a context that
// is cancelled when the timeout fires, but runAttempt does not wait for it to
// return: an operation that ignores its context keeps running in the
// background after the attempt has been abandoned.
//
// A panic inside op is recovered and returned as an error wrapping ErrPanic.
// When the parent context ends first, its error is returned unchanged so the
// caller can tell cancellation apart from an attempt timeout.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: coercePanic(r)}
			}
		}()
		value, err := op(attemptCtx)
		done <- outcome[T]{value: value, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		if o.err != nil && ctx.Err() == nil && attemptCtx.Err() != nil {
			// op noticed the attempt deadline before we did.
			return o.value, timeoutError(timeout)
		}
		return o.value, o.err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, timeoutError(timeout)
	}
}

func timeoutError(timeout time.Duration) error {
	return fmt.Errorf("%w after %s", ErrTimeout, timeout)
}

func coercePanic(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}
