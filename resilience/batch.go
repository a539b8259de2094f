package resilience

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchOptions configures ExecuteBatch.
type BatchOptions struct {
	// Size is the number of operations run concurrently per batch.
	// Default: 5
	Size int

	// Pause is the wait between consecutive batches.
	// Default: 100ms
	Pause time.Duration
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Size <= 0 {
		o.Size = 5
	}
	if o.Pause <= 0 {
		o.Pause = 100 * time.Millisecond
	}
	return o
}

// ExecuteBatch runs each operation under retry with the same name and
// policy. Operations run concurrently within a batch of opts.Size; batches
// run one after another with opts.Pause between them. Results are returned
// in input order.
//
// The batch fails fast: the first operation whose retries do not recover
// cancels the rest of its batch, skips the remaining batches, and is
// returned as the error (shaped by Result.Get). Callers wanting partial
// results should make each operation absorb its own failure.
func ExecuteBatch[T any](ctx context.Context, e *Executor, name string, policy Policy, ops []Operation[T], opts BatchOptions) ([]T, error) {
	opts = opts.withDefaults()
	results := make([]T, len(ops))

	for start := 0; start < len(ops); start += opts.Size {
		if start > 0 {
			if err := sleep(ctx, opts.Pause); err != nil {
				return nil, err
			}
		}

		end := min(start+opts.Size, len(ops))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				value, err := Execute(gctx, e, name, policy, ops[i]).Get()
				if err != nil {
					return fmt.Errorf("resilience: batch item %d: %w", i, err)
				}
				results[i] = value
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}
