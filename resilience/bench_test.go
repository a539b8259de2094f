package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// BenchmarkExecute_Success measures the happy path overhead.
func BenchmarkExecute_Success(b *testing.B) {
	e := NewExecutor()
	ctx := context.Background()
	p := fastPolicy(3)
	op := func(context.Context) (int, error) { return 1, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Execute(ctx, e, "bench", p, op)
	}
}

// BenchmarkExecute_Rejected measures the open-circuit fast path.
func BenchmarkExecute_Rejected(b *testing.B) {
	e := NewExecutor()
	ctx := context.Background()
	p := fastPolicy(1)
	p.CircuitBreakerThreshold = 1
	p.CircuitBreakerTimeout = time.Hour

	Execute(ctx, e, "bench", p, func(context.Context) (int, error) { return 0, errors.New("503") })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Execute(ctx, e, "bench", p, func(context.Context) (int, error) { return 1, nil })
	}
}

func BenchmarkComputeDelay(b *testing.B) {
	p := EmbeddingAPIPolicy()
	for i := 0; i < b.N; i++ {
		_ = ComputeDelay(i%5+1, p, nil)
	}
}

func BenchmarkClassify(b *testing.B) {
	err := errors.New("upstream request failed: unexpected EOF")
	for i := 0; i < b.N; i++ {
		_ = Classify(err)
	}
}

// BenchmarkRegistry_Parallel measures lock contention on one circuit.
func BenchmarkRegistry_Parallel(b *testing.B) {
	r := NewRegistry()
	p := Policy{CircuitBreakerThreshold: 1 << 30}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if r.MayProceed("bench", p) {
				r.RecordFailure("bench", p)
			}
		}
	})
}
