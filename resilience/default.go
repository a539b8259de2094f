package resilience

import (
	"context"
	"sync"
)

var (
	defaultOnce     sync.Once
	defaultExecutor *Executor
)

// Default returns the process-wide executor, created on first use with its
// own registry. Library code should prefer an injected *Executor; the
// default exists for call sites without a natural place to hold one.
func Default() *Executor {
	defaultOnce.Do(func() {
		defaultExecutor = NewExecutor()
	})
	return defaultExecutor
}

// Do runs op with the default executor.
func Do[T any](ctx context.Context, name string, policy Policy, op Operation[T]) Result[T] {
	return Execute(ctx, Default(), name, policy, op)
}

// GetCircuitState returns the default executor's circuit snapshot for name.
func GetCircuitState(name string) (CircuitState, bool) {
	return Default().CircuitState(name)
}

// ResetCircuit resets name in the default executor's registry.
func ResetCircuit(name string) {
	Default().ResetCircuit(name)
}

// ResetAllCircuits resets every circuit in the default executor's registry.
func ResetAllCircuits() {
	Default().ResetAllCircuits()
}
