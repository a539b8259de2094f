package resilience

import (
	"context"
	"errors"
	"testing"
)

func TestDefault(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() returned different executors")
	}

	p := fastPolicy(1)
	p.CircuitBreakerThreshold = 1
	t.Cleanup(ResetAllCircuits)

	res := Do(context.Background(), "default-test", p, func(context.Context) (int, error) {
		return 0, errors.New("503")
	})
	if res.OK() {
		t.Fatal("Do() succeeded, want failure")
	}

	st, ok := GetCircuitState("default-test")
	if !ok || st.State != StateOpen {
		t.Errorf("GetCircuitState() = %+v, %v; want open", st, ok)
	}

	ResetCircuit("default-test")
	if _, ok := GetCircuitState("default-test"); ok {
		t.Error("ResetCircuit left a record")
	}
}
