package resilience

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecuteBatch_Order(t *testing.T) {
	e := NewExecutor()
	ops := make([]Operation[int], 12)
	for i := range ops {
		ops[i] = func(context.Context) (int, error) {
			time.Sleep(time.Duration(12-i) * time.Millisecond)
			return i * i, nil
		}
	}

	got, err := ExecuteBatch(context.Background(), e, "embed", fastPolicy(1), ops, BatchOptions{Size: 5, Pause: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteBatch() error = %v", err)
	}
	want := make([]int, 12)
	for i := range want {
		want[i] = i * i
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExecuteBatch() = %v, want %v", got, want)
	}
}

func TestExecuteBatch_ConcurrencyBoundedBySize(t *testing.T) {
	e := NewExecutor()
	var inFlight, peak atomic.Int32

	ops := make([]Operation[struct{}], 9)
	for i := range ops {
		ops[i] = func(context.Context) (struct{}, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		}
	}

	if _, err := ExecuteBatch(context.Background(), e, "op", fastPolicy(1), ops, BatchOptions{Size: 3, Pause: time.Millisecond}); err != nil {
		t.Fatalf("ExecuteBatch() error = %v", err)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", peak.Load())
	}
}

func TestExecuteBatch_FailFast(t *testing.T) {
	e := NewExecutor()
	var ran atomic.Int32

	ops := make([]Operation[int], 6)
	for i := range ops {
		ops[i] = func(context.Context) (int, error) {
			ran.Add(1)
			if i == 1 {
				return 0, errors.New("400 bad request")
			}
			return i, nil
		}
	}

	got, err := ExecuteBatch(context.Background(), e, "op", fastPolicy(2), ops, BatchOptions{Size: 2, Pause: time.Millisecond})
	if err == nil {
		t.Fatal("ExecuteBatch() error = nil, want failure")
	}
	if got != nil {
		t.Errorf("ExecuteBatch() results = %v, want nil on failure", got)
	}
	if !IsPermanent(err) || !strings.Contains(err.Error(), "batch item 1") {
		t.Errorf("error = %v, want the permanent failure of item 1", err)
	}
	if n := ran.Load(); n > 2 {
		t.Errorf("ran %d operations, want later batches skipped", n)
	}
}

func TestExecuteBatch_Empty(t *testing.T) {
	got, err := ExecuteBatch[int](context.Background(), NewExecutor(), "op", fastPolicy(1), nil, BatchOptions{})
	if err != nil || len(got) != 0 {
		t.Errorf("ExecuteBatch(nil) = %v, %v", got, err)
	}
}

func TestBatchOptions_Defaults(t *testing.T) {
	o := BatchOptions{}.withDefaults()
	if o.Size != 5 || o.Pause != 100*time.Millisecond {
		t.Errorf("defaults = %+v", o)
	}
}
