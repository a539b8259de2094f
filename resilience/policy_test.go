package resilience

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPolicy_Resolve(t *testing.T) {
	got := Policy{}.Resolve()
	want := Policy{
		MaxAttempts:             3,
		InitialDelay:            time.Second,
		MaxDelay:                30 * time.Second,
		BackoffMultiplier:       2,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
		OperationTimeout:        30 * time.Second,
	}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
	if !got.JitterEnabled() {
		t.Error("jitter should be enabled by default")
	}

	custom := Policy{MaxAttempts: -1, InitialDelay: 5 * time.Millisecond, DisableJitter: true}.Resolve()
	if custom.MaxAttempts != 3 || custom.InitialDelay != 5*time.Millisecond || custom.JitterEnabled() {
		t.Errorf("Resolve() did not keep set fields: %+v", custom)
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Policy
		wantErr string
	}{
		{"defaults", Policy{}.Resolve(), ""},
		{"zero attempts", Policy{MaxAttempts: 0, BackoffMultiplier: 2}, "max attempts"},
		{"shrinking multiplier", Policy{MaxAttempts: 1, BackoffMultiplier: 0.5}, "backoff multiplier"},
		{"initial above max", Policy{MaxAttempts: 1, BackoffMultiplier: 1, InitialDelay: 2 * time.Second, MaxDelay: time.Second}, "initial delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidPolicy) {
				t.Fatalf("Validate() = %v, want ErrInvalidPolicy", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestPolicy_Override(t *testing.T) {
	base := DatabasePolicy()
	got := base.Override(Policy{MaxAttempts: 7, OperationTimeout: 5 * time.Second, DisableJitter: true})

	if got.MaxAttempts != 7 || got.OperationTimeout != 5*time.Second || !got.DisableJitter {
		t.Errorf("Override() did not apply set fields: %+v", got)
	}
	if got.InitialDelay != base.InitialDelay || got.CircuitBreakerThreshold != base.CircuitBreakerThreshold {
		t.Errorf("Override() changed unset fields: %+v", got)
	}
	if base.MaxAttempts != 5 {
		t.Error("Override() mutated the receiver")
	}
}
