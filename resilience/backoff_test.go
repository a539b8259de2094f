package resilience

import (
	"errors"
	"testing"
	"time"
)

func noJitter() float64 { return 0 }

func TestComputeDelay_Exponential(t *testing.T) {
	p := Policy{InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{50, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := computeDelay(tt.attempt, p, nil, noJitter); got != tt.want {
			t.Errorf("attempt %d: delay = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestComputeDelay_DisableJitter(t *testing.T) {
	p := Policy{InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2, DisableJitter: true}
	for i := 0; i < 50; i++ {
		if got := ComputeDelay(2, p, nil); got != 2*time.Second {
			t.Fatalf("ComputeDelay() = %v, want exactly 2s", got)
		}
	}
}

func TestComputeDelay_JitterBounds(t *testing.T) {
	p := Policy{InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2}
	for i := 0; i < 1000; i++ {
		got := ComputeDelay(1, p, nil)
		if got < time.Second || got > 1300*time.Millisecond {
			t.Fatalf("ComputeDelay() = %v, want within [1s, 1.3s]", got)
		}
		if got%time.Millisecond != 0 {
			t.Fatalf("ComputeDelay() = %v, want whole milliseconds", got)
		}
	}
}

func TestComputeDelay_JitterAppliedAfterClamp(t *testing.T) {
	p := Policy{InitialDelay: time.Second, MaxDelay: 2 * time.Second, BackoffMultiplier: 2}
	got := computeDelay(10, p, nil, func() float64 { return 1 })
	if got != 2600*time.Millisecond {
		t.Errorf("delay = %v, want 2.6s (max delay plus 30%%)", got)
	}
}

func TestComputeDelay_Floors(t *testing.T) {
	p := Policy{InitialDelay: 1500 * time.Millisecond, MaxDelay: time.Minute, BackoffMultiplier: 1.5}

	if got := computeDelay(3, p, nil, noJitter); got != 3375*time.Millisecond {
		t.Errorf("attempt 3 = %v, want 3.375s", got)
	}

	p = Policy{InitialDelay: time.Second, MaxDelay: time.Minute, BackoffMultiplier: 2}
	if got := computeDelay(1, p, nil, func() float64 { return 0.3333 }); got != 1099*time.Millisecond {
		t.Errorf("jittered delay = %v, want floored 1.099s", got)
	}
}

func TestComputeDelay_RetryAfter(t *testing.T) {
	p := Policy{InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2}
	base := errors.New("429")

	tests := []struct {
		name    string
		attempt int
		hint    time.Duration
		want    time.Duration
	}{
		{"hint above base", 1, 10 * time.Second, 10 * time.Second},
		{"hint below base", 3, 100 * time.Millisecond, 4 * time.Second},
		{"hint above max is clamped", 1, time.Minute, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeDelay(tt.attempt, p, WithRetryAfter(base, tt.hint), noJitter)
			if got != tt.want {
				t.Errorf("delay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDelay_DefaultsForZeroPolicy(t *testing.T) {
	if got := computeDelay(1, Policy{}, nil, noJitter); got != DefaultInitialDelay {
		t.Errorf("zero policy delay = %v, want %v", got, DefaultInitialDelay)
	}
}
