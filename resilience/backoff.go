package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// jitterFraction bounds the additive jitter as a fraction of the clamped delay.
const jitterFraction = 0.3

// ComputeDelay returns the wait before the attempt following attempt, which
// is the 1-indexed number of the attempt that just failed.
//
// The base delay is InitialDelay * BackoffMultiplier^(attempt-1). A
// Retry-After hint carried by lastErr raises the base but never lowers it.
// The result is clamped to MaxDelay after the hint is applied and, when
// jitter is enabled, grows by a uniform random amount of up to 30% of the
// clamped value. Delays are whole milliseconds.
func ComputeDelay(attempt int, policy Policy, lastErr error) time.Duration {
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	return computeDelay(attempt, policy, lastErr, rand.Float64)
}

func computeDelay(attempt int, policy Policy, lastErr error, random func() float64) time.Duration {
	p := policy.Resolve()
	if attempt < 1 {
		attempt = 1
	}

	delayMs := float64(p.InitialDelay.Milliseconds()) * math.Pow(p.BackoffMultiplier, float64(attempt-1))

	if hint, ok := RetryAfterHint(lastErr); ok {
		delayMs = math.Max(delayMs, float64(hint.Milliseconds()))
	}

	maxMs := float64(p.MaxDelay.Milliseconds())
	if delayMs > maxMs || math.IsNaN(delayMs) {
		delayMs = maxMs
	}

	if p.JitterEnabled() && delayMs > 0 {
		delayMs += random() * jitterFraction * delayMs
	}

	return time.Duration(math.Floor(delayMs)) * time.Millisecond
}
