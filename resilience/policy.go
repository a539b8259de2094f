package resilience

import (
	"fmt"
	"time"
)

// Default policy values applied by Resolve.
const (
	DefaultMaxAttempts             = 3
	DefaultInitialDelay            = time.Second
	DefaultMaxDelay                = 30 * time.Second
	DefaultBackoffMultiplier       = 2.0
	DefaultCircuitBreakerThreshold = 5
	DefaultCircuitBreakerTimeout   = 60 * time.Second
	DefaultOperationTimeout        = 30 * time.Second
)

// Policy configures retry, backoff, timeout and circuit breaking for one call.
// Zero or negative fields are replaced by their defaults at execution time.
type Policy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay is the delay after the first failed attempt.
	// Default: 1s
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay caps the delay between attempts.
	// Default: 30s
	MaxDelay time.Duration `yaml:"max_delay"`

	// BackoffMultiplier grows the delay after each failed attempt.
	// Default: 2.0
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`

	// DisableJitter turns off the additive random jitter.
	// Default: false (jitter enabled)
	DisableJitter bool `yaml:"disable_jitter"`

	// CircuitBreakerThreshold is the number of consecutive failed calls that
	// opens the circuit.
	// Default: 5
	CircuitBreakerThreshold int `yaml:"circuit_breaker_threshold"`

	// CircuitBreakerTimeout is how long an open circuit rejects calls before
	// admitting a probe.
	// Default: 60s
	CircuitBreakerTimeout time.Duration `yaml:"circuit_breaker_timeout"`

	// OperationTimeout bounds a single attempt.
	// Default: 30s
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

// Resolve returns a copy of p with every unset field replaced by its default.
func (p Policy) Resolve() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.BackoffMultiplier <= 0 {
		p.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if p.CircuitBreakerThreshold <= 0 {
		p.CircuitBreakerThreshold = DefaultCircuitBreakerThreshold
	}
	if p.CircuitBreakerTimeout <= 0 {
		p.CircuitBreakerTimeout = DefaultCircuitBreakerTimeout
	}
	if p.OperationTimeout <= 0 {
		p.OperationTimeout = DefaultOperationTimeout
	}
	return p
}

// Validate checks the invariants of a resolved policy.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.BackoffMultiplier < 1 {
		return fmt.Errorf("%w: backoff multiplier must be at least 1, got %g", ErrInvalidPolicy, p.BackoffMultiplier)
	}
	if p.InitialDelay > p.MaxDelay {
		return fmt.Errorf("%w: initial delay %s exceeds max delay %s", ErrInvalidPolicy, p.InitialDelay, p.MaxDelay)
	}
	return nil
}

// JitterEnabled reports whether jitter applies to this policy.
func (p Policy) JitterEnabled() bool {
	return !p.DisableJitter
}

// Override returns a copy of p where every set field of o replaces p's value.
func (p Policy) Override(o Policy) Policy {
	if o.MaxAttempts > 0 {
		p.MaxAttempts = o.MaxAttempts
	}
	if o.InitialDelay > 0 {
		p.InitialDelay = o.InitialDelay
	}
	if o.MaxDelay > 0 {
		p.MaxDelay = o.MaxDelay
	}
	if o.BackoffMultiplier > 0 {
		p.BackoffMultiplier = o.BackoffMultiplier
	}
	if o.DisableJitter {
		p.DisableJitter = true
	}
	if o.CircuitBreakerThreshold > 0 {
		p.CircuitBreakerThreshold = o.CircuitBreakerThreshold
	}
	if o.CircuitBreakerTimeout > 0 {
		p.CircuitBreakerTimeout = o.CircuitBreakerTimeout
	}
	if o.OperationTimeout > 0 {
		p.OperationTimeout = o.OperationTimeout
	}
	return p
}
