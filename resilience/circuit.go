package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonwraymond/retrykit/observe"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through freely.
	StateClosed State = iota
	// StateOpen means calls are rejected until the open timeout elapses.
	StateOpen
	// StateHalfOpen means a probe is testing whether the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitState is a snapshot of one operation name's breaker.
type CircuitState struct {
	State State

	// FailureCount is the number of consecutive failed calls since the last
	// reset.
	FailureCount int

	LastFailureTime time.Time

	// NextAttemptTime is when an open circuit admits its next probe. It is
	// only meaningful while State is StateOpen.
	NextAttemptTime time.Time
}

type circuit struct {
	CircuitState
	probes int
}

type transition struct {
	name     string
	from, to State
	state    CircuitState
}

// Registry holds one circuit breaker per operation name.
//
// Contract:
// - Concurrency: safe for concurrent use; all state for all names is
// guarded by a single mutex so concurrent failures are never lost.
// - Ownership: records are created lazily on the first failure and removed
// only by Reset or ResetAll. A name without a record is closed.
type Registry struct {
	clock         Clock
	logger        observe.Logger
	metrics       observe.Metrics
	onStateChange func(name string, from, to State)
	maxProbes     int

	mu       sync.Mutex
	circuits map[string]*circuit
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock sets the clock used for open timeouts.
func WithClock(c Clock) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithRegistryLogger logs transitions: error level on open, warn on
// half-open and info on close.
func WithRegistryLogger(l observe.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryMetrics counts state transitions.
func WithRegistryMetrics(m observe.Metrics) RegistryOption {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithStateChange registers a callback invoked after every transition. The
// callback runs outside the registry lock.
func WithStateChange(fn func(name string, from, to State)) RegistryOption {
	return func(r *Registry) {
		r.onStateChange = fn
	}
}

// WithHalfOpenMaxProbes limits how many callers a half-open circuit admits
// before a probe outcome is recorded. Zero, the default, admits every caller
// that asks while the circuit is half-open.
func WithHalfOpenMaxProbes(n int) RegistryOption {
	return func(r *Registry) {
		if n >= 0 {
			r.maxProbes = n
		}
	}
}

// NewRegistry creates an empty circuit breaker registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		clock:    SystemClock(),
		logger:   observe.NopLogger(),
		metrics:  observe.NopMetrics(),
		circuits: make(map[string]*circuit),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MayProceed reports whether a call for name is admitted. An open circuit
// whose timeout has elapsed moves to half-open on this check and admits
// the caller.
func (r *Registry) MayProceed(name string, policy Policy) bool {
	allowed, _ := r.admit(name, policy)
	return allowed
}

// admit is MayProceed that also reports whether the caller was admitted as
// a half-open probe.
func (r *Registry) admit(name string, policy Policy) (allowed, probe bool) {
	r.mu.Lock()
	c, ok := r.circuits[name]
	if !ok {
		r.mu.Unlock()
		return true, false
	}

	var changed *transition
	allowed = true

	switch c.State {
	case StateOpen:
		if r.clock.Now().Before(c.NextAttemptTime) {
			allowed = false
			break
		}
		c.State = StateHalfOpen
		c.probes = 1
		probe = true
		changed = &transition{name: name, from: StateOpen, to: StateHalfOpen, state: c.CircuitState}
	case StateHalfOpen:
		if r.maxProbes > 0 && c.probes >= r.maxProbes {
			allowed = false
			break
		}
		c.probes++
		probe = true
	}
	r.mu.Unlock()

	r.notify(changed)
	return allowed, probe
}

// ReleaseProbe returns a half-open admission whose call ended without an
// outcome, such as a cancelled probe, so another caller can take the slot.
// It is a no-op unless name's circuit is half-open with probes outstanding.
func (r *Registry) ReleaseProbe(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.circuits[name]; ok && c.State == StateHalfOpen && c.probes > 0 {
		c.probes--
	}
}

// RecordSuccess records a successful call. A half-open circuit closes and
// the failure count of a closed circuit resets to zero.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	c, ok := r.circuits[name]
	if !ok {
		r.mu.Unlock()
		return
	}

	var changed *transition
	from := c.State
	c.FailureCount = 0
	c.probes = 0
	if from != StateClosed {
		c.State = StateClosed
		c.NextAttemptTime = time.Time{}
		changed = &transition{name: name, from: from, to: StateClosed, state: c.CircuitState}
	}
	r.mu.Unlock()

	r.notify(changed)
}

// RecordFailure records a failed call, opening the circuit once the
// policy's threshold of consecutive failures is reached. A failed half-open
// probe reopens the circuit immediately.
func (r *Registry) RecordFailure(name string, policy Policy) {
	p := policy.Resolve()
	now := r.clock.Now()

	r.mu.Lock()
	c, ok := r.circuits[name]
	if !ok {
		c = &circuit{CircuitState: CircuitState{State: StateClosed}}
		r.circuits[name] = c
	}

	var changed *transition
	from := c.State
	c.FailureCount++
	c.LastFailureTime = now

	switch from {
	case StateClosed:
		if c.FailureCount >= p.CircuitBreakerThreshold {
			c.State = StateOpen
			c.NextAttemptTime = now.Add(p.CircuitBreakerTimeout)
		}
	case StateHalfOpen:
		c.State = StateOpen
		c.probes = 0
		c.NextAttemptTime = now.Add(p.CircuitBreakerTimeout)
	case StateOpen:
		// A call admitted before the circuit opened failed late.
		c.NextAttemptTime = now.Add(p.CircuitBreakerTimeout)
	}
	if c.State != from {
		changed = &transition{name: name, from: from, to: c.State, state: c.CircuitState}
	}
	r.mu.Unlock()

	r.notify(changed)
}

// State returns a snapshot of name's circuit. The boolean is false when no
// record exists, which is equivalent to a closed circuit.
func (r *Registry) State(name string) (CircuitState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.circuits[name]
	if !ok {
		return CircuitState{}, false
	}
	return c.CircuitState, true
}

// Reset deletes name's record, reverting it to an implicit closed circuit.
// Resetting an unknown name is a no-op.
func (r *Registry) Reset(name string) {
	r.mu.Lock()
	delete(r.circuits, name)
	r.mu.Unlock()
}

// ResetAll deletes every record.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	r.circuits = make(map[string]*circuit)
	r.mu.Unlock()
}

// Names returns the operation names with a record, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.circuits))
	for name := range r.circuits {
		names = append(names, name)
	}
	r.mu.Unlock()

	sort.Strings(names)
	return names
}

// Snapshot returns the state of every recorded circuit.
func (r *Registry) Snapshot() map[string]CircuitState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]CircuitState, len(r.circuits))
	for name, c := range r.circuits {
		out[name] = c.CircuitState
	}
	return out
}

func (r *Registry) notify(t *transition) {
	if t == nil {
		return
	}

	ctx := context.Background()
	fields := []observe.Field{
		{Key: "operation", Value: t.name},
		{Key: "from", Value: t.from.String()},
		{Key: "to", Value: t.to.String()},
		{Key: "failure_count", Value: t.state.FailureCount},
	}

	switch t.to {
	case StateOpen:
		fields = append(fields, observe.Field{Key: "next_attempt_time", Value: t.state.NextAttemptTime.UTC().Format(time.RFC3339Nano)})
		r.logger.Error(ctx, "circuit breaker opened", fields...)
	case StateHalfOpen:
		r.logger.Warn(ctx, "circuit breaker half-open", fields...)
	case StateClosed:
		r.logger.Info(ctx, "circuit breaker closed", fields...)
	}

	r.metrics.RecordTransition(ctx, t.name, t.from.String(), t.to.String())

	if r.onStateChange != nil {
		r.onStateChange(t.name, t.from, t.to)
	}
}
