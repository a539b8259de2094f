package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonwraymond/retrykit/resilience"
)

// CircuitChecker reports the circuit breakers held by a resilience
// registry. Any open circuit makes it unhealthy; any half-open circuit makes
// it degraded. Names without a record are closed and are not listed.
type CircuitChecker struct {
	name     string
	registry *resilience.Registry
}

// NewCircuitChecker creates a checker named "circuits" for registry.
func NewCircuitChecker(registry *resilience.Registry) *CircuitChecker {
	return &CircuitChecker{name: "circuits", registry: registry}
}

// Named returns a copy of c registered under name, for services holding
// more than one registry.
func (c *CircuitChecker) Named(name string) *CircuitChecker {
	return &CircuitChecker{name: name, registry: c.registry}
}

func (c *CircuitChecker) Name() string {
	return c.name
}

// Check reports every recorded circuit. Details are keyed by operation name.
func (c *CircuitChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context done", err)
	}

	snapshot := c.registry.Snapshot()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make(map[string]any, len(snapshot))
	var open, halfOpen []string
	for _, name := range names {
		st := snapshot[name]
		details[name] = circuitDetails(st)

		switch st.State {
		case resilience.StateOpen:
			open = append(open, name)
		case resilience.StateHalfOpen:
			halfOpen = append(halfOpen, name)
		}
	}

	switch {
	case len(open) > 0:
		return Unhealthy("circuits open: "+strings.Join(open, ", "), resilience.ErrCircuitOpen).
			WithDetails(details)
	case len(halfOpen) > 0:
		return Degraded("circuits half-open: " + strings.Join(halfOpen, ", ")).
			WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%d circuits closed", len(names))).
			WithDetails(details)
	}
}

func circuitDetails(st resilience.CircuitState) map[string]any {
	d := map[string]any{
		"state":         st.State.String(),
		"failure_count": st.FailureCount,
	}
	if !st.LastFailureTime.IsZero() {
		d["last_failure"] = st.LastFailureTime.UTC().Format(time.RFC3339)
	}
	if st.State == resilience.StateOpen {
		d["next_attempt"] = st.NextAttemptTime.UTC().Format(time.RFC3339)
	}
	return d
}
