package observe

// Instrumentation bundles the telemetry consumed by the resilience executor
// and circuit breaker registry. Nil members are treated as no-ops by
// consumers.
type Instrumentation struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// NewInstrumentation creates an Instrumentation, substituting no-ops for
// nil arguments.
func NewInstrumentation(tracer Tracer, metrics Metrics, logger Logger) Instrumentation {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return Instrumentation{Tracer: tracer, Metrics: metrics, Logger: logger}
}

// NopInstrumentation returns an Instrumentation that records nothing.
func NopInstrumentation() Instrumentation {
	return NewInstrumentation(nil, nil, nil)
}

// InstrumentationFromObserver builds an Instrumentation from an Observer's
// tracer, meter and logger.
func InstrumentationFromObserver(obs Observer) (Instrumentation, error) {
	if obs == nil {
		return Instrumentation{}, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return Instrumentation{}, err
	}

	return NewInstrumentation(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
