// Package observe provides the logging, tracing and metrics used by the
// resilience executor and circuit breaker registry.
//
// It is a pure instrumentation library. An Observer owns the OpenTelemetry
// providers built from Config; an Instrumentation bundles the Tracer,
// Metrics and Logger that the executor consumes. Every component has a
// no-op form so instrumentation is optional.
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "ingest",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "warn"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer obs.Shutdown(ctx)
//
//	in, err := observe.InstrumentationFromObserver(obs)
//	if err != nil {
//	    return err
//	}
//	exec := resilience.NewExecutor(resilience.WithInstrumentation(in))
package observe
