package observe

import "errors"

// Configuration errors. Config.Validate wraps them with the offending value.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct lies outside [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates a tracing exporter name the
	// exporters package cannot build.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter indicates a metrics exporter name the
	// exporters package cannot build.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel indicates a log level other than debug, info, warn
	// or error.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")
)

// Runtime errors.
var (
	// ErrNilObserver indicates InstrumentationFromObserver was given a nil
	// Observer.
	ErrNilObserver = errors.New("observe: observer is nil")
)
