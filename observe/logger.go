package observe

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel orders log entries by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// ParseLogLevel maps a level name to a LogLevel. Matching ignores case and
// unknown names map to info.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	for lvl, name := range levelNames {
		if name == s {
			return LogLevel(lvl)
		}
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// jsonLogger writes one JSON object per line. Loggers derived through With
// share the writer and its lock.
type jsonLogger struct {
	min    LogLevel
	out    io.Writer
	mu     *sync.Mutex
	fields map[string]any
}

// NewLogger creates a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{
		min:    ParseLogLevel(level),
		out:    w,
		mu:     new(sync.Mutex),
		fields: map[string]any{},
	}
}

func (l *jsonLogger) With(fields ...Field) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = fieldValue(f)
	}
	return &jsonLogger{min: l.min, out: l.out, mu: l.mu, fields: merged}
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

// write emits an entry. When ctx carries a valid span context the entry
// gets trace_id and span_id so it can be joined with the execution span.
func (l *jsonLogger) write(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.min {
		return
	}

	entry := make(map[string]any, len(l.fields)+len(fields)+5)
	for k, v := range l.fields {
		entry[k] = v
	}
	for _, f := range fields {
		entry[f.Key] = fieldValue(f)
	}
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			entry["trace_id"] = sc.TraceID().String()
			entry["span_id"] = sc.SpanID().String()
		}
	}
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	_, _ = l.out.Write(line)
	l.mu.Unlock()
}

// RedactedFields lists field keys whose values are replaced with
// "[REDACTED]". Matching ignores case. Failed calls to remote APIs and
// databases tend to echo credentials and payloads.
var RedactedFields = []string{
	"api_key",
	"apikey",
	"authorization",
	"credential",
	"dsn",
	"input",
	"inputs",
	"password",
	"prompt",
	"secret",
	"token",
}

var redactedKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(RedactedFields))
	for _, k := range RedactedFields {
		m[strings.ToLower(k)] = struct{}{}
	}
	return m
}()

// fieldValue masks credential-looking keys and renders errors as their
// message, since error values marshal to {}.
func fieldValue(f Field) any {
	if _, ok := redactedKeys[strings.ToLower(f.Key)]; ok {
		return "[REDACTED]"
	}
	if err, ok := f.Value.(error); ok && err != nil {
		return err.Error()
	}
	return f.Value
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...Field) {}
func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (l nopLogger) With(...Field) Logger                  { return l }

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}
