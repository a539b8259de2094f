package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpanName(t *testing.T) {
	if got := SpanName("db:findUnique-user"); got != "resilience.execute db:findUnique-user" {
		t.Errorf("SpanName() = %q", got)
	}
}

func TestTracer_Success(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), "llm:complete")
	tr.EndSpan(span, 2, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "resilience.execute llm:complete" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
	if v, ok := attrValue(s.Attributes(), "resilience.attempts"); !ok || v.AsInt64() != 2 {
		t.Errorf("resilience.attempts = %v, want 2", v)
	}
	if v, ok := attrValue(s.Attributes(), "resilience.operation"); !ok || v.AsString() != "llm:complete" {
		t.Errorf("resilience.operation = %v, want llm:complete", v)
	}
}

func TestTracer_Error(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), "db")
	tr.EndSpan(span, 5, errors.New("connection refused"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "connection refused" {
		t.Errorf("status description = %q", s.Status().Description)
	}
	if v, _ := attrValue(s.Attributes(), "resilience.error"); !v.AsBool() {
		t.Error("resilience.error = false, want true")
	}
	if len(s.Events()) == 0 {
		t.Error("expected error event on span")
	}
}

func TestNopTracer(t *testing.T) {
	tr := NopTracer()
	ctx, span := tr.StartSpan(context.Background(), "x")
	if ctx == nil || span == nil {
		t.Fatal("StartSpan returned nil")
	}
	tr.EndSpan(span, 1, errors.New("e"))
	if span.IsRecording() {
		t.Error("noop span should not record")
	}
}
