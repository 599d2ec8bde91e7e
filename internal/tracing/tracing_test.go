package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitDisabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(&buf, "organizer", "test", false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx, span := otel.Tracer("test").Start(context.Background(), "noop")
	span.End()
	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("disabled tracing wrote %q", buf.String())
	}
}

func TestInitExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(&buf, "organizer", "test", true)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx, span := otel.Tracer("test").Start(context.Background(), "Aggregate")
	id := TraceID(ctx)
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if id == "" {
		t.Error("TraceID empty for a sampled span")
	}
	out := buf.String()
	if !strings.Contains(out, "Aggregate") || !strings.Contains(out, id) {
		t.Errorf("exported spans missing name or trace id:\n%s", out)
	}
}

func TestTraceIDWithoutSpan(t *testing.T) {
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("TraceID = %q, want empty", id)
	}
}
