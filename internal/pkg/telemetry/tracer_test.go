package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProviderIsGlobal(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := newProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "loop.attempt")
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 || ended[0].Name() != "loop.attempt" {
		t.Fatalf("expected one recorded span, got %d", len(ended))
	}
}
