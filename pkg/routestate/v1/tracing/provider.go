package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TracerProvider gives access to the tracer used for lifecycle dispatch spans.
// It lets callers integrate with an existing OpenTelemetry setup.
type TracerProvider interface {
	// GetTracer returns a Tracer with the given name and options.
	GetTracer(name string, opts ...trace.TracerOption) trace.Tracer

	// Shutdown flushes buffered spans and releases exporter resources. It is
	// a no-op for providers that export nothing.
	Shutdown(ctx context.Context) error
}
