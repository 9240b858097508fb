// Package tracing builds the OpenTelemetry tracer provider of the state
// manager and holds small span helpers shared by the lifecycle dispatch.
package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the state manager's spans.
const TracerName = "github.com/gxo-labs/routestate"

// SpanName returns the span name of a dispatch for trigger.
func SpanName(trigger string) string { return "routestate." + trigger }

// RunAttributes returns the attributes identifying a manager run.
func RunAttributes(runID string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("routestate.run_id", runID)}
}

// RecordError marks span as failed with err. A nil err leaves it untouched.
func RecordError(span oteltrace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
