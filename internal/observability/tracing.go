// Package observability provides trace-context accessors used by
// structured logging (audit, session) to correlate log lines with an
// active OpenTelemetry span, without requiring this repo to run its
// own tracer provider or exporter (see DESIGN.md).
package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// GetTraceID returns the trace ID from the context as a string, or
// empty if no span is active.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// GetSpanID returns the span ID from the context as a string, or
// empty if no span is active.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
