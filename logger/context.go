package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// WithContext binds the trace and span ids of the span in ctx, if any
func (l *Logger) WithContext(ctx context.Context) *Entry {
	return (&Entry{l: l}).WithContext(ctx)
}

// WithContext adds trace_id and span_id fields from the span in ctx. The
// entry is returned unchanged when ctx carries no valid span.
func (e *Entry) WithContext(ctx context.Context) *Entry {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return e
	}
	return e.With(
		String("trace_id", sc.TraceID().String()),
		String("span_id", sc.SpanID().String()),
		Bool("trace_sampled", sc.IsSampled()),
	)
}
