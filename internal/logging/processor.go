package logging

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Processor is one step of the enrichment chain. Steps only add fields;
// every step must succeed for any well-formed record, so a missing
// source (no correlation id, no recording span) means omitted fields,
// never an error.
type Processor func(ctx context.Context, r *Record)

// DefaultProcessors returns the canonical enrichment chain, in order.
func DefaultProcessors() []Processor {
	return []Processor{
		MergeContextFields,
		AddLevel,
		AddLoggerName,
		FormatArgs,
		AddRequestID,
		AddTraceContext,
		Timestamper,
		StackInfo,
	}
}

// MergeContextFields copies fields bound earlier in the request via
// WithFields into the record.
func MergeContextFields(ctx context.Context, r *Record) {
	for _, f := range FieldsFromContext(ctx) {
		r.Set(f.Key, f.Value)
	}
}

// AddLevel attaches the level name.
func AddLevel(_ context.Context, r *Record) {
	r.Set("level", r.level.String())
}

// AddLoggerName attaches the logger name when the frontend has one.
func AddLoggerName(_ context.Context, r *Record) {
	if r.logger != "" {
		r.Set("logger", r.logger)
	}
}

// FormatArgs interpolates positional arguments into the event message.
func FormatArgs(_ context.Context, r *Record) {
	if len(r.args) == 0 {
		return
	}
	if ev, ok := r.Get("event"); ok {
		if s, ok := ev.(string); ok {
			r.Set("event", fmt.Sprintf(s, r.args...))
		}
	}
	r.args = nil
}

// AddRequestID attaches the correlation id when one is present and
// non-empty. An absent or empty id means no request_id field at all.
func AddRequestID(ctx context.Context, r *Record) {
	if id := RequestIDFromContext(ctx); id != "" {
		r.Set("request_id", id)
	}
}

// spanParent is implemented by SDK spans; the trace API itself does not
// expose the parent span context.
type spanParent interface {
	Parent() trace.SpanContext
}

// AddTraceContext attaches trace_id and span_id for the active recording
// span, plus parent_span_id when the span has a parent. A missing or
// non-recording span adds nothing.
func AddTraceContext(ctx context.Context, r *Record) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	sc := span.SpanContext()
	r.Set("trace_id", sc.TraceID().String())
	r.Set("span_id", sc.SpanID().String())
	if p, ok := span.(spanParent); ok {
		if parent := p.Parent(); parent.HasSpanID() {
			r.Set("parent_span_id", parent.SpanID().String())
		}
	}
}

// timeNow is swapped in tests to make the chain deterministic.
var timeNow = time.Now

// Timestamper attaches an ISO-8601 UTC timestamp.
func Timestamper(_ context.Context, r *Record) {
	r.Set("timestamp", timeNow().UTC().Format(time.RFC3339Nano))
}

// StackInfo captures the caller stack when the call site asked for it.
func StackInfo(_ context.Context, r *Record) {
	if !r.withStack {
		return
	}
	r.Set("stack", captureStack(3))
}

func captureStack(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
