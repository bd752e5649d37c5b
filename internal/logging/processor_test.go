package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// enrich runs the default chain over a fresh record, the way the
// pipeline does before rendering.
func enrich(ctx context.Context, level Level, logger, event string, fields ...Field) *Record {
	r := newRecord(level, logger, event, nil, fields)
	for _, p := range DefaultProcessors() {
		p(ctx, r)
	}
	return r
}

func TestAddRequestID(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "abc-123")
		r := enrich(ctx, LevelInfo, "test", "msg")

		v, ok := r.Get("request_id")
		require.True(t, ok)
		assert.Equal(t, "abc-123", v)
	})

	t.Run("absent means no field", func(t *testing.T) {
		r := enrich(context.Background(), LevelInfo, "test", "msg")
		assert.False(t, r.Has("request_id"))
	})

	t.Run("empty means no field", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "")
		r := enrich(ctx, LevelInfo, "test", "msg")
		assert.False(t, r.Has("request_id"))
	})
}

func TestAddTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := tp.Tracer("test")

	t.Run("no span means no fields", func(t *testing.T) {
		r := enrich(context.Background(), LevelInfo, "test", "msg")
		assert.False(t, r.Has("trace_id"))
		assert.False(t, r.Has("span_id"))
		assert.False(t, r.Has("parent_span_id"))
	})

	t.Run("recording root span", func(t *testing.T) {
		ctx, span := tracer.Start(context.Background(), "root")
		defer span.End()

		r := enrich(ctx, LevelInfo, "test", "msg")

		sc := span.SpanContext()
		traceID, ok := r.Get("trace_id")
		require.True(t, ok)
		assert.Equal(t, sc.TraceID().String(), traceID)
		assert.Len(t, traceID, 32)

		spanID, ok := r.Get("span_id")
		require.True(t, ok)
		assert.Equal(t, sc.SpanID().String(), spanID)
		assert.Len(t, spanID, 16)

		assert.False(t, r.Has("parent_span_id"), "root span has no parent")
	})

	t.Run("child span carries parent span id", func(t *testing.T) {
		ctx, parent := tracer.Start(context.Background(), "parent")
		defer parent.End()
		ctx, child := tracer.Start(ctx, "child")
		defer child.End()

		r := enrich(ctx, LevelInfo, "test", "msg")

		parentID, ok := r.Get("parent_span_id")
		require.True(t, ok)
		assert.Equal(t, parent.SpanContext().SpanID().String(), parentID)

		spanID, _ := r.Get("span_id")
		assert.Equal(t, child.SpanContext().SpanID().String(), spanID)
	})

	t.Run("ended span adds nothing", func(t *testing.T) {
		ctx, span := tracer.Start(context.Background(), "done")
		span.End()

		r := enrich(ctx, LevelInfo, "test", "msg")
		assert.False(t, r.Has("trace_id"))
		assert.False(t, r.Has("span_id"))
	})
}

func TestMergeContextFields(t *testing.T) {
	ctx := WithFields(context.Background(), F("tenant", "acme"))
	ctx = WithFields(ctx, F("attempt", 2))

	r := enrich(ctx, LevelInfo, "test", "msg")

	tenant, ok := r.Get("tenant")
	require.True(t, ok)
	assert.Equal(t, "acme", tenant)
	attempt, _ := r.Get("attempt")
	assert.Equal(t, 2, attempt)
}

func TestFormatArgs(t *testing.T) {
	r := newRecord(LevelInfo, "test", "processing %d of %s", []any{3, "ten"}, nil)
	for _, p := range DefaultProcessors() {
		p(context.Background(), r)
	}

	ev, _ := r.Get("event")
	assert.Equal(t, "processing 3 of ten", ev)
}

func TestTimestamperISO8601(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = orig }()

	r := enrich(context.Background(), LevelInfo, "test", "msg")

	ts, ok := r.Get("timestamp")
	require.True(t, ok)
	assert.Equal(t, "2026-03-14T09:26:53.589Z", ts)
}

func TestChainDeterministic(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = orig }()

	ctx := WithRequestID(context.Background(), "req-1")
	a := enrich(ctx, LevelInfo, "svc", "msg", F("k", "v"))
	b := enrich(ctx, LevelInfo, "svc", "msg", F("k", "v"))

	assert.Equal(t, a.Fields(), b.Fields())
}

func TestChainOrder(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = orig }()

	ctx := WithFields(context.Background(), F("bound", true))
	ctx = WithRequestID(ctx, "req-9")
	r := enrich(ctx, LevelWarning, "svc", "msg")

	assert.Equal(t,
		[]string{"event", "bound", "level", "logger", "request_id", "timestamp"},
		r.Keys())
	lvl, _ := r.Get("level")
	assert.Equal(t, "warning", lvl)
	name, _ := r.Get("logger")
	assert.Equal(t, "svc", name)
}

func TestStackInfo(t *testing.T) {
	r := newRecord(LevelError, "test", "boom", nil, nil)
	r.withStack = true
	for _, p := range DefaultProcessors() {
		p(context.Background(), r)
	}

	stack, ok := r.Get("stack")
	require.True(t, ok)
	assert.Contains(t, stack.(string), "processor_test.go")
}

func TestAddLoggerNameOmittedWhenEmpty(t *testing.T) {
	r := enrich(context.Background(), LevelInfo, "", "msg")
	assert.False(t, r.Has("logger"))
}
