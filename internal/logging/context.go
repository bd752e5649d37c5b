package logging

import "context"

type requestIDKey struct{}

type boundFieldsKey struct{}

// WithRequestID returns a context carrying the request correlation id.
// The id lives exactly as long as the derived context, so a finished
// request cannot leak its id into the next one sharing a connection or
// worker goroutine.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation id, or "" when none is
// set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithFields binds ambient fields to the context. They are merged into
// every record logged under that context, ahead of the record's own
// fields.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	existing := FieldsFromContext(ctx)
	merged := make([]Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, boundFieldsKey{}, merged)
}

// FieldsFromContext returns the ambient fields bound to the context.
func FieldsFromContext(ctx context.Context) []Field {
	fields, _ := ctx.Value(boundFieldsKey{}).([]Field)
	return fields
}
