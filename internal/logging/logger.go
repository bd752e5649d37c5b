package logging

import "context"

// Logger is the request-path frontend. It is cheap to copy and safe for
// concurrent use; the mutable state lives in the pipeline snapshot.
type Logger struct {
	p      *Pipeline
	name   string
	fields []Field
}

// With returns a logger that attaches the field to every record.
func (l *Logger) With(key string, value any) *Logger {
	fields := make([]Field, 0, len(l.fields)+1)
	fields = append(fields, l.fields...)
	fields = append(fields, Field{Key: key, Value: value})
	return &Logger{p: l.p, name: l.name, fields: fields}
}

// Named returns a logger with the given name sharing this logger's
// bound fields.
func (l *Logger) Named(name string) *Logger {
	return &Logger{p: l.p, name: name, fields: l.fields}
}

func (l *Logger) Debug(ctx context.Context, event string, fields ...Field) {
	l.p.log(ctx, LevelDebug, l.name, event, nil, l.merged(fields), false)
}

func (l *Logger) Info(ctx context.Context, event string, fields ...Field) {
	l.p.log(ctx, LevelInfo, l.name, event, nil, l.merged(fields), false)
}

func (l *Logger) Warning(ctx context.Context, event string, fields ...Field) {
	l.p.log(ctx, LevelWarning, l.name, event, nil, l.merged(fields), false)
}

func (l *Logger) Error(ctx context.Context, event string, fields ...Field) {
	l.p.log(ctx, LevelError, l.name, event, nil, l.merged(fields), false)
}

func (l *Logger) Critical(ctx context.Context, event string, fields ...Field) {
	l.p.log(ctx, LevelCritical, l.name, event, nil, l.merged(fields), false)
}

// Logf formats positional arguments into the event message through the
// chain's argument formatter.
func (l *Logger) Logf(ctx context.Context, level Level, format string, args ...any) {
	l.p.log(ctx, level, l.name, format, args, l.fields, false)
}

// Exception logs err at error severity with a structured exception field
// and a captured stack. Error propagation stays with the caller; this
// only observes.
func (l *Logger) Exception(ctx context.Context, event string, err error, fields ...Field) {
	merged := l.merged(fields)
	out := make([]Field, 0, len(merged)+1)
	out = append(out, merged...)
	out = append(out, Field{Key: "exception", Value: err})
	l.p.log(ctx, LevelError, l.name, event, nil, out, true)
}

func (l *Logger) merged(fields []Field) []Field {
	if len(l.fields) == 0 {
		return fields
	}
	out := make([]Field, 0, len(l.fields)+len(fields))
	out = append(out, l.fields...)
	out = append(out, fields...)
	return out
}
