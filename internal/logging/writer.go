package logging

import (
	"context"
	"io"
	"strings"
)

// writerAdapter feeds lines written by stdlib-style loggers into the
// pipeline, so framework loggers (http.Server.ErrorLog) share the same
// queue and consumer instead of writing independently.
type writerAdapter struct {
	l     *Logger
	level Level
}

// NewWriterAdapter returns an io.Writer that logs each written line
// through l at the given level.
func NewWriterAdapter(l *Logger, level Level) io.Writer {
	return &writerAdapter{l: l, level: level}
}

func (w *writerAdapter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.l.p.log(context.Background(), w.level, w.l.name, msg, nil, w.l.fields, false)
	}
	return len(p), nil
}
