package logging

import (
	"bytes"
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Renderer serializes an enriched record to a single output line. The
// renderer never changes which fields are present, only how they look.
type Renderer interface {
	Render(r *Record) []byte
}

// exceptionInfo is the structured form error values take in JSON output,
// so downstream parsers can pull out the type and message instead of
// scraping free text.
type exceptionInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// JSONRenderer writes one JSON object per line, preserving field order.
type JSONRenderer struct{}

func (JSONRenderer) Render(r *Record) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := gojson.Marshal(f.Key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(marshalValue(f.Value))
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func marshalValue(v any) []byte {
	if err, ok := v.(error); ok {
		v = exceptionInfo{Type: fmt.Sprintf("%T", err), Message: err.Error()}
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		b, _ = gojson.Marshal(fmt.Sprint(v))
	}
	return b
}

const (
	ansiReset   = "\x1b[0m"
	ansiDim     = "\x1b[2m"
	ansiCyan    = "\x1b[36m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiRed     = "\x1b[31m"
	ansiBoldRed = "\x1b[1;31m"
)

func levelColor(l Level) string {
	switch l {
	case LevelDebug:
		return ansiCyan
	case LevelInfo:
		return ansiGreen
	case LevelWarning:
		return ansiYellow
	case LevelError:
		return ansiRed
	case LevelCritical:
		return ansiBoldRed
	default:
		return ansiGreen
	}
}

// TextRenderer writes a human-readable line, colorized by level when
// Color is set. Exception and stack fields render inline as formatted
// text on continuation lines.
type TextRenderer struct {
	Color bool
}

func (t TextRenderer) Render(r *Record) []byte {
	var buf bytes.Buffer

	if ts, ok := r.Get("timestamp"); ok {
		if t.Color {
			buf.WriteString(ansiDim)
		}
		fmt.Fprint(&buf, ts)
		if t.Color {
			buf.WriteString(ansiReset)
		}
		buf.WriteByte(' ')
	}

	if t.Color {
		buf.WriteString(levelColor(r.level))
	}
	fmt.Fprintf(&buf, "[%-8s]", r.level.String())
	if t.Color {
		buf.WriteString(ansiReset)
	}

	if ev, ok := r.Get("event"); ok {
		fmt.Fprintf(&buf, " %v", ev)
	}

	var trailers []Field
	for _, f := range r.Fields() {
		switch f.Key {
		case "timestamp", "level", "event":
			continue
		case "exception", "stack":
			trailers = append(trailers, f)
			continue
		}
		fmt.Fprintf(&buf, " %s=%v", f.Key, f.Value)
	}

	for _, f := range trailers {
		if t.Color {
			fmt.Fprintf(&buf, "\n%s%s:%s %v", ansiRed, f.Key, ansiReset, f.Value)
		} else {
			fmt.Fprintf(&buf, "\n%s: %v", f.Key, f.Value)
		}
	}

	buf.WriteByte('\n')
	return buf.Bytes()
}
