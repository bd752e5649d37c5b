package logging

// Field is a single key/value pair attached to a log call.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Err wraps an error as an "error" field with its message.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Record is an ordered mapping of field names to values. It is created
// at a log call site, enriched by the processor chain, rendered once,
// and discarded. Fields are only ever added, never removed.
type Record struct {
	level     Level
	logger    string
	args      []any
	withStack bool

	keys   []string
	values []any
}

func newRecord(level Level, logger, event string, args []any, fields []Field) *Record {
	r := &Record{
		level:  level,
		logger: logger,
		args:   args,
		keys:   make([]string, 0, len(fields)+8),
		values: make([]any, 0, len(fields)+8),
	}
	r.Set("event", event)
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Set appends the field if the key is new, otherwise overwrites the
// value in place so field order stays stable.
func (r *Record) Set(key string, value any) {
	for i, k := range r.keys {
		if k == key {
			r.values[i] = value
			return
		}
	}
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
}

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}
	return nil, false
}

// Has reports whether the record contains key.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.keys))
	for i, k := range r.keys {
		out[i] = Field{Key: k, Value: r.values[i]}
	}
	return out
}

// Level returns the record's severity.
func (r *Record) Level() Level { return r.level }
