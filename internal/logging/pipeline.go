package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Options configures the pipeline. JSONOutput and MinLevel mirror the
// two recognized service options; the rest exists for tests and
// embedding.
type Options struct {
	// JSONOutput selects the JSON renderer; false means colored text.
	JSONOutput bool
	// MinLevel drops records below this severity before they reach the
	// queue.
	MinLevel Level
	// Output is the sink's destination. Defaults to os.Stdout.
	Output io.Writer
	// ForceColor enables text colors even when Output is not a terminal.
	ForceColor bool
	// Processors overrides the default enrichment chain. Rarely set
	// outside tests.
	Processors []Processor
	// Metrics, when non-nil, counts sink traffic.
	Metrics *Metrics
}

// pipelineState is the immutable snapshot the hot path reads. The
// renderer choice is made here, once per Configure, not per call.
type pipelineState struct {
	renderer Renderer
	minLevel Level
	procs    []Processor
	sink     *sink
	metrics  *Metrics
}

// Pipeline is the owned handle for the whole logging core: enrichment
// chain, renderer, and async sink lifecycle. The composition root
// creates one and passes it down; there is no package-level instance.
type Pipeline struct {
	mu    sync.Mutex // serializes Configure/Stop transitions
	state SinkState
	cur   atomic.Pointer[pipelineState]
}

// New returns an unconfigured pipeline. Logging against it is a silent
// no-op until Configure runs.
func New() *Pipeline { return &Pipeline{} }

// Configure (re)starts the pipeline. A previously running consumer is
// fully stopped and joined before the new one starts, so two writers can
// never interleave on the same stream.
func (p *Pipeline) Configure(opts Options) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st := p.cur.Load(); st != nil {
		p.cur.Store(nil)
		st.sink.stop()
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	var renderer Renderer
	if opts.JSONOutput {
		renderer = JSONRenderer{}
	} else {
		renderer = TextRenderer{Color: opts.ForceColor || writerIsTerminal(out)}
	}
	procs := opts.Processors
	if procs == nil {
		procs = DefaultProcessors()
	}

	sk := newSink(out, opts.Metrics)
	sk.start()
	p.cur.Store(&pipelineState{
		renderer: renderer,
		minLevel: opts.MinLevel,
		procs:    procs,
		sink:     sk,
		metrics:  opts.Metrics,
	})
	p.state = StateRunning
}

// Stop drains the queue and stops the consumer. Calling it on an
// unconfigured or already stopped pipeline is a no-op.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateRunning {
		return
	}
	if st := p.cur.Load(); st != nil {
		p.cur.Store(nil)
		st.sink.stop()
	}
	p.state = StateStopped
}

// State reports the sink lifecycle state.
func (p *Pipeline) State() SinkState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Logger returns a named frontend bound to this pipeline.
func (p *Pipeline) Logger(name string) *Logger {
	return &Logger{p: p, name: name}
}

// log runs the enrichment chain, renders the record, and enqueues the
// line. It is the only producer entry point and never blocks on I/O.
func (p *Pipeline) log(ctx context.Context, level Level, name, event string, args []any, fields []Field, withStack bool) {
	st := p.cur.Load()
	if st == nil {
		return
	}
	if level < st.minLevel {
		st.metrics.droppedBelowLevel()
		return
	}
	r := newRecord(level, name, event, args, fields)
	r.withStack = withStack
	for _, proc := range st.procs {
		proc(ctx, r)
	}
	st.sink.enqueue(queueEntry{line: st.renderer.Render(r), level: level})
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
