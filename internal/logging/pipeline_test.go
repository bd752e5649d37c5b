package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(opts Options) (*Pipeline, *bytes.Buffer) {
	var buf bytes.Buffer
	opts.Output = &buf
	opts.JSONOutput = true
	p := New()
	p.Configure(opts)
	return p, &buf
}

func lines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

func TestStopWhenNeverConfigured(t *testing.T) {
	p := New()
	assert.NotPanics(t, func() { p.Stop() })
	assert.Equal(t, StateUnconfigured, p.State())
}

func TestStopIsIdempotent(t *testing.T) {
	p, _ := newTestPipeline(Options{})
	p.Stop()
	assert.NotPanics(t, func() { p.Stop() })
	assert.Equal(t, StateStopped, p.State())
}

func TestLoggingAfterStopIsNoop(t *testing.T) {
	p, buf := newTestPipeline(Options{})
	p.Stop()
	p.Logger("t").Info(context.Background(), "dropped")
	assert.Empty(t, lines(buf))
}

func TestReconfigureLeavesSingleConsumer(t *testing.T) {
	p, buf1 := newTestPipeline(Options{})
	first := p.cur.Load()
	require.NotNil(t, first)

	var buf2 bytes.Buffer
	p.Configure(Options{JSONOutput: true, Output: &buf2})

	// The old consumer must be fully stopped before the new one starts.
	select {
	case <-first.sink.done:
	default:
		t.Fatal("previous consumer still running after reconfigure")
	}

	p.Logger("t").Info(context.Background(), "after reconfigure")
	p.Stop()

	assert.Empty(t, lines(buf1), "old output must not receive records")
	require.Len(t, lines(&buf2), 1)

	// And again, to cover the RUNNING -> RUNNING transition twice.
	p.Configure(Options{JSONOutput: true, Output: &buf2})
	p.Stop()
}

func TestStopDrainsQueue(t *testing.T) {
	p, buf := newTestPipeline(Options{})
	log := p.Logger("drain")
	for i := 0; i < 500; i++ {
		log.Logf(context.Background(), LevelInfo, "record %d", i)
	}
	p.Stop()

	got := lines(buf)
	require.Len(t, got, 500, "no record may be lost on a clean stop")
	assert.Contains(t, got[0], "record 0")
	assert.Contains(t, got[499], "record 499")
}

func TestProducerSideLevelFilter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	p, buf := newTestPipeline(Options{MinLevel: LevelWarning, Metrics: m})
	log := p.Logger("t")

	log.Debug(context.Background(), "too low")
	log.Info(context.Background(), "still too low")
	log.Warning(context.Background(), "kept")
	log.Error(context.Background(), "kept too")
	p.Stop()

	assert.Len(t, lines(buf), 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Enqueued))
}

func TestConcurrentProducers(t *testing.T) {
	p, buf := newTestPipeline(Options{})
	log := p.Logger("conc")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			log.Info(context.Background(), "event", F("worker", i))
		}(i)
	}
	wg.Wait()
	p.Stop()

	assert.Len(t, lines(buf), n)
}

func TestWriterAdapterReroutesFrameworkLogger(t *testing.T) {
	p, buf := newTestPipeline(Options{})
	w := NewWriterAdapter(p.Logger("http.server"), LevelWarning)
	fmt.Fprintf(w, "http: panic serving 127.0.0.1: oops\n")
	p.Stop()

	got := lines(buf)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "http: panic serving 127.0.0.1: oops")
	assert.Contains(t, got[0], `"level":"warning"`)
	assert.Contains(t, got[0], `"logger":"http.server"`)
}

type failingWriter struct {
	mu    sync.Mutex
	fails int
	wrote int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fails > 0 {
		w.fails--
		return 0, errors.New("stream torn")
	}
	w.wrote++
	return len(p), nil
}

func TestConsumerSurvivesWriteFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	fw := &failingWriter{fails: 1}

	p := New()
	p.Configure(Options{JSONOutput: true, Output: fw, Metrics: m})
	log := p.Logger("t")
	log.Info(context.Background(), "first (fails)")
	log.Info(context.Background(), "second (lands)")
	p.Stop()

	fw.mu.Lock()
	defer fw.mu.Unlock()
	assert.Equal(t, 1, fw.wrote, "consumer must keep going after a write error")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WriteErrors))
}

func TestLoggerWithBindsFields(t *testing.T) {
	p, buf := newTestPipeline(Options{})
	log := p.Logger("svc").With("tenant", "acme")
	log.Info(context.Background(), "hi", F("extra", 1))
	p.Stop()

	got := lines(buf)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], `"tenant":"acme"`)
	assert.Contains(t, got[0], `"extra":1`)
}

func TestExceptionCarriesStructuredErrorAndStack(t *testing.T) {
	p, buf := newTestPipeline(Options{})
	p.Logger("svc").Exception(context.Background(), "it broke", errors.New("bad state"))
	p.Stop()

	got := lines(buf)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], `"level":"error"`)
	assert.Contains(t, got[0], `"message":"bad state"`)
	assert.Contains(t, got[0], `"stack":`)
}
