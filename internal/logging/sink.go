package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// SinkState tracks the sink lifecycle. At most one consumer goroutine is
// active while RUNNING; reconfiguring stops the old consumer before the
// new one starts.
type SinkState int

const (
	StateUnconfigured SinkState = iota
	StateRunning
	StateStopped
)

// queueEntry is a fully rendered line plus the severity the consumer may
// need when deciding how to handle it.
type queueEntry struct {
	line  []byte
	level Level
}

// sink owns the unbounded FIFO queue and the single consumer goroutine
// that performs the blocking write. Producers append and return; memory
// is the documented trade-off if the consumer falls behind.
type sink struct {
	w       io.Writer
	metrics *Metrics

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []queueEntry
	closing bool

	done chan struct{}
}

func newSink(w io.Writer, m *Metrics) *sink {
	s := &sink{w: w, metrics: m, done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *sink) start() {
	go s.consume()
}

// enqueue hands a rendered line to the consumer. It never blocks and is
// a no-op once the sink is closing.
func (s *sink) enqueue(e queueEntry) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, e)
	s.mu.Unlock()
	s.cond.Signal()
	s.metrics.enqueued()
}

func (s *sink) consume() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closing {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closing {
			s.mu.Unlock()
			return
		}
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, e := range batch {
			if _, err := s.w.Write(e.line); err != nil {
				// The producer already returned, so the failure stays
				// here: report and keep consuming.
				fmt.Fprintf(os.Stderr, "loglab: sink write failed: %v\n", err)
				s.metrics.writeError()
			}
		}
		s.metrics.dequeued(len(batch))
	}
}

// stop asks the consumer to drain the queue and waits for it to exit.
// Safe to call more than once.
func (s *sink) stop() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closing = true
	s.mu.Unlock()
	s.cond.Broadcast()
	<-s.done
}
