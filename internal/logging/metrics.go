package logging

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts sink traffic. All recording methods are nil-safe so the
// pipeline can run without a registry (tests, the load generator).
type Metrics struct {
	Enqueued    prometheus.Counter
	Dropped     prometheus.Counter
	WriteErrors prometheus.Counter
	QueueDepth  prometheus.Gauge
}

// NewMetrics builds the sink collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglab",
			Subsystem: "sink",
			Name:      "enqueued_total",
			Help:      "Log records handed to the async sink.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglab",
			Subsystem: "sink",
			Name:      "dropped_below_level_total",
			Help:      "Records filtered out before enqueue by the minimum level.",
		}),
		WriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglab",
			Subsystem: "sink",
			Name:      "write_errors_total",
			Help:      "Consumer write failures against the output stream.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loglab",
			Subsystem: "sink",
			Name:      "queue_depth",
			Help:      "Rendered records waiting for the consumer.",
		}),
	}
	reg.MustRegister(m.Enqueued, m.Dropped, m.WriteErrors, m.QueueDepth)
	return m
}

func (m *Metrics) enqueued() {
	if m == nil {
		return
	}
	m.Enqueued.Inc()
	m.QueueDepth.Inc()
}

func (m *Metrics) dequeued(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Sub(float64(n))
}

func (m *Metrics) droppedBelowLevel() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) writeError() {
	if m == nil {
		return
	}
	m.WriteErrors.Inc()
}
