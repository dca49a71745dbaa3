package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what happened to operational audit events.
type Metrics struct {
	Tracked         prometheus.Counter
	Sampled         prometheus.Counter
	PersistFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Tracked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_audit_ops_tracked_total",
			Help: "Operational audit events handed to the store",
		}),
		Sampled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_audit_ops_sampled_total",
			Help: "Operational audit events dropped by sampling",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_audit_ops_persist_failures_total",
			Help: "Operational audit events the downstream emitter rejected",
		}),
	}
}

func (m *Metrics) incTracked() {
	if m != nil {
		m.Tracked.Inc()
	}
}

func (m *Metrics) incSampled() {
	if m != nil {
		m.Sampled.Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}
