package compliance

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PersistDuration prometheus.Histogram
	PersistFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_audit_compliance_persist_duration_seconds",
			Help:    "Latency of synchronous compliance audit writes",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_audit_compliance_persist_failures_total",
			Help: "Compliance audit writes the store rejected",
		}),
	}
}

func (m *Metrics) observePersist(d time.Duration) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(d.Seconds())
}

func (m *Metrics) incPersistFailures() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
