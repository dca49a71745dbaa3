package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsProcessed    *prometheus.CounterVec
	ThreatsDetected    *prometheus.CounterVec
	Violations         *prometheus.CounterVec
	ProcessingLatency  prometheus.Histogram
	QueueDepth         prometheus.Gauge
	EnqueueRejected    prometheus.Counter
	AlertPublishFailed prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_threat_events_processed_total",
			Help: "Security events processed, by type, severity and mode",
		}, []string{"type", "severity", "mode"}),
		ThreatsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_threat_detections_total",
			Help: "Threat detections by type",
		}, []string{"type"}),
		Violations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_threat_compliance_violations_total",
			Help: "Compliance violations by regulation",
		}, []string{"regulation"}),
		ProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_threat_processing_duration_seconds",
			Help:    "Time to enrich, detect and check one security event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3},
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_threat_queue_depth",
			Help: "Security events waiting for batched processing",
		}),
		EnqueueRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_threat_enqueue_rejected_total",
			Help: "Events processed inline because the queue refused them",
		}),
		AlertPublishFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_threat_alert_publish_failures_total",
			Help: "Alerts that could not be published",
		}),
	}
}

func (m *Metrics) ObserveProcessed(eventType, severity, mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.EventsProcessed.WithLabelValues(eventType, severity, mode).Inc()
	m.ProcessingLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementThreat(threatType string) {
	if m != nil {
		m.ThreatsDetected.WithLabelValues(threatType).Inc()
	}
}

func (m *Metrics) IncrementViolation(regulation string) {
	if m != nil {
		m.Violations.WithLabelValues(regulation).Inc()
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}

func (m *Metrics) IncrementEnqueueRejected() {
	if m != nil {
		m.EnqueueRejected.Inc()
	}
}

func (m *Metrics) IncrementAlertPublishFailed() {
	if m != nil {
		m.AlertPublishFailed.Inc()
	}
}
