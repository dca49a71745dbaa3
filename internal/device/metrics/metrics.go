package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the device trust engine.
type Metrics struct {
	TrustScore      prometheus.Histogram
	TrustLevel      *prometheus.CounterVec
	Registrations   *prometheus.CounterVec
	RiskFactors     *prometheus.CounterVec
	DegradedSignals *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		TrustScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_device_trust_score",
			Help:    "Distribution of computed device trust scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}),
		TrustLevel: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_device_trust_level_total",
			Help: "Trust computations by resulting level",
		}, []string{"level"}),
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_device_registrations_total",
			Help: "Device registrations split by new vs returning device",
		}, []string{"kind"}),
		RiskFactors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_device_risk_factors_total",
			Help: "Device risk factors raised by type",
		}, []string{"factor"}),
		DegradedSignals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_device_degraded_signals_total",
			Help: "Trust analyses that fell back to neutral after a store failure",
		}, []string{"signal"}),
	}
}

func (m *Metrics) ObserveTrust(score float64, level string, factors []string) {
	if m == nil {
		return
	}
	m.TrustScore.Observe(score)
	m.TrustLevel.WithLabelValues(level).Inc()
	for _, f := range factors {
		m.RiskFactors.WithLabelValues(f).Inc()
	}
}

func (m *Metrics) IncrementRegistration(isNew bool) {
	if m == nil {
		return
	}
	kind := "returning"
	if isNew {
		kind = "new"
	}
	m.Registrations.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementDegraded(signal string) {
	if m != nil {
		m.DegradedSignals.WithLabelValues(signal).Inc()
	}
}
