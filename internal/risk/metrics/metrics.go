package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the risk module.
type Metrics struct {
	AssessLatency      prometheus.Histogram
	AssessmentCategory *prometheus.CounterVec
	DegradedComponent  *prometheus.CounterVec
	FraudIndicators    *prometheus.CounterVec
	ScreeningOutcome   *prometheus.CounterVec
}

// New creates a new Metrics instance with all risk module metrics registered.
func New() *Metrics {
	return &Metrics{
		AssessLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_risk_assess_duration_seconds",
			Help:    "Duration of a full verification risk assessment",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		AssessmentCategory: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_risk_assessments_total",
			Help: "Risk assessments by resulting category",
		}, []string{"category"}),
		DegradedComponent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_risk_degraded_components_total",
			Help: "Sub-scorers that fell back to their neutral value",
		}, []string{"component"}),
		FraudIndicators: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_fraud_indicators_total",
			Help: "Fraud indicators raised by type",
		}, []string{"type"}),
		ScreeningOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_compliance_screenings_total",
			Help: "Compliance screenings by outcome (clear, flagged, degraded)",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveAssessLatency(d time.Duration) {
	if m != nil {
		m.AssessLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCategory(category string) {
	if m != nil {
		m.AssessmentCategory.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) IncrementDegraded(component string) {
	if m != nil {
		m.DegradedComponent.WithLabelValues(component).Inc()
	}
}

func (m *Metrics) IncrementFraudIndicator(typ string) {
	if m != nil {
		m.FraudIndicators.WithLabelValues(typ).Inc()
	}
}

func (m *Metrics) IncrementScreening(outcome string) {
	if m != nil {
		m.ScreeningOutcome.WithLabelValues(outcome).Inc()
	}
}
