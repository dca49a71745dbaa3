package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CheckLatency   prometheus.Histogram
	Decisions      *prometheus.CounterVec
	PolicyEnforced *prometheus.CounterVec
	FailSecure     prometheus.Counter
	BypassUsed     *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_mfa_check_duration_seconds",
			Help:    "Duration of an MFA requirement check",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_mfa_decisions_total",
			Help: "MFA requirement decisions by outcome",
		}, []string{"required"}),
		PolicyEnforced: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_mfa_policy_enforced_total",
			Help: "Policies that demanded MFA, by policy",
		}, []string{"policy"}),
		FailSecure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_mfa_fail_secure_total",
			Help: "Checks that could not be evaluated and required MFA with every method",
		}),
		BypassUsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_mfa_bypass_used_total",
			Help: "Enforcements suppressed by a bypass, by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveCheck(d time.Duration, required bool) {
	if m == nil {
		return
	}
	m.CheckLatency.Observe(d.Seconds())
	label := "false"
	if required {
		label = "true"
	}
	m.Decisions.WithLabelValues(label).Inc()
}

func (m *Metrics) IncrementPolicyEnforced(policy string) {
	if m != nil {
		m.PolicyEnforced.WithLabelValues(policy).Inc()
	}
}

func (m *Metrics) IncrementFailSecure() {
	if m != nil {
		m.FailSecure.Inc()
	}
}

func (m *Metrics) IncrementBypass(kind string) {
	if m != nil {
		m.BypassUsed.WithLabelValues(kind).Inc()
	}
}
