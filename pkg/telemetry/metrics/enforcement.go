package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EnforcementMetrics tracks policy enforcement activity.
//
// Metrics:
//   - aegis_enforcement_decisions_total: decisions by outcome
//   - aegis_enforcement_duration_seconds: enforcement pass duration
//   - aegis_policy_violations_total: violations by condition type
//   - aegis_unknown_condition_skips_total: policies skipped for unknown condition types
type EnforcementMetrics struct {
	decisionsTotal    *prometheus.CounterVec
	duration          prometheus.Histogram
	violationsTotal   *prometheus.CounterVec
	unknownSkipsTotal *prometheus.CounterVec
}

// NewEnforcementMetrics creates and registers enforcement metrics.
func NewEnforcementMetrics(namespace string, registry *prometheus.Registry) *EnforcementMetrics {
	m := &EnforcementMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enforcement_decisions_total",
				Help:      "Total number of enforcement decisions",
			},
			[]string{"outcome"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "enforcement_duration_seconds",
				Help:      "Duration of one enforcement pass in seconds",
				// Enforcement is a handful of small reads plus at most one
				// write; anything past a second points at storage trouble.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of recorded policy violations",
			},
			[]string{"condition_type"},
		),

		unknownSkipsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unknown_condition_skips_total",
				Help:      "Policies skipped because their condition type has no registered predicate",
			},
			[]string{"condition_type"},
		),
	}

	registry.MustRegister(m.decisionsTotal, m.duration, m.violationsTotal, m.unknownSkipsTotal)
	return m
}

// RecordDecision records one enforcement decision and its duration.
// Outcome is "allowed", "denied", or "error".
func (m *EnforcementMetrics) RecordDecision(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// RecordViolation records one blocked transition by condition type.
func (m *EnforcementMetrics) RecordViolation(conditionType string) {
	if m == nil {
		return
	}
	m.violationsTotal.WithLabelValues(conditionType).Inc()
}

// RecordUnknownConditionSkip records a policy skipped for lack of a
// predicate implementation.
func (m *EnforcementMetrics) RecordUnknownConditionSkip(conditionType string) {
	if m == nil {
		return
	}
	m.unknownSkipsTotal.WithLabelValues(conditionType).Inc()
}
