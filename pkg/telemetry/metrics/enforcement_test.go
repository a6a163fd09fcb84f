package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEnforcementMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewEnforcementMetrics("aegis", registry)

	m.RecordDecision("allowed", 5*time.Millisecond)
	m.RecordDecision("denied", 3*time.Millisecond)
	m.RecordDecision("denied", 2*time.Millisecond)
	m.RecordViolation("require_evaluation_before_approval")
	m.RecordUnknownConditionSkip("require_bias_audit")

	if got := testutil.ToFloat64(m.decisionsTotal.WithLabelValues("denied")); got != 2 {
		t.Errorf("Expected 2 denied decisions, got %v", got)
	}
	if got := testutil.ToFloat64(m.decisionsTotal.WithLabelValues("allowed")); got != 1 {
		t.Errorf("Expected 1 allowed decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.violationsTotal.WithLabelValues("require_evaluation_before_approval")); got != 1 {
		t.Errorf("Expected 1 violation, got %v", got)
	}
	if got := testutil.ToFloat64(m.unknownSkipsTotal.WithLabelValues("require_bias_audit")); got != 1 {
		t.Errorf("Expected 1 unknown skip, got %v", got)
	}
}

func TestEnforcementMetrics_NilSafe(t *testing.T) {
	var m *EnforcementMetrics

	// Instrumentation is optional; a nil receiver must be a no-op.
	m.RecordDecision("allowed", time.Millisecond)
	m.RecordViolation("x")
	m.RecordUnknownConditionSkip("y")
}

func TestHTTPMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewHTTPMetrics("aegis", registry)

	m.RecordRequest("GET", "/api/v1/models", "200", 2*time.Millisecond)
	m.RecordRequest("GET", "/api/v1/models", "200", 4*time.Millisecond)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/models", "200")); got != 2 {
		t.Errorf("Expected 2 requests, got %v", got)
	}
}
