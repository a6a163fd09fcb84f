package registry

import (
	"errors"
	"testing"
)

func TestRiskLevel_AtLeast(t *testing.T) {
	tests := []struct {
		level RiskLevel
		min   RiskLevel
		want  bool
	}{
		{RiskHigh, RiskHigh, true},
		{RiskUnacceptable, RiskHigh, true},
		{RiskLimited, RiskHigh, false},
		{RiskMinimal, RiskUnclassified, true},
		{RiskUnclassified, RiskMinimal, false},
	}

	for _, tt := range tests {
		if got := tt.level.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.level, tt.min, got, tt.want)
		}
	}
}

func TestParseRiskLevel(t *testing.T) {
	if r, err := ParseRiskLevel("high"); err != nil || r != RiskHigh {
		t.Errorf("ParseRiskLevel(high) = %v, %v", r, err)
	}

	// Empty string defaults to unclassified rather than failing.
	if r, err := ParseRiskLevel(""); err != nil || r != RiskUnclassified {
		t.Errorf("ParseRiskLevel(\"\") = %v, %v", r, err)
	}

	if _, err := ParseRiskLevel("catastrophic"); !errors.Is(err, ErrInvalidRiskLevel) {
		t.Errorf("Expected ErrInvalidRiskLevel, got %v", err)
	}
}

func TestComplianceStatus_Valid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	if ComplianceStatus("archived").Valid() {
		t.Error("Expected unknown status to be invalid")
	}
	if ComplianceStatus("").Valid() {
		t.Error("Expected empty status to be invalid")
	}
}

func TestValidateTransition(t *testing.T) {
	// Every recognized status is reachable from every other, including
	// itself; restrictions are the business of policies.
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			if err := ValidateTransition(from, to); err != nil {
				t.Errorf("ValidateTransition(%s, %s) failed: %v", from, to, err)
			}
		}
	}

	if err := ValidateTransition(StatusDraft, ComplianceStatus("archived")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestParseComplianceStatus(t *testing.T) {
	if s, err := ParseComplianceStatus("under_review"); err != nil || s != StatusUnderReview {
		t.Errorf("ParseComplianceStatus(under_review) = %v, %v", s, err)
	}
	if _, err := ParseComplianceStatus(""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus for empty string, got %v", err)
	}
}
