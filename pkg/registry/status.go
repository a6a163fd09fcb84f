package registry

import "fmt"

// RiskLevel classifies a model under the EU AI Act risk taxonomy.
// Levels are ordered from least to most severe.
type RiskLevel string

const (
	// RiskUnclassified is the default for models that have not been assessed.
	RiskUnclassified RiskLevel = "unclassified"

	// RiskMinimal covers models with negligible potential for harm.
	RiskMinimal RiskLevel = "minimal"

	// RiskLimited covers models with transparency obligations only.
	RiskLimited RiskLevel = "limited"

	// RiskHigh covers models subject to strict conformity requirements.
	RiskHigh RiskLevel = "high"

	// RiskUnacceptable covers prohibited uses.
	RiskUnacceptable RiskLevel = "unacceptable"
)

// riskSeverity maps each level to its position in the severity ordering.
var riskSeverity = map[RiskLevel]int{
	RiskUnclassified: 0,
	RiskMinimal:      1,
	RiskLimited:      2,
	RiskHigh:         3,
	RiskUnacceptable: 4,
}

// Valid reports whether the risk level is a recognized member of the taxonomy.
func (r RiskLevel) Valid() bool {
	_, ok := riskSeverity[r]
	return ok
}

// AtLeast reports whether the risk level is as severe or more severe than min.
// Unrecognized levels compare below every recognized level.
func (r RiskLevel) AtLeast(min RiskLevel) bool {
	return riskSeverity[r] >= riskSeverity[min]
}

// ParseRiskLevel converts a string into a RiskLevel.
// The empty string parses as RiskUnclassified.
func ParseRiskLevel(s string) (RiskLevel, error) {
	if s == "" {
		return RiskUnclassified, nil
	}
	r := RiskLevel(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRiskLevel, s)
	}
	return r, nil
}

// ComplianceStatus is a model's position in the compliance lifecycle.
type ComplianceStatus string

const (
	// StatusDraft is the initial status of every registered model.
	StatusDraft ComplianceStatus = "draft"

	// StatusUnderReview marks a model undergoing compliance review.
	StatusUnderReview ComplianceStatus = "under_review"

	// StatusApproved marks a model cleared for use.
	StatusApproved ComplianceStatus = "approved"

	// StatusRetired marks a model withdrawn from use.
	StatusRetired ComplianceStatus = "retired"
)

// Statuses lists the recognized lifecycle statuses in lifecycle order.
func Statuses() []ComplianceStatus {
	return []ComplianceStatus{StatusDraft, StatusUnderReview, StatusApproved, StatusRetired}
}

// Valid reports whether the status is a recognized member of the lifecycle
// enumeration.
func (s ComplianceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusApproved, StatusRetired:
		return true
	}
	return false
}

// ParseComplianceStatus converts a string into a ComplianceStatus, failing
// with ErrInvalidStatus for anything outside the enumeration.
func ParseComplianceStatus(s string) (ComplianceStatus, error) {
	cs := ComplianceStatus(s)
	if !cs.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return cs, nil
}

// ValidateTransition checks that a proposed lifecycle transition is
// syntactically legal. Every recognized status is reachable from every other;
// the only rejection is a target outside the enumeration. Semantic
// restrictions are enforced by policies, not here.
func ValidateTransition(current, proposed ComplianceStatus) error {
	if !proposed.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(proposed))
	}
	return nil
}
