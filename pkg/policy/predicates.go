package policy

import (
	"veritas-hq/aegis/pkg/registry"
)

// EvalContext is the complete input to a predicate. Everything a predicate
// may inspect is loaded here before evaluation; predicates themselves perform
// no I/O and keep no state, so a given context always evaluates the same way.
type EvalContext struct {
	// Model is the current state of the governed model.
	Model *registry.Model

	// Proposed is the compliance status the caller wants to move to.
	Proposed registry.ComplianceStatus

	// EvidenceCount is the total number of evaluation metrics recorded
	// across all of the model's versions.
	EvidenceCount int
}

// Predicate answers whether one compliance concern is satisfied for a
// proposed transition. Returning false blocks the transition.
type Predicate func(EvalContext) bool

// Predicates returns the condition-type dispatch table. Condition types
// absent from the table are skipped during enforcement.
func Predicates() map[ConditionType]Predicate {
	return map[ConditionType]Predicate{
		ConditionRequireEvaluationBeforeApproval: requireEvaluationBeforeApproval,
		ConditionBlockHighRiskWithoutApproval:    blockHighRiskWithoutApproval,
		ConditionRequireReviewForHighRisk:        requireReviewForHighRisk,
	}
}

// requireEvaluationBeforeApproval blocks approval of a model that has no
// recorded evaluation metric on any version. Transitions to any status other
// than approved are unaffected.
func requireEvaluationBeforeApproval(ec EvalContext) bool {
	if ec.Proposed != registry.StatusApproved {
		return true
	}
	return ec.EvidenceCount > 0
}

// blockHighRiskWithoutApproval blocks high and unacceptable-risk models from
// moving from draft directly to approved. Such models must pass through
// under_review first; once the current status is anything but draft the
// predicate no longer applies.
func blockHighRiskWithoutApproval(ec EvalContext) bool {
	if !ec.Model.RiskLevel.AtLeast(registry.RiskHigh) {
		return true
	}
	if ec.Proposed == registry.StatusApproved && ec.Model.ComplianceStatus == registry.StatusDraft {
		return false
	}
	return true
}

// requireReviewForHighRisk is a pass-through: every transition satisfies it.
// The condition type exists so policies can already reference it; the
// upstream rule set has never defined a restriction for it.
func requireReviewForHighRisk(ec EvalContext) bool {
	return true
}
