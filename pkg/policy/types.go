package policy

import (
	"time"
)

// Scope determines where a policy applies.
type Scope string

const (
	// ScopeGlobal applies the policy to every model in every organization.
	ScopeGlobal Scope = "global"

	// ScopeOrganization applies the policy within one organization.
	ScopeOrganization Scope = "organization"

	// ScopeEnvironment applies the policy to a deployment environment.
	ScopeEnvironment Scope = "environment"
)

// Valid reports whether the scope is a recognized member of the enumeration.
func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeOrganization, ScopeEnvironment:
		return true
	}
	return false
}

// ConditionType names the predicate a policy is bound to. The set is closed
// at compile time, but unknown values are tolerated at evaluation time so
// that policies written for future condition kinds do not break old binaries.
type ConditionType string

const (
	// ConditionRequireEvaluationBeforeApproval requires at least one recorded
	// evaluation metric, on any version, before a model may be approved.
	ConditionRequireEvaluationBeforeApproval ConditionType = "require_evaluation_before_approval"

	// ConditionBlockHighRiskWithoutApproval prevents high and
	// unacceptable-risk models from jumping straight from draft to approved
	// without passing through review.
	ConditionBlockHighRiskWithoutApproval ConditionType = "block_high_risk_without_approval"

	// ConditionRequireReviewForHighRisk is reserved for tightening review
	// requirements on high-risk models. Its predicate is currently a
	// pass-through; see predicates.go.
	ConditionRequireReviewForHighRisk ConditionType = "require_review_for_high_risk"
)

// Policy is a named governance rule. Name is unique across the deployment.
// ConditionType and Scope are immutable after creation so that historical
// violations remain interpretable; only Description and Active may change.
// Policies are never hard-deleted, only deactivated.
type Policy struct {
	// ID is the storage-assigned identifier.
	ID int64 `json:"id"`

	// Name is the unique policy name.
	Name string `json:"name"`

	// Description is an optional human-readable explanation. When present it
	// is used in the refusal message shown to blocked callers.
	Description string `json:"description,omitempty"`

	// Scope determines where the policy applies.
	Scope Scope `json:"scope"`

	// ConditionType names the predicate this policy is bound to.
	ConditionType ConditionType `json:"condition_type"`

	// Active policies participate in enforcement; inactive ones never block.
	Active bool `json:"active"`

	// OrganizationID limits the policy to one tenant. Nil means the policy
	// applies to every tenant.
	OrganizationID *int64 `json:"organization_id,omitempty"`

	// CreatedAt orders policies for evaluation (oldest first).
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time of the last description/active change, if any.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// AppliesTo reports whether the policy applies to a model belonging to the
// given organization. A nil policy organization means the policy is global.
func (p *Policy) AppliesTo(orgID *int64) bool {
	if !p.Active {
		return false
	}
	if p.Scope == ScopeGlobal || p.OrganizationID == nil {
		return true
	}
	return orgID != nil && *p.OrganizationID == *orgID
}

// Filter selects policies for list operations.
type Filter struct {
	// Active filters by active flag when non-nil.
	Active *bool

	// Scope filters by scope when non-empty.
	Scope Scope `json:"scope"`

	// OrganizationID selects policies applicable to the given tenant
	// (global policies included) when non-nil.
	OrganizationID *int64 `json:"organization_id,omitempty"`
}
