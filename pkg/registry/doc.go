// Package registry defines the governed entities of the Aegis model registry:
// registered models, their versions, and the evaluation metrics attached to
// versions as compliance evidence.
//
// A model carries a risk classification (RiskLevel) and a compliance lifecycle
// status (ComplianceStatus). The lifecycle layer here is intentionally
// permissive: any recognized status is syntactically reachable from any other,
// and ValidateTransition only rejects targets that are not members of the
// status enumeration. All semantic restrictions on lifecycle movement (such as
// "high-risk models may not skip review") live in governance policies, so new
// restrictions can be introduced without touching transition wiring.
//
// Models are mutated only through the enforcement coordinator; callers never
// write compliance status directly.
package registry
