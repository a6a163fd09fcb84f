package enforcement

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/registry"
	"veritas-hq/aegis/pkg/store"
	"veritas-hq/aegis/pkg/telemetry/metrics"
)

// ActionChangeComplianceStatus is the action name recorded on violations
// produced by status transitions.
const ActionChangeComplianceStatus = "change_compliance_status"

// Decision is the outcome of one enforcement pass.
type Decision struct {
	// Allowed reports whether the transition was permitted and applied.
	Allowed bool

	// BlockingPolicy is the first policy whose predicate failed, when the
	// transition was denied.
	BlockingPolicy *policy.Policy

	// Message is the human-readable refusal reason, empty when allowed.
	// Callers surface it verbatim so operators can see which policy fired.
	Message string
}

// Coordinator gates compliance status transitions behind policy evaluation.
type Coordinator struct {
	store      store.Store
	predicates map[policy.ConditionType]policy.Predicate
	metrics    *metrics.EnforcementMetrics
	logger     *slog.Logger
}

// NewCoordinator creates a coordinator over the given store with the default
// predicate table. Metrics may be nil to disable instrumentation.
func NewCoordinator(st store.Store, m *metrics.EnforcementMetrics) *Coordinator {
	return &Coordinator{
		store:      st,
		predicates: policy.Predicates(),
		metrics:    m,
		logger:     slog.Default().With("component", "enforcement"),
	}
}

// EnforceTransition evaluates every applicable policy against a proposed
// status change and either applies the change or records why it was blocked.
// Both outcomes commit within one transaction; an error return means the
// transaction rolled back and the transition is not granted.
func (c *Coordinator) EnforceTransition(ctx context.Context, modelID int64, proposed registry.ComplianceStatus, actingUserID *int64) (*Decision, error) {
	start := time.Now()

	if !proposed.Valid() {
		c.metrics.RecordDecision("error", time.Since(start))
		return nil, fmt.Errorf("%w: %q", registry.ErrInvalidStatus, string(proposed))
	}

	var decision *Decision
	err := c.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		decision, err = c.enforce(ctx, tx, modelID, proposed, actingUserID)
		return err
	})
	if err != nil {
		c.metrics.RecordDecision("error", time.Since(start))
		return nil, err
	}

	if decision.Allowed {
		c.metrics.RecordDecision("allowed", time.Since(start))
	} else {
		c.metrics.RecordDecision("denied", time.Since(start))
	}
	return decision, nil
}

// enforce runs the evaluation loop on one transaction.
func (c *Coordinator) enforce(ctx context.Context, tx store.Tx, modelID int64, proposed registry.ComplianceStatus, actingUserID *int64) (*Decision, error) {
	model, err := tx.GetModel(ctx, modelID)
	if err != nil {
		return nil, err
	}

	evidence, err := tx.EvidenceCount(ctx, modelID)
	if err != nil {
		return nil, err
	}

	// Policies are re-read inside the transaction rather than served from
	// the registry cache: the list must be consistent with the model row
	// under concurrent writers.
	policies, err := tx.ListApplicablePolicies(ctx, model.OrganizationID)
	if err != nil {
		return nil, err
	}

	ec := policy.EvalContext{
		Model:         model,
		Proposed:      proposed,
		EvidenceCount: evidence,
	}

	for _, p := range policies {
		pred, ok := c.predicates[p.ConditionType]
		if !ok {
			// Forward compatibility: a policy bound to a condition type this
			// binary does not know is inert, not an error.
			c.logger.Warn("skipping policy with unknown condition type",
				"policy", p.Name,
				"condition_type", string(p.ConditionType),
			)
			c.metrics.RecordUnknownConditionSkip(string(p.ConditionType))
			continue
		}

		if pred(ec) {
			continue
		}

		// First failure wins: record it and stop evaluating.
		if err := c.recordDenial(ctx, tx, p, model, proposed, actingUserID); err != nil {
			return nil, err
		}

		reason := p.Description
		if reason == "" {
			reason = string(p.ConditionType)
		}
		msg := fmt.Sprintf("Policy '%s' blocked this action: %s", p.Name, reason)

		c.metrics.RecordViolation(string(p.ConditionType))
		c.logger.Info("transition blocked",
			"model", model.Name,
			"policy", p.Name,
			"current_status", string(model.ComplianceStatus),
			"proposed_status", string(proposed),
		)

		return &Decision{
			Allowed:        false,
			BlockingPolicy: p,
			Message:        msg,
		}, nil
	}

	// Every policy satisfied (or none applicable): apply the transition and
	// audit the successful change in the same transaction.
	if err := tx.UpdateModelStatus(ctx, modelID, proposed); err != nil {
		return nil, err
	}

	recorder := audit.NewRecorder(tx)
	details := map[string]any{
		"from": string(model.ComplianceStatus),
		"to":   string(proposed),
	}
	if actingUserID != nil {
		details["user_id"] = *actingUserID
	}
	if _, err := recorder.RecordEntry(ctx, audit.EntityModel, strconv.FormatInt(modelID, 10), audit.ActionStatusChange, details); err != nil {
		return nil, err
	}

	c.logger.Info("transition allowed",
		"model", model.Name,
		"from", string(model.ComplianceStatus),
		"to", string(proposed),
	)

	return &Decision{Allowed: true}, nil
}

// recordDenial persists the violation record and its audit entry. Both
// writes ride the enforcement transaction; if either fails the whole pass
// fails and the caller must treat the transition as not granted.
func (c *Coordinator) recordDenial(ctx context.Context, tx store.Tx, p *policy.Policy, model *registry.Model, proposed registry.ComplianceStatus, actingUserID *int64) error {
	recorder := audit.NewRecorder(tx)

	violation := &audit.Violation{
		PolicyID:   p.ID,
		PolicyName: p.Name,
		ModelID:    model.ID,
		UserID:     actingUserID,
		Action:     ActionChangeComplianceStatus,
		Details: map[string]any{
			"attempted_status": string(proposed),
			"current_status":   string(model.ComplianceStatus),
			"policy_name":      p.Name,
			"policy_condition": string(p.ConditionType),
			"reason":           fmt.Sprintf("Policy '%s' blocked this action", p.Name),
		},
	}
	if err := recorder.RecordViolation(ctx, violation); err != nil {
		return err
	}

	_, err := recorder.RecordEntry(ctx, audit.EntityViolation, strconv.FormatInt(model.ID, 10), audit.ActionPolicyViolation, map[string]any{
		"policy_id":        p.ID,
		"policy_name":      p.Name,
		"attempted_action": ActionChangeComplianceStatus,
		"blocked":          true,
	})
	return err
}
