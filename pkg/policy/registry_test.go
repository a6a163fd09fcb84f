package policy_test

import (
	"context"
	"errors"
	"testing"

	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/store"
)

func newTestRegistry(t *testing.T) (*policy.Registry, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return policy.NewRegistry(st), st
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	p := &policy.Policy{
		Name:          "evaluation-gate",
		Description:   "Evaluations required before approval",
		ConditionType: policy.ConditionRequireEvaluationBeforeApproval,
		Active:        true,
	}
	if err := r.Create(ctx, p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if p.ID == 0 {
		t.Error("Expected an assigned ID")
	}
	if p.Scope != policy.ScopeGlobal {
		t.Errorf("Expected default scope %q, got %q", policy.ScopeGlobal, p.Scope)
	}

	got, err := r.GetByName(ctx, "evaluation-gate")
	if err != nil {
		t.Fatalf("GetByName() failed: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("Expected ID %d, got %d", p.ID, got.ID)
	}
}

func TestRegistry_CreateValidation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	var verr *policy.ValidationError

	err := r.Create(ctx, &policy.Policy{ConditionType: policy.ConditionRequireReviewForHighRisk})
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Errorf("Expected validation error on name, got %v", err)
	}

	err = r.Create(ctx, &policy.Policy{Name: "p", ConditionType: "x", Scope: policy.Scope("region")})
	if !errors.As(err, &verr) || verr.Field != "scope" {
		t.Errorf("Expected validation error on scope, got %v", err)
	}

	err = r.Create(ctx, &policy.Policy{Name: "p", Scope: policy.ScopeGlobal})
	if !errors.As(err, &verr) || verr.Field != "condition_type" {
		t.Errorf("Expected validation error on condition_type, got %v", err)
	}

	err = r.Create(ctx, &policy.Policy{
		Name:          "p",
		Scope:         policy.ScopeOrganization,
		ConditionType: policy.ConditionRequireReviewForHighRisk,
	})
	if !errors.As(err, &verr) || verr.Field != "organization_id" {
		t.Errorf("Expected validation error on organization_id, got %v", err)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	p := &policy.Policy{
		Name:          "evaluation-gate",
		ConditionType: policy.ConditionRequireEvaluationBeforeApproval,
		Active:        true,
	}
	if err := r.Create(ctx, p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	dup := &policy.Policy{
		Name:          "evaluation-gate",
		ConditionType: policy.ConditionRequireReviewForHighRisk,
	}
	if err := r.Create(ctx, dup); !errors.Is(err, policy.ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
}

func TestRegistry_ImmutableFields(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	p := &policy.Policy{
		Name:          "evaluation-gate",
		ConditionType: policy.ConditionRequireEvaluationBeforeApproval,
		Active:        true,
	}
	if err := r.Create(ctx, p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	other := policy.ConditionRequireReviewForHighRisk
	if _, err := r.Update(ctx, p.ID, policy.Update{ConditionType: &other}); !errors.Is(err, policy.ErrImmutableField) {
		t.Errorf("Expected ErrImmutableField for condition_type, got %v", err)
	}

	env := policy.ScopeEnvironment
	if _, err := r.Update(ctx, p.ID, policy.Update{Scope: &env}); !errors.Is(err, policy.ErrImmutableField) {
		t.Errorf("Expected ErrImmutableField for scope, got %v", err)
	}

	// Restating the existing values is not a change and must succeed.
	same := p.ConditionType
	if _, err := r.Update(ctx, p.ID, policy.Update{ConditionType: &same}); err != nil {
		t.Errorf("Expected no-op condition_type update to pass, got %v", err)
	}

	desc := "updated description"
	updated, err := r.Update(ctx, p.ID, policy.Update{Description: &desc})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Description != desc {
		t.Errorf("Expected description %q, got %q", desc, updated.Description)
	}
	if updated.UpdatedAt == nil {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestRegistry_DeactivateKeepsRecord(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	p := &policy.Policy{
		Name:          "evaluation-gate",
		ConditionType: policy.ConditionRequireEvaluationBeforeApproval,
		Active:        true,
	}
	if err := r.Create(ctx, p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	deactivated, err := r.Deactivate(ctx, p.ID)
	if err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	if deactivated.Active {
		t.Error("Expected policy to be inactive")
	}

	// Soft delete: the record is still retrievable.
	got, err := r.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() after deactivation failed: %v", err)
	}
	if got.Active {
		t.Error("Expected stored policy to be inactive")
	}
}

func TestRegistry_ReadYourWrites(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	p := &policy.Policy{
		Name:          "evaluation-gate",
		ConditionType: policy.ConditionRequireEvaluationBeforeApproval,
		Active:        true,
	}
	if err := r.Create(ctx, p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Warm the cache.
	applicable, err := r.ResolveApplicable(ctx, nil)
	if err != nil {
		t.Fatalf("ResolveApplicable() failed: %v", err)
	}
	if len(applicable) != 1 {
		t.Fatalf("Expected 1 applicable policy, got %d", len(applicable))
	}

	// Deactivation must be visible on the very next read.
	if _, err := r.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	applicable, err = r.ResolveApplicable(ctx, nil)
	if err != nil {
		t.Fatalf("ResolveApplicable() after deactivation failed: %v", err)
	}
	if len(applicable) != 0 {
		t.Errorf("Expected no applicable policies after deactivation, got %d", len(applicable))
	}
}

func TestRegistry_ResolveApplicableOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	names := []string{"first-gate", "second-gate", "third-gate"}
	for _, name := range names {
		p := &policy.Policy{
			Name:          name,
			ConditionType: policy.ConditionRequireReviewForHighRisk,
			Active:        true,
		}
		if err := r.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	applicable, err := r.ResolveApplicable(ctx, nil)
	if err != nil {
		t.Fatalf("ResolveApplicable() failed: %v", err)
	}
	if len(applicable) != len(names) {
		t.Fatalf("Expected %d policies, got %d", len(names), len(applicable))
	}
	for i, name := range names {
		if applicable[i].Name != name {
			t.Errorf("Expected position %d to be %q, got %q", i, name, applicable[i].Name)
		}
	}
}

func TestRegistry_NotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	if _, err := r.Get(context.Background(), 99); !errors.Is(err, policy.ErrPolicyNotFound) {
		t.Errorf("Expected ErrPolicyNotFound, got %v", err)
	}
	if _, err := r.Update(context.Background(), 99, policy.Update{}); !errors.Is(err, policy.ErrPolicyNotFound) {
		t.Errorf("Expected ErrPolicyNotFound from Update, got %v", err)
	}
}

// countingStore counts how often the registry falls through to storage for a
// full policy list.
type countingStore struct {
	*store.MemoryStore
	listCalls int
}

func (c *countingStore) ListPolicies(ctx context.Context, f policy.Filter) ([]*policy.Policy, error) {
	c.listCalls++
	return c.MemoryStore.ListPolicies(ctx, f)
}

func TestRegistry_ListServesFromCache(t *testing.T) {
	cs := &countingStore{MemoryStore: store.NewMemoryStore()}
	r := policy.NewRegistry(cs)
	ctx := context.Background()

	orgID := int64(1)
	for _, p := range []*policy.Policy{
		{Name: "evaluation-gate", ConditionType: policy.ConditionRequireEvaluationBeforeApproval, Active: true},
		{Name: "acme-review", Scope: policy.ScopeOrganization, OrganizationID: &orgID,
			ConditionType: policy.ConditionRequireReviewForHighRisk, Active: true},
	} {
		if err := r.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s) failed: %v", p.Name, err)
		}
	}
	cs.listCalls = 0

	all, err := r.List(ctx, policy.Filter{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(all))
	}
	if cs.listCalls != 1 {
		t.Fatalf("Expected 1 store read to warm the cache, got %d", cs.listCalls)
	}

	// Filtered listing on a warm cache must not touch the store.
	scoped, err := r.List(ctx, policy.Filter{Scope: policy.ScopeOrganization})
	if err != nil {
		t.Fatalf("List(scope) failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "acme-review" {
		t.Errorf("Expected only the organization-scoped policy, got %v", scoped)
	}
	if cs.listCalls != 1 {
		t.Errorf("Expected cached reads after warmup, got %d store reads", cs.listCalls)
	}

	// A write invalidates; the next listing re-reads storage and sees it.
	if _, err := r.Deactivate(ctx, all[0].ID); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	active := true
	remaining, err := r.List(ctx, policy.Filter{Active: &active})
	if err != nil {
		t.Fatalf("List(active) failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Name != "acme-review" {
		t.Errorf("Expected deactivation visible on next listing, got %v", remaining)
	}
	if cs.listCalls != 2 {
		t.Errorf("Expected exactly one re-read after invalidation, got %d store reads", cs.listCalls)
	}
}
