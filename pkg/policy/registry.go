package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Store is the persistence boundary the registry sits on. Implementations
// must enforce name uniqueness on create and assign IDs in creation order.
type Store interface {
	CreatePolicy(ctx context.Context, p *Policy) error
	GetPolicy(ctx context.Context, id int64) (*Policy, error)
	GetPolicyByName(ctx context.Context, name string) (*Policy, error)
	ListPolicies(ctx context.Context, f Filter) ([]*Policy, error)
	UpdatePolicy(ctx context.Context, p *Policy) error
}

// Registry manages policy definitions and resolves the policies applicable
// to a tenant. Reads are served from a process-local cache of the full policy
// list; every write path invalidates the cache synchronously before
// returning, so a caller that mutates a policy observes its own write on the
// next read.
//
// Enforcement deliberately bypasses this cache and re-reads policies inside
// its own transaction; the cache serves the admin and reporting read paths.
type Registry struct {
	store  Store
	logger *slog.Logger

	mu     sync.RWMutex
	cached []*Policy // nil when invalid
}

// NewRegistry creates a policy registry over the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:  store,
		logger: slog.Default().With("component", "policy.registry"),
	}
}

// Create validates and persists a new policy. Name uniqueness is enforced by
// the store; duplicate names fail with ErrDuplicateName.
func (r *Registry) Create(ctx context.Context, p *Policy) error {
	if err := validateNew(p); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := r.store.CreatePolicy(ctx, p); err != nil {
		return err
	}
	r.Invalidate()

	r.logger.Info("policy created",
		"policy", p.Name,
		"condition_type", string(p.ConditionType),
		"scope", string(p.Scope),
		"active", p.Active,
	)
	return nil
}

// Get retrieves a policy by ID.
func (r *Registry) Get(ctx context.Context, id int64) (*Policy, error) {
	return r.store.GetPolicy(ctx, id)
}

// GetByName retrieves a policy by its unique name.
func (r *Registry) GetByName(ctx context.Context, name string) (*Policy, error) {
	return r.store.GetPolicyByName(ctx, name)
}

// List returns policies matching the filter, ordered by creation (oldest
// first). Served from the cached snapshot; the store is hit only on a cache
// miss.
func (r *Registry) List(ctx context.Context, f Filter) ([]*Policy, error) {
	all, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []*Policy
	for _, p := range all {
		if f.Active != nil && p.Active != *f.Active {
			continue
		}
		if f.Scope != "" && p.Scope != f.Scope {
			continue
		}
		if f.OrganizationID != nil && p.Scope != ScopeGlobal && p.OrganizationID != nil && *p.OrganizationID != *f.OrganizationID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Update applies a mutable-field update to a policy. Only Description and
// Active may change; an attempt to alter ConditionType or Scope fails with
// ErrImmutableField so that recorded violations stay interpretable against
// the policy that produced them.
func (r *Registry) Update(ctx context.Context, id int64, upd Update) (*Policy, error) {
	p, err := r.store.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.ConditionType != nil && *upd.ConditionType != p.ConditionType {
		return nil, fmt.Errorf("%w: condition_type", ErrImmutableField)
	}
	if upd.Scope != nil && *upd.Scope != p.Scope {
		return nil, fmt.Errorf("%w: scope", ErrImmutableField)
	}

	changed := false
	if upd.Description != nil && *upd.Description != p.Description {
		p.Description = *upd.Description
		changed = true
	}
	if upd.Active != nil && *upd.Active != p.Active {
		p.Active = *upd.Active
		changed = true
	}
	if !changed {
		return p, nil
	}

	now := time.Now().UTC()
	p.UpdatedAt = &now
	if err := r.store.UpdatePolicy(ctx, p); err != nil {
		return nil, err
	}
	r.Invalidate()

	r.logger.Info("policy updated", "policy", p.Name, "active", p.Active)
	return p, nil
}

// Deactivate soft-deletes a policy by flipping its active flag off. Policies
// are never hard-deleted; past violations keep a resolvable reference.
func (r *Registry) Deactivate(ctx context.Context, id int64) (*Policy, error) {
	inactive := false
	return r.Update(ctx, id, Update{Active: &inactive})
}

// ResolveApplicable returns the active policies applicable to the given
// tenant, in creation order (oldest first). Evaluation order during
// enforcement follows this ordering, which determines which policy is
// reported when more than one would fail.
func (r *Registry) ResolveApplicable(ctx context.Context, orgID *int64) ([]*Policy, error) {
	all, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []*Policy
	for _, p := range all {
		if p.AppliesTo(orgID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Invalidate drops the cached policy list. Called synchronously by every
// write path; stale policy visibility is a correctness bug, so invalidation
// is never deferred to a timer.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// snapshot returns the cached full policy list, loading it from the store on
// a cache miss.
func (r *Registry) snapshot(ctx context.Context) ([]*Policy, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	all, err := r.store.ListPolicies(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	r.mu.Lock()
	r.cached = all
	r.mu.Unlock()
	return all, nil
}

// Update carries a partial policy update. Nil fields are left unchanged.
// ConditionType and Scope are present only so the admin surface can detect
// and reject attempts to change them.
type Update struct {
	Description   *string
	Active        *bool
	ConditionType *ConditionType
	Scope         *Scope
}

// validateNew checks the invariants of a policy definition before creation.
func validateNew(p *Policy) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if p.Scope == "" {
		p.Scope = ScopeGlobal
	}
	if !p.Scope.Valid() {
		return &ValidationError{Field: "scope", Message: fmt.Sprintf("unrecognized scope %q", p.Scope)}
	}
	if p.ConditionType == "" {
		return &ValidationError{Field: "condition_type", Message: "must not be empty"}
	}
	if p.Scope == ScopeOrganization && p.OrganizationID == nil {
		return &ValidationError{Field: "organization_id", Message: "required for organization-scoped policies"}
	}
	return nil
}
