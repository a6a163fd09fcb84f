package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/registry"
)

// MemoryStore implements Store using in-memory maps. It is intended for
// testing only. Transactions are modeled by copying the state, applying the
// function to the copy, and swapping it in on success, under one store-wide
// lock; this gives serializable semantics, which is stronger than the SQLite
// backend needs to promise but convenient for tests.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState

	// failures maps an operation name to an error injected on the next call,
	// for exercising fail-closed behavior in tests.
	failures map[string]error
}

type memState struct {
	models     map[int64]*registry.Model
	versions   map[int64]*registry.Version
	metrics    map[int64]*registry.Metric
	policies   map[int64]*policy.Policy
	entries    []*audit.Entry
	violations []*audit.Violation

	nextModelID   int64
	nextVersionID int64
	nextMetricID  int64
	nextPolicyID  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memState{
			models:   make(map[int64]*registry.Model),
			versions: make(map[int64]*registry.Version),
			metrics:  make(map[int64]*registry.Metric),
			policies: make(map[int64]*policy.Policy),
		},
		failures: make(map[string]error),
	}
}

// FailOp injects an error for the named operation ("append_violation",
// "update_model_status", ...). Pass nil to clear. Test hook.
func (s *MemoryStore) FailOp(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
	} else {
		s.failures[op] = err
	}
}

func (s *MemoryStore) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		return NewStorageError("memory", op, err)
	}
	return nil
}

// WithTx applies fn to a copy of the state and swaps the copy in only when
// fn succeeds, so failures roll back every write.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&memTx{store: s, state: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

// PruneAuditEntries deletes entries older than cutoff, then trims to at most
// maxRecords of the newest entries when maxRecords > 0.
func (s *MemoryStore) PruneAuditEntries(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*audit.Entry
	var deleted int64
	for _, e := range s.state.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}

	if maxRecords > 0 && int64(len(kept)) > maxRecords {
		sort.Slice(kept, func(i, j int) bool { return kept[i].CreatedAt.After(kept[j].CreatedAt) })
		deleted += int64(len(kept)) - maxRecords
		kept = kept[:maxRecords]
	}

	s.state.entries = kept
	return deleted, nil
}

// Close releases nothing; it exists to satisfy Store.
func (s *MemoryStore) Close() error { return nil }

// Store-level domain operations run against the live state under the lock.

func (s *MemoryStore) run(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{store: s, state: s.state})
}

func (s *MemoryStore) CreateModel(ctx context.Context, m *registry.Model) error {
	return s.run(func(tx Tx) error { return tx.CreateModel(ctx, m) })
}

func (s *MemoryStore) GetModel(ctx context.Context, id int64) (*registry.Model, error) {
	var out *registry.Model
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.GetModel(ctx, id)
		return err
	})
	return out, err
}

func (s *MemoryStore) GetModelByName(ctx context.Context, name string) (*registry.Model, error) {
	var out *registry.Model
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.GetModelByName(ctx, name)
		return err
	})
	return out, err
}

func (s *MemoryStore) ListModels(ctx context.Context, f ModelFilter) ([]*registry.Model, error) {
	var out []*registry.Model
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.ListModels(ctx, f)
		return err
	})
	return out, err
}

func (s *MemoryStore) UpdateModelStatus(ctx context.Context, id int64, status registry.ComplianceStatus) error {
	return s.run(func(tx Tx) error { return tx.UpdateModelStatus(ctx, id, status) })
}

func (s *MemoryStore) CreateVersion(ctx context.Context, v *registry.Version) error {
	return s.run(func(tx Tx) error { return tx.CreateVersion(ctx, v) })
}

func (s *MemoryStore) ListVersions(ctx context.Context, modelID int64) ([]*registry.Version, error) {
	var out []*registry.Version
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.ListVersions(ctx, modelID)
		return err
	})
	return out, err
}

func (s *MemoryStore) CreateMetric(ctx context.Context, m *registry.Metric) error {
	return s.run(func(tx Tx) error { return tx.CreateMetric(ctx, m) })
}

func (s *MemoryStore) ListMetrics(ctx context.Context, versionID int64) ([]*registry.Metric, error) {
	var out []*registry.Metric
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.ListMetrics(ctx, versionID)
		return err
	})
	return out, err
}

func (s *MemoryStore) EvidenceCount(ctx context.Context, modelID int64) (int, error) {
	var out int
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.EvidenceCount(ctx, modelID)
		return err
	})
	return out, err
}

func (s *MemoryStore) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	return s.run(func(tx Tx) error { return tx.CreatePolicy(ctx, p) })
}

func (s *MemoryStore) GetPolicy(ctx context.Context, id int64) (*policy.Policy, error) {
	var out *policy.Policy
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.GetPolicy(ctx, id)
		return err
	})
	return out, err
}

func (s *MemoryStore) GetPolicyByName(ctx context.Context, name string) (*policy.Policy, error) {
	var out *policy.Policy
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.GetPolicyByName(ctx, name)
		return err
	})
	return out, err
}

func (s *MemoryStore) ListPolicies(ctx context.Context, f policy.Filter) ([]*policy.Policy, error) {
	var out []*policy.Policy
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.ListPolicies(ctx, f)
		return err
	})
	return out, err
}

func (s *MemoryStore) ListApplicablePolicies(ctx context.Context, orgID *int64) ([]*policy.Policy, error) {
	var out []*policy.Policy
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.ListApplicablePolicies(ctx, orgID)
		return err
	})
	return out, err
}

func (s *MemoryStore) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	return s.run(func(tx Tx) error { return tx.UpdatePolicy(ctx, p) })
}

func (s *MemoryStore) AppendEntry(ctx context.Context, e *audit.Entry) error {
	return s.run(func(tx Tx) error { return tx.AppendEntry(ctx, e) })
}

func (s *MemoryStore) AppendViolation(ctx context.Context, v *audit.Violation) error {
	return s.run(func(tx Tx) error { return tx.AppendViolation(ctx, v) })
}

func (s *MemoryStore) QueryEntries(ctx context.Context, q audit.Query) ([]*audit.Entry, error) {
	var out []*audit.Entry
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.QueryEntries(ctx, q)
		return err
	})
	return out, err
}

func (s *MemoryStore) QueryViolations(ctx context.Context, q audit.Query) ([]*audit.Violation, error) {
	var out []*audit.Violation
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.QueryViolations(ctx, q)
		return err
	})
	return out, err
}

func (s *MemoryStore) CountEntries(ctx context.Context, q audit.Query) (int64, error) {
	var out int64
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.CountEntries(ctx, q)
		return err
	})
	return out, err
}

func (s *MemoryStore) CountViolations(ctx context.Context, q audit.Query) (int64, error) {
	var out int64
	err := s.run(func(tx Tx) error {
		var err error
		out, err = tx.CountViolations(ctx, q)
		return err
	})
	return out, err
}

// memTx implements Tx over a memState. Failure injection is consulted on
// every write so tests can force mid-transaction errors.
type memTx struct {
	store *MemoryStore
	state *memState
}

func (t *memTx) CreateModel(ctx context.Context, m *registry.Model) error {
	if err := t.store.failure("create_model"); err != nil {
		return err
	}
	for _, existing := range t.state.models {
		if existing.Name == m.Name {
			return registry.ErrDuplicateName
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ComplianceStatus == "" {
		m.ComplianceStatus = registry.StatusDraft
	}
	if m.RiskLevel == "" {
		m.RiskLevel = registry.RiskUnclassified
	}
	t.state.nextModelID++
	m.ID = t.state.nextModelID
	cp := *m
	t.state.models[m.ID] = &cp
	return nil
}

func (t *memTx) GetModel(ctx context.Context, id int64) (*registry.Model, error) {
	m, ok := t.state.models[id]
	if !ok {
		return nil, registry.ErrModelNotFound
	}
	cp := *m
	return &cp, nil
}

func (t *memTx) GetModelByName(ctx context.Context, name string) (*registry.Model, error) {
	for _, m := range t.state.models {
		if m.Name == name {
			cp := *m
			return &cp, nil
		}
	}
	return nil, registry.ErrModelNotFound
}

func (t *memTx) ListModels(ctx context.Context, f ModelFilter) ([]*registry.Model, error) {
	var out []*registry.Model
	for _, m := range t.state.models {
		if f.OrganizationID != nil && (m.OrganizationID == nil || *m.OrganizationID != *f.OrganizationID) {
			continue
		}
		if f.ComplianceStatus != "" && m.ComplianceStatus != f.ComplianceStatus {
			continue
		}
		if f.RiskLevel != "" && m.RiskLevel != f.RiskLevel {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) UpdateModelStatus(ctx context.Context, id int64, status registry.ComplianceStatus) error {
	if err := t.store.failure("update_model_status"); err != nil {
		return err
	}
	m, ok := t.state.models[id]
	if !ok {
		return registry.ErrModelNotFound
	}
	m.ComplianceStatus = status
	return nil
}

func (t *memTx) CreateVersion(ctx context.Context, v *registry.Version) error {
	if err := t.store.failure("create_version"); err != nil {
		return err
	}
	if _, ok := t.state.models[v.ModelID]; !ok {
		return registry.ErrModelNotFound
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	t.state.nextVersionID++
	v.ID = t.state.nextVersionID
	cp := *v
	t.state.versions[v.ID] = &cp
	return nil
}

func (t *memTx) ListVersions(ctx context.Context, modelID int64) ([]*registry.Version, error) {
	var out []*registry.Version
	for _, v := range t.state.versions {
		if v.ModelID == modelID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CreateMetric(ctx context.Context, m *registry.Metric) error {
	if err := t.store.failure("create_metric"); err != nil {
		return err
	}
	if _, ok := t.state.versions[m.VersionID]; !ok {
		return registry.ErrVersionNotFound
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}
	t.state.nextMetricID++
	m.ID = t.state.nextMetricID
	cp := *m
	t.state.metrics[m.ID] = &cp
	return nil
}

func (t *memTx) ListMetrics(ctx context.Context, versionID int64) ([]*registry.Metric, error) {
	var out []*registry.Metric
	for _, m := range t.state.metrics {
		if m.VersionID == versionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) EvidenceCount(ctx context.Context, modelID int64) (int, error) {
	if err := t.store.failure("evidence_count"); err != nil {
		return 0, err
	}
	count := 0
	for _, m := range t.state.metrics {
		v, ok := t.state.versions[m.VersionID]
		if ok && v.ModelID == modelID {
			count++
		}
	}
	return count, nil
}

func (t *memTx) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	if err := t.store.failure("create_policy"); err != nil {
		return err
	}
	for _, existing := range t.state.policies {
		if existing.Name == p.Name {
			return policy.ErrDuplicateName
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	t.state.nextPolicyID++
	p.ID = t.state.nextPolicyID
	cp := *p
	t.state.policies[p.ID] = &cp
	return nil
}

func (t *memTx) GetPolicy(ctx context.Context, id int64) (*policy.Policy, error) {
	p, ok := t.state.policies[id]
	if !ok {
		return nil, policy.ErrPolicyNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) GetPolicyByName(ctx context.Context, name string) (*policy.Policy, error) {
	for _, p := range t.state.policies {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, policy.ErrPolicyNotFound
}

func (t *memTx) ListPolicies(ctx context.Context, f policy.Filter) ([]*policy.Policy, error) {
	if err := t.store.failure("list_policies"); err != nil {
		return nil, err
	}
	var out []*policy.Policy
	for _, p := range t.state.policies {
		if f.Active != nil && p.Active != *f.Active {
			continue
		}
		if f.Scope != "" && p.Scope != f.Scope {
			continue
		}
		if f.OrganizationID != nil && p.Scope != policy.ScopeGlobal && p.OrganizationID != nil && *p.OrganizationID != *f.OrganizationID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sortPolicies(out)
	return out, nil
}

func (t *memTx) ListApplicablePolicies(ctx context.Context, orgID *int64) ([]*policy.Policy, error) {
	if err := t.store.failure("list_applicable_policies"); err != nil {
		return nil, err
	}
	var out []*policy.Policy
	for _, p := range t.state.policies {
		if p.AppliesTo(orgID) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortPolicies(out)
	return out, nil
}

func (t *memTx) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	if err := t.store.failure("update_policy"); err != nil {
		return err
	}
	if _, ok := t.state.policies[p.ID]; !ok {
		return policy.ErrPolicyNotFound
	}
	cp := *p
	t.state.policies[p.ID] = &cp
	return nil
}

func (t *memTx) AppendEntry(ctx context.Context, e *audit.Entry) error {
	if err := t.store.failure("append_entry"); err != nil {
		return err
	}
	cp := *e
	t.state.entries = append(t.state.entries, &cp)
	return nil
}

func (t *memTx) AppendViolation(ctx context.Context, v *audit.Violation) error {
	if err := t.store.failure("append_violation"); err != nil {
		return err
	}
	cp := *v
	t.state.violations = append(t.state.violations, &cp)
	return nil
}

func (t *memTx) QueryEntries(ctx context.Context, q audit.Query) ([]*audit.Entry, error) {
	var out []*audit.Entry
	for _, e := range t.state.entries {
		if matchEntry(e, q) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginateEntries(out, q), nil
}

func (t *memTx) QueryViolations(ctx context.Context, q audit.Query) ([]*audit.Violation, error) {
	var out []*audit.Violation
	for _, v := range t.state.violations {
		if matchViolation(v, q) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginateViolations(out, q), nil
}

func (t *memTx) CountEntries(ctx context.Context, q audit.Query) (int64, error) {
	var count int64
	for _, e := range t.state.entries {
		if matchEntry(e, q) {
			count++
		}
	}
	return count, nil
}

func (t *memTx) CountViolations(ctx context.Context, q audit.Query) (int64, error) {
	var count int64
	for _, v := range t.state.violations {
		if matchViolation(v, q) {
			count++
		}
	}
	return count, nil
}

// --- helpers ---

func (st *memState) clone() *memState {
	next := &memState{
		models:        make(map[int64]*registry.Model, len(st.models)),
		versions:      make(map[int64]*registry.Version, len(st.versions)),
		metrics:       make(map[int64]*registry.Metric, len(st.metrics)),
		policies:      make(map[int64]*policy.Policy, len(st.policies)),
		entries:       append([]*audit.Entry(nil), st.entries...),
		violations:    append([]*audit.Violation(nil), st.violations...),
		nextModelID:   st.nextModelID,
		nextVersionID: st.nextVersionID,
		nextMetricID:  st.nextMetricID,
		nextPolicyID:  st.nextPolicyID,
	}
	for id, m := range st.models {
		cp := *m
		next.models[id] = &cp
	}
	for id, v := range st.versions {
		cp := *v
		next.versions[id] = &cp
	}
	for id, m := range st.metrics {
		cp := *m
		next.metrics[id] = &cp
	}
	for id, p := range st.policies {
		cp := *p
		next.policies[id] = &cp
	}
	return next
}

func sortPolicies(ps []*policy.Policy) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].ID < ps[j].ID
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}

func matchEntry(e *audit.Entry, q audit.Query) bool {
	if q.EntityType != "" && e.EntityType != q.EntityType {
		return false
	}
	if q.EntityID != "" && e.EntityID != q.EntityID {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if !q.Since.IsZero() && e.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !e.CreatedAt.Before(q.Until) {
		return false
	}
	return true
}

func matchViolation(v *audit.Violation, q audit.Query) bool {
	if q.ModelID != 0 && v.ModelID != q.ModelID {
		return false
	}
	if q.PolicyID != 0 && v.PolicyID != q.PolicyID {
		return false
	}
	if q.Action != "" && v.Action != q.Action {
		return false
	}
	if !q.Since.IsZero() && v.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !v.CreatedAt.Before(q.Until) {
		return false
	}
	return true
}

func paginateEntries(out []*audit.Entry, q audit.Query) []*audit.Entry {
	start := q.Offset
	if start > len(out) {
		return nil
	}
	out = out[start:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func paginateViolations(out []*audit.Violation, q audit.Query) []*audit.Violation {
	start := q.Offset
	if start > len(out) {
		return nil
	}
	out = out[start:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Tx    = (*memTx)(nil)
	_ Tx    = (*sqliteTx)(nil)
)
