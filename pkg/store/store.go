package store

import (
	"context"
	"time"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/registry"
)

// ModelFilter selects models for list operations.
type ModelFilter struct {
	// OrganizationID filters by tenant when non-nil.
	OrganizationID *int64

	// ComplianceStatus filters by lifecycle status when non-empty.
	ComplianceStatus registry.ComplianceStatus

	// RiskLevel filters by risk classification when non-empty.
	RiskLevel registry.RiskLevel
}

// Tx is one consistent view of the governance database. Every method a
// transition needs is here, so an enforcement pass never leaves its unit of
// work. Store embeds Tx: outside a transaction the same operations run in
// auto-commit mode.
type Tx interface {
	// Model registry.
	CreateModel(ctx context.Context, m *registry.Model) error
	GetModel(ctx context.Context, id int64) (*registry.Model, error)
	GetModelByName(ctx context.Context, name string) (*registry.Model, error)
	ListModels(ctx context.Context, f ModelFilter) ([]*registry.Model, error)
	UpdateModelStatus(ctx context.Context, id int64, status registry.ComplianceStatus) error

	CreateVersion(ctx context.Context, v *registry.Version) error
	ListVersions(ctx context.Context, modelID int64) ([]*registry.Version, error)
	CreateMetric(ctx context.Context, m *registry.Metric) error
	ListMetrics(ctx context.Context, versionID int64) ([]*registry.Metric, error)

	// EvidenceCount returns the total number of evaluation metrics recorded
	// across all versions of a model. Predicates consume this instead of
	// touching storage themselves.
	EvidenceCount(ctx context.Context, modelID int64) (int, error)

	// Policies. ListApplicablePolicies returns active policies applicable to
	// the tenant in creation order; enforcement calls it inside the same Tx
	// as the model read, which is what makes concurrent transition attempts
	// serialize correctly.
	policy.Store
	ListApplicablePolicies(ctx context.Context, orgID *int64) ([]*policy.Policy, error)

	// Append-only audit trail.
	audit.Sink
	audit.Reader
}

// Store is the full persistence boundary. WithTx runs fn inside one
// transaction; if fn returns an error or the commit fails, every write made
// through the Tx is rolled back.
type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// PruneAuditEntries deletes audit entries older than cutoff, keeping at
	// most maxRecords of the newest entries when maxRecords > 0. This is the
	// only deletion path into the audit trail and exists solely for retention
	// maintenance; violations are never pruned.
	PruneAuditEntries(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error)

	Close() error
}
