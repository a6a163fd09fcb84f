package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Both SQLite drivers are linked; the configured driver name selects
	// between them ("sqlite3" = CGO, "sqlite" = pure Go).
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/registry"
)

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver is the database/sql driver name: "sqlite" (pure Go, default)
	// or "sqlite3" (CGO).
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/governance.db",
		Driver:       "sqlite",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store on a single SQLite database.
type SQLiteStore struct {
	queries
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the governance database and
// initializes the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite"
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		queries: queries{db: db},
		db:      db,
		config:  config,
		logger:  logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas, creates the schema, and verifies the schema
// version.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return NewStorageError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// WithTx runs fn inside one database transaction. Any error from fn, or from
// the commit itself, rolls back every write made through the Tx.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "begin_tx", err)
	}

	if err := fn(&sqliteTx{queries: queries{db: sqlTx}}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return NewStorageError("sqlite", "commit", err)
	}
	return nil
}

// PruneAuditEntries deletes audit entries older than cutoff and, when
// maxRecords > 0, trims the table down to the newest maxRecords entries.
func (s *SQLiteStore) PruneAuditEntries(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error) {
	var deleted int64

	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_entries WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, NewStorageError("sqlite", "prune_audit", err)
	}
	n, _ := res.RowsAffected()
	deleted += n

	if maxRecords > 0 {
		res, err = s.db.ExecContext(ctx, `
			DELETE FROM audit_entries WHERE id NOT IN (
				SELECT id FROM audit_entries ORDER BY created_at DESC LIMIT ?
			)`, maxRecords)
		if err != nil {
			return deleted, NewStorageError("sqlite", "prune_audit_max", err)
		}
		n, _ = res.RowsAffected()
		deleted += n
	}

	return deleted, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteTx is a transaction-scoped view of the database.
type sqliteTx struct {
	queries
}

// dbtx abstracts *sql.DB and *sql.Tx so every query runs identically in and
// out of a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every domain operation. SQLiteStore embeds it over *sql.DB
// (auto-commit) and sqliteTx embeds it over *sql.Tx.
type queries struct {
	db dbtx
}

// --- model registry ---

const modelColumns = `id, name, description, owner, organization_id, risk_level, domain,
	potential_harm, intended_purpose, data_sources, oversight_plan, compliance_status, created_at`

// CreateModel persists a new model. Name uniqueness violations surface as
// registry.ErrDuplicateName.
func (q queries) CreateModel(ctx context.Context, m *registry.Model) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ComplianceStatus == "" {
		m.ComplianceStatus = registry.StatusDraft
	}
	if m.RiskLevel == "" {
		m.RiskLevel = registry.RiskUnclassified
	}

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO models (name, description, owner, organization_id, risk_level, domain,
			potential_harm, intended_purpose, data_sources, oversight_plan, compliance_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Description, m.Owner, m.OrganizationID, string(m.RiskLevel), m.Domain,
		m.PotentialHarm, m.IntendedPurpose, m.DataSources, m.OversightPlan,
		string(m.ComplianceStatus), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return registry.ErrDuplicateName
		}
		return NewStorageError("sqlite", "create_model", err)
	}

	m.ID, err = res.LastInsertId()
	if err != nil {
		return NewStorageError("sqlite", "create_model", err)
	}
	return nil
}

// GetModel retrieves a model by ID.
func (q queries) GetModel(ctx context.Context, id int64) (*registry.Model, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE id = ?`, id)
	return scanModel(row)
}

// GetModelByName retrieves a model by its unique name.
func (q queries) GetModelByName(ctx context.Context, name string) (*registry.Model, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE name = ?`, name)
	return scanModel(row)
}

// ListModels returns models matching the filter, ordered by creation.
func (q queries) ListModels(ctx context.Context, f ModelFilter) ([]*registry.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM models`
	var conds []string
	var args []any

	if f.OrganizationID != nil {
		conds = append(conds, "organization_id = ?")
		args = append(args, *f.OrganizationID)
	}
	if f.ComplianceStatus != "" {
		conds = append(conds, "compliance_status = ?")
		args = append(args, string(f.ComplianceStatus))
	}
	if f.RiskLevel != "" {
		conds = append(conds, "risk_level = ?")
		args = append(args, string(f.RiskLevel))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_models", err)
	}
	defer rows.Close()

	var models []*registry.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_models", err)
	}
	return models, nil
}

// UpdateModelStatus writes a new compliance status. This is reached only
// through the enforcement coordinator, inside its transaction.
func (q queries) UpdateModelStatus(ctx context.Context, id int64, status registry.ComplianceStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE models SET compliance_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return NewStorageError("sqlite", "update_model_status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "update_model_status", err)
	}
	if n == 0 {
		return registry.ErrModelNotFound
	}
	return nil
}

// CreateVersion records a new model version.
func (q queries) CreateVersion(ctx context.Context, v *registry.Version) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO model_versions (model_id, tag, artifact_path, created_at)
		VALUES (?, ?, ?, ?)`,
		v.ModelID, v.Tag, v.ArtifactPath, v.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_version", err)
	}
	v.ID, err = res.LastInsertId()
	if err != nil {
		return NewStorageError("sqlite", "create_version", err)
	}
	return nil
}

// ListVersions returns the versions of a model, oldest first.
func (q queries) ListVersions(ctx context.Context, modelID int64) ([]*registry.Version, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, model_id, tag, artifact_path, created_at
		FROM model_versions WHERE model_id = ? ORDER BY created_at, id`, modelID)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_versions", err)
	}
	defer rows.Close()

	var versions []*registry.Version
	for rows.Next() {
		v := &registry.Version{}
		if err := rows.Scan(&v.ID, &v.ModelID, &v.Tag, &v.ArtifactPath, &v.CreatedAt); err != nil {
			return nil, NewStorageError("sqlite", "list_versions", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_versions", err)
	}
	return versions, nil
}

// CreateMetric attaches an evaluation metric to a version.
func (q queries) CreateMetric(ctx context.Context, m *registry.Metric) error {
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO evaluation_metrics (version_id, name, value, recorded_at)
		VALUES (?, ?, ?, ?)`,
		m.VersionID, m.Name, m.Value, m.RecordedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_metric", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return NewStorageError("sqlite", "create_metric", err)
	}
	return nil
}

// ListMetrics returns the metrics recorded against a version.
func (q queries) ListMetrics(ctx context.Context, versionID int64) ([]*registry.Metric, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, version_id, name, value, recorded_at
		FROM evaluation_metrics WHERE version_id = ? ORDER BY recorded_at, id`, versionID)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_metrics", err)
	}
	defer rows.Close()

	var metrics []*registry.Metric
	for rows.Next() {
		m := &registry.Metric{}
		if err := rows.Scan(&m.ID, &m.VersionID, &m.Name, &m.Value, &m.RecordedAt); err != nil {
			return nil, NewStorageError("sqlite", "list_metrics", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_metrics", err)
	}
	return metrics, nil
}

// EvidenceCount counts evaluation metrics across all versions of a model.
func (q queries) EvidenceCount(ctx context.Context, modelID int64) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM evaluation_metrics em
		JOIN model_versions mv ON em.version_id = mv.id
		WHERE mv.model_id = ?`, modelID).Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "evidence_count", err)
	}
	return count, nil
}

// --- policies ---

const policyColumns = `id, name, description, scope, condition_type, active, organization_id, created_at, updated_at`

// CreatePolicy persists a new policy. Duplicate names fail with
// policy.ErrDuplicateName.
func (q queries) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO policies (name, description, scope, condition_type, active, organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, string(p.Scope), string(p.ConditionType),
		boolToInt(p.Active), p.OrganizationID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return policy.ErrDuplicateName
		}
		return NewStorageError("sqlite", "create_policy", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return NewStorageError("sqlite", "create_policy", err)
	}
	return nil
}

// GetPolicy retrieves a policy by ID.
func (q queries) GetPolicy(ctx context.Context, id int64) (*policy.Policy, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policies WHERE id = ?`, id)
	return scanPolicy(row)
}

// GetPolicyByName retrieves a policy by its unique name.
func (q queries) GetPolicyByName(ctx context.Context, name string) (*policy.Policy, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policies WHERE name = ?`, name)
	return scanPolicy(row)
}

// ListPolicies returns policies matching the filter in creation order.
func (q queries) ListPolicies(ctx context.Context, f policy.Filter) ([]*policy.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies`
	var conds []string
	var args []any

	if f.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, boolToInt(*f.Active))
	}
	if f.Scope != "" {
		conds = append(conds, "scope = ?")
		args = append(args, string(f.Scope))
	}
	if f.OrganizationID != nil {
		conds = append(conds, "(scope = 'global' OR organization_id IS NULL OR organization_id = ?)")
		args = append(args, *f.OrganizationID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	return q.queryPolicies(ctx, query, args...)
}

// ListApplicablePolicies returns the active policies that apply to the given
// tenant, in creation order. This is the enforcement read path and runs on
// whatever dbtx it is called on, so inside WithTx it shares the transaction
// with the model read and the violation write.
func (q queries) ListApplicablePolicies(ctx context.Context, orgID *int64) ([]*policy.Policy, error) {
	if orgID == nil {
		return q.queryPolicies(ctx, `
			SELECT `+policyColumns+` FROM policies
			WHERE active = 1 AND (scope = 'global' OR organization_id IS NULL)
			ORDER BY created_at, id`)
	}
	return q.queryPolicies(ctx, `
		SELECT `+policyColumns+` FROM policies
		WHERE active = 1 AND (scope = 'global' OR organization_id IS NULL OR organization_id = ?)
		ORDER BY created_at, id`, *orgID)
}

// UpdatePolicy writes the mutable fields of a policy.
func (q queries) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE policies SET description = ?, active = ?, updated_at = ? WHERE id = ?`,
		p.Description, boolToInt(p.Active), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return NewStorageError("sqlite", "update_policy", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "update_policy", err)
	}
	if n == 0 {
		return policy.ErrPolicyNotFound
	}
	return nil
}

func (q queries) queryPolicies(ctx context.Context, query string, args ...any) ([]*policy.Policy, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_policies", err)
	}
	defer rows.Close()

	var policies []*policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_policies", err)
	}
	return policies, nil
}

// --- audit trail ---

// AppendEntry appends one audit entry.
func (q queries) AppendEntry(ctx context.Context, e *audit.Entry) error {
	details, err := marshalDetails(e.Details)
	if err != nil {
		return NewStorageError("sqlite", "append_entry", err)
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, entity_type, entity_id, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.EntityType, e.EntityID, e.Action, details, e.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "append_entry", err)
	}
	return nil
}

// AppendViolation appends one policy violation record.
func (q queries) AppendViolation(ctx context.Context, v *audit.Violation) error {
	details, err := marshalDetails(v.Details)
	if err != nil {
		return NewStorageError("sqlite", "append_violation", err)
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO policy_violations (id, policy_id, policy_name, model_id, version_id, user_id, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.PolicyID, v.PolicyName, v.ModelID, v.VersionID, v.UserID, v.Action, details, v.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "append_violation", err)
	}
	return nil
}

// QueryEntries returns audit entries matching the query, newest first.
func (q queries) QueryEntries(ctx context.Context, aq audit.Query) ([]*audit.Entry, error) {
	query := `SELECT id, entity_type, entity_id, action, details, created_at FROM audit_entries`
	where, args := entryWhere(aq)
	query += where + " ORDER BY created_at DESC" + limitClause(aq)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query_entries", err)
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		e := &audit.Entry{}
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, NewStorageError("sqlite", "query_entries", err)
		}
		if err := unmarshalDetails(details, &e.Details); err != nil {
			return nil, NewStorageError("sqlite", "query_entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query_entries", err)
	}
	return entries, nil
}

// QueryViolations returns violation records matching the query, newest first.
func (q queries) QueryViolations(ctx context.Context, aq audit.Query) ([]*audit.Violation, error) {
	query := `SELECT id, policy_id, policy_name, model_id, version_id, user_id, action, details, created_at FROM policy_violations`
	where, args := violationWhere(aq)
	query += where + " ORDER BY created_at DESC" + limitClause(aq)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query_violations", err)
	}
	defer rows.Close()

	var violations []*audit.Violation
	for rows.Next() {
		v := &audit.Violation{}
		var details sql.NullString
		if err := rows.Scan(&v.ID, &v.PolicyID, &v.PolicyName, &v.ModelID, &v.VersionID, &v.UserID, &v.Action, &details, &v.CreatedAt); err != nil {
			return nil, NewStorageError("sqlite", "query_violations", err)
		}
		if err := unmarshalDetails(details, &v.Details); err != nil {
			return nil, NewStorageError("sqlite", "query_violations", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query_violations", err)
	}
	return violations, nil
}

// CountEntries counts audit entries matching the query.
func (q queries) CountEntries(ctx context.Context, aq audit.Query) (int64, error) {
	where, args := entryWhere(aq)
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`+where, args...).Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "count_entries", err)
	}
	return count, nil
}

// CountViolations counts violation records matching the query.
func (q queries) CountViolations(ctx context.Context, aq audit.Query) (int64, error) {
	where, args := violationWhere(aq)
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policy_violations`+where, args...).Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "count_violations", err)
	}
	return count, nil
}

// --- helpers ---

func entryWhere(aq audit.Query) (string, []any) {
	var conds []string
	var args []any
	if aq.EntityType != "" {
		conds = append(conds, "entity_type = ?")
		args = append(args, aq.EntityType)
	}
	if aq.EntityID != "" {
		conds = append(conds, "entity_id = ?")
		args = append(args, aq.EntityID)
	}
	if aq.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, aq.Action)
	}
	if !aq.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, aq.Since.UTC())
	}
	if !aq.Until.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, aq.Until.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func violationWhere(aq audit.Query) (string, []any) {
	var conds []string
	var args []any
	if aq.ModelID != 0 {
		conds = append(conds, "model_id = ?")
		args = append(args, aq.ModelID)
	}
	if aq.PolicyID != 0 {
		conds = append(conds, "policy_id = ?")
		args = append(args, aq.PolicyID)
	}
	if aq.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, aq.Action)
	}
	if !aq.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, aq.Since.UTC())
	}
	if !aq.Until.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, aq.Until.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func limitClause(aq audit.Query) string {
	limit := 100
	if aq.Limit > 0 {
		limit = aq.Limit
	}
	clause := fmt.Sprintf(" LIMIT %d", limit)
	if aq.Offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", aq.Offset)
	}
	return clause
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (*registry.Model, error) {
	m := &registry.Model{}
	var risk, status string
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Owner, &m.OrganizationID, &risk, &m.Domain,
		&m.PotentialHarm, &m.IntendedPurpose, &m.DataSources, &m.OversightPlan, &status, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, registry.ErrModelNotFound
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "scan_model", err)
	}
	m.RiskLevel = registry.RiskLevel(risk)
	m.ComplianceStatus = registry.ComplianceStatus(status)
	return m, nil
}

func scanPolicy(row rowScanner) (*policy.Policy, error) {
	p := &policy.Policy{}
	var scope, cond string
	var active int
	err := row.Scan(&p.ID, &p.Name, &p.Description, &scope, &cond, &active, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, policy.ErrPolicyNotFound
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "scan_policy", err)
	}
	p.Scope = policy.Scope(scope)
	p.ConditionType = policy.ConditionType(cond)
	p.Active = active != 0
	return p, nil
}

func marshalDetails(details map[string]any) (any, error) {
	if details == nil {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalDetails(raw sql.NullString, out *map[string]any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), out)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation detects a UNIQUE constraint failure from either driver
// without depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
