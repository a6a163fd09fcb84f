package store

// SchemaVersion is the current database schema version. Opening a database
// with a different recorded version fails rather than migrating silently.
const SchemaVersion = 1

// Schema creates the governance tables. One database holds the registry,
// policies, and the audit trail so a single transaction can span all three.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS models (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	organization_id INTEGER,
	risk_level TEXT NOT NULL DEFAULT 'unclassified',
	domain TEXT NOT NULL DEFAULT '',
	potential_harm TEXT NOT NULL DEFAULT '',
	intended_purpose TEXT NOT NULL DEFAULT '',
	data_sources TEXT NOT NULL DEFAULT '',
	oversight_plan TEXT NOT NULL DEFAULT '',
	compliance_status TEXT NOT NULL DEFAULT 'draft',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_models_org ON models(organization_id);
CREATE INDEX IF NOT EXISTS idx_models_status ON models(compliance_status);

CREATE TABLE IF NOT EXISTS model_versions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	model_id INTEGER NOT NULL REFERENCES models(id),
	tag TEXT NOT NULL,
	artifact_path TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_versions_model ON model_versions(model_id);

CREATE TABLE IF NOT EXISTS evaluation_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id INTEGER NOT NULL REFERENCES model_versions(id),
	name TEXT NOT NULL,
	value REAL NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metrics_version ON evaluation_metrics(version_id);

CREATE TABLE IF NOT EXISTS policies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	scope TEXT NOT NULL DEFAULT 'global',
	condition_type TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	organization_id INTEGER,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_policies_active ON policies(active);

CREATE TABLE IF NOT EXISTS audit_entries (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	details TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_entries(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_entries(created_at);

CREATE TABLE IF NOT EXISTS policy_violations (
	id TEXT PRIMARY KEY,
	policy_id INTEGER NOT NULL,
	policy_name TEXT NOT NULL,
	model_id INTEGER NOT NULL,
	version_id INTEGER,
	user_id INTEGER,
	action TEXT NOT NULL,
	details TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_violations_model ON policy_violations(model_id);
CREATE INDEX IF NOT EXISTS idx_violations_policy ON policy_violations(policy_id);
CREATE INDEX IF NOT EXISTS idx_violations_created ON policy_violations(created_at);
`

// InsertSchemaVersion records the schema version on first initialization.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
