package audit

import "time"

// Action names for audit entries. Entries also carry free-form actions from
// CRUD paths ("CREATE", "UPDATE"); these constants cover the governance
// transitions the enforcement coordinator writes.
const (
	// ActionPolicyViolation marks an entry recording a blocked transition.
	ActionPolicyViolation = "POLICY_VIOLATION"

	// ActionStatusChange marks an entry recording a successful transition.
	ActionStatusChange = "STATUS_CHANGE"

	// ActionCreate marks an entity creation.
	ActionCreate = "CREATE"

	// ActionUpdate marks an entity update.
	ActionUpdate = "UPDATE"
)

// Entity type names used in audit entries.
const (
	EntityModel     = "Model"
	EntityVersion   = "ModelVersion"
	EntityMetric    = "EvaluationMetric"
	EntityPolicy    = "Policy"
	EntityViolation = "PolicyViolation"
)

// Entry is one immutable audit log record. It captures successful actions as
// well as blocked ones, making it a superset of the violation log.
type Entry struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id"`

	// EntityType names the kind of entity the action concerned.
	EntityType string `json:"entity_type"`

	// EntityID identifies the entity, as a string so entries survive
	// whatever identifier scheme the entity uses.
	EntityID string `json:"entity_id"`

	// Action is the action name (see the Action constants).
	Action string `json:"action"`

	// Details is a structured payload describing the action.
	Details map[string]any `json:"details,omitempty"`

	// CreatedAt is the record timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Violation is one immutable record of a transition a policy blocked.
type Violation struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id"`

	// PolicyID references the policy that blocked the action.
	PolicyID int64 `json:"policy_id"`

	// PolicyName denormalizes the policy name at violation time, so reports
	// stay readable even if lookups against the policy store are unavailable.
	PolicyName string `json:"policy_name"`

	// ModelID references the model involved.
	ModelID int64 `json:"model_id"`

	// VersionID references the specific model version, when one was involved.
	VersionID *int64 `json:"version_id,omitempty"`

	// UserID references the acting user, when known.
	UserID *int64 `json:"user_id,omitempty"`

	// Action is the action that was attempted (e.g. "change_compliance_status").
	Action string `json:"action"`

	// Details is a structured payload: attempted status, prior status,
	// condition type, and the human-readable reason.
	Details map[string]any `json:"details,omitempty"`

	// CreatedAt is the record timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Query filters audit entries and violations for the read-only reporting
// surface. Zero values mean "no filter".
type Query struct {
	// EntityType filters entries by entity type.
	EntityType string `json:"entity_type"`

	// EntityID filters entries by entity identity.
	EntityID string `json:"entity_id"`

	// Action filters entries by action name.
	Action string `json:"action"`

	// ModelID filters violations by model.
	ModelID int64 `json:"model_id"`

	// PolicyID filters violations by policy.
	PolicyID int64 `json:"policy_id"`

	// Since and Until bound the record timestamp when non-zero.
	Since time.Time
	Until time.Time

	// Limit caps the number of returned records; 0 means the storage default.
	Limit int

	// Offset skips records for pagination.
	Offset int
}
