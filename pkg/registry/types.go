package registry

import "time"

// Model is a registered AI model under governance. Compliance status is
// mutated only through the enforcement coordinator.
type Model struct {
	// ID is the registry-assigned identifier.
	ID int64 `json:"id"`

	// Name is the unique, human-chosen model name.
	Name string `json:"name"`

	// Description is an optional free-text description.
	Description string `json:"description,omitempty"`

	// Owner identifies the team or person accountable for the model.
	Owner string `json:"owner"`

	// OrganizationID scopes the model to a tenant. Nil means the model
	// belongs to no specific organization.
	OrganizationID *int64 `json:"organization_id,omitempty"`

	// RiskLevel is the model's risk classification.
	RiskLevel RiskLevel `json:"risk_level"`

	// Domain is the application domain (e.g. "healthcare", "finance").
	Domain string `json:"domain,omitempty"`

	// PotentialHarm describes potential harms of deploying the model.
	PotentialHarm string `json:"potential_harm,omitempty"`

	// IntendedPurpose documents the model's intended purpose.
	IntendedPurpose string `json:"intended_purpose,omitempty"`

	// DataSources documents the training data provenance.
	DataSources string `json:"data_sources,omitempty"`

	// OversightPlan documents the human-oversight arrangements.
	OversightPlan string `json:"oversight_plan,omitempty"`

	// ComplianceStatus is the model's position in the compliance lifecycle.
	ComplianceStatus ComplianceStatus `json:"compliance_status"`

	// CreatedAt is when the model was registered.
	CreatedAt time.Time `json:"created_at"`
}

// Version is a single released artifact of a model.
type Version struct {
	// ID is the registry-assigned identifier.
	ID int64 `json:"id"`

	// ModelID references the owning model.
	ModelID int64 `json:"model_id"`

	// Tag is the human-readable version tag (e.g. "v1.2.0").
	Tag string `json:"tag"`

	// ArtifactPath is the storage location of the model artifact.
	ArtifactPath string `json:"artifact_path,omitempty"`

	// CreatedAt is when the version was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Metric is one evaluation measurement attached to a model version. The
// presence of metrics is the evidence some governance policies require before
// a model may be approved.
type Metric struct {
	// ID is the registry-assigned identifier.
	ID int64 `json:"id"`

	// VersionID references the measured version.
	VersionID int64 `json:"version_id"`

	// Name is the metric name (e.g. "accuracy", "f1_score").
	Name string `json:"name"`

	// Value is the measured value.
	Value float64 `json:"value"`

	// RecordedAt is when the measurement was recorded.
	RecordedAt time.Time `json:"recorded_at"`
}
