package registry

import "errors"

var (
	// ErrInvalidStatus indicates a proposed compliance status outside the
	// recognized lifecycle enumeration. Transition requests failing with this
	// error are rejected before any policy evaluation runs.
	ErrInvalidStatus = errors.New("invalid compliance status")

	// ErrInvalidRiskLevel indicates a risk level outside the taxonomy.
	ErrInvalidRiskLevel = errors.New("invalid risk level")

	// ErrModelNotFound indicates a lookup for a model that does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrVersionNotFound indicates a lookup for a model version that does not exist.
	ErrVersionNotFound = errors.New("model version not found")

	// ErrDuplicateName indicates a create with a name already in use.
	ErrDuplicateName = errors.New("model name already exists")
)
