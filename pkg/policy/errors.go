package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrPolicyNotFound indicates a lookup for a policy that does not exist.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrDuplicateName indicates a create with a policy name already in use.
	ErrDuplicateName = errors.New("policy name already exists")

	// ErrImmutableField indicates an update attempting to change a field that
	// is fixed after creation (condition type or scope).
	ErrImmutableField = errors.New("field is immutable after creation")
)

// ValidationError reports an invalid policy definition (from the admin API or
// a seed file).
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid policy: %s: %s", e.Field, e.Message)
}
