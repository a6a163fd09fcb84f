package store

import "fmt"

// StorageError wraps a backend failure with the operation that produced it.
// Callers inside an enforcement transaction must treat any StorageError as a
// hard failure: the transition is not granted.
type StorageError struct {
	Backend   string // "sqlite" or "memory"
	Operation string // operation that failed ("create_model", "append_violation", ...)
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
