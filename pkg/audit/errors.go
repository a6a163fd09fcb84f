package audit

import "fmt"

// RecorderError reports a failure to append an audit or violation record.
// Enforcement treats any such failure as fatal for the enclosing transition
// (fail closed).
type RecorderError struct {
	Kind  string // "entry" or "violation"
	Cause error
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	return fmt.Sprintf("audit recorder: append %s: %v", e.Kind, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// ExportError reports a failure while exporting records.
type ExportError struct {
	Format string
	Count  int
	Cause  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("audit export [format=%s, records=%d]: %v", e.Format, e.Count, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}
