package export

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"veritas-hq/aegis/pkg/audit"
)

// JSONExporter exports audit records as a JSON document.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// ViolationReport is the JSON export envelope for violations.
type ViolationReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Count       int                `json:"count"`
	Violations  []*audit.Violation `json:"violations"`
}

// EntryReport is the JSON export envelope for audit entries.
type EntryReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Count       int            `json:"count"`
	Entries     []*audit.Entry `json:"entries"`
}

// ExportViolations writes violation records to w as one JSON document.
func (e *JSONExporter) ExportViolations(ctx context.Context, violations []*audit.Violation, w io.Writer) error {
	report := &ViolationReport{
		GeneratedAt: time.Now().UTC(),
		Count:       len(violations),
		Violations:  violations,
	}
	if err := e.encode(w, report); err != nil {
		return &audit.ExportError{Format: "json", Count: len(violations), Cause: err}
	}
	return nil
}

// ExportEntries writes audit entries to w as one JSON document.
func (e *JSONExporter) ExportEntries(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	report := &EntryReport{
		GeneratedAt: time.Now().UTC(),
		Count:       len(entries),
		Entries:     entries,
	}
	if err := e.encode(w, report); err != nil {
		return &audit.ExportError{Format: "json", Count: len(entries), Cause: err}
	}
	return nil
}

func (e *JSONExporter) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
