package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"veritas-hq/aegis/pkg/audit"
)

// CSVExporter exports audit records to CSV.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// ExportViolations writes violation records to w in CSV format. The details
// payload is flattened to a JSON string column.
func (e *CSVExporter) ExportViolations(ctx context.Context, violations []*audit.Violation, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		header := []string{"id", "policy_id", "policy_name", "model_id", "version_id", "user_id", "action", "details", "created_at"}
		if err := writer.Write(header); err != nil {
			return &audit.ExportError{Format: "csv", Count: len(violations), Cause: err}
		}
	}

	for _, v := range violations {
		row := []string{
			v.ID,
			strconv.FormatInt(v.PolicyID, 10),
			v.PolicyName,
			strconv.FormatInt(v.ModelID, 10),
			optionalID(v.VersionID),
			optionalID(v.UserID),
			v.Action,
			detailsJSON(v.Details),
			v.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return &audit.ExportError{Format: "csv", Count: len(violations), Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &audit.ExportError{Format: "csv", Count: len(violations), Cause: err}
	}
	return nil
}

// ExportEntries writes audit entries to w in CSV format.
func (e *CSVExporter) ExportEntries(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		header := []string{"id", "entity_type", "entity_id", "action", "details", "created_at"}
		if err := writer.Write(header); err != nil {
			return &audit.ExportError{Format: "csv", Count: len(entries), Cause: err}
		}
	}

	for _, entry := range entries {
		row := []string{
			entry.ID,
			entry.EntityType,
			entry.EntityID,
			entry.Action,
			detailsJSON(entry.Details),
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return &audit.ExportError{Format: "csv", Count: len(entries), Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &audit.ExportError{Format: "csv", Count: len(entries), Cause: err}
	}
	return nil
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func detailsJSON(details map[string]any) string {
	if details == nil {
		return ""
	}
	b, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(b)
}
