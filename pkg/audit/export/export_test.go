package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"veritas-hq/aegis/pkg/audit"
)

func sampleViolations() []*audit.Violation {
	userID := int64(7)
	return []*audit.Violation{
		{
			ID:         "v-1",
			PolicyID:   1,
			PolicyName: "evaluation-gate",
			ModelID:    2,
			UserID:     &userID,
			Action:     "change_compliance_status",
			Details:    map[string]any{"attempted_status": "approved"},
			CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:         "v-2",
			PolicyID:   3,
			PolicyName: "high-risk-gate",
			ModelID:    2,
			Action:     "change_compliance_status",
			CreatedAt:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestCSVExporter_ExportViolations(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(true)

	if err := exporter.ExportViolations(context.Background(), sampleViolations(), &buf); err != nil {
		t.Fatalf("ExportViolations() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse exported CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][2] != "policy_name" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][2] != "evaluation-gate" {
		t.Errorf("Expected policy name in row, got %q", rows[1][2])
	}
	if rows[1][5] != "7" {
		t.Errorf("Expected user_id 7, got %q", rows[1][5])
	}
	if rows[2][5] != "" {
		t.Errorf("Expected empty user_id for nil, got %q", rows[2][5])
	}
	if !strings.Contains(rows[1][7], "attempted_status") {
		t.Errorf("Expected details JSON in row, got %q", rows[1][7])
	}
	if rows[1][8] != "2026-03-01T12:00:00Z" {
		t.Errorf("Expected RFC3339 timestamp, got %q", rows[1][8])
	}
}

func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(false)

	if err := exporter.ExportViolations(context.Background(), sampleViolations(), &buf); err != nil {
		t.Fatalf("ExportViolations() failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse exported CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows without header, got %d", len(rows))
	}
}

func TestCSVExporter_ExportEntries(t *testing.T) {
	var buf bytes.Buffer
	entries := []*audit.Entry{
		{
			ID:         "e-1",
			EntityType: audit.EntityModel,
			EntityID:   "2",
			Action:     audit.ActionStatusChange,
			Details:    map[string]any{"from": "draft", "to": "under_review"},
			CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	if err := NewCSVExporter(true).ExportEntries(context.Background(), entries, &buf); err != nil {
		t.Fatalf("ExportEntries() failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse exported CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d", len(rows))
	}
	if rows[1][3] != audit.ActionStatusChange {
		t.Errorf("Expected action %q, got %q", audit.ActionStatusChange, rows[1][3])
	}
}

func TestJSONExporter_ExportViolations(t *testing.T) {
	var buf bytes.Buffer
	violations := sampleViolations()

	if err := NewJSONExporter(false).ExportViolations(context.Background(), violations, &buf); err != nil {
		t.Fatalf("ExportViolations() failed: %v", err)
	}

	var report ViolationReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse exported JSON: %v", err)
	}
	if report.Count != 2 || len(report.Violations) != 2 {
		t.Fatalf("Expected 2 violations, got count=%d len=%d", report.Count, len(report.Violations))
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected a generation timestamp")
	}
	if report.Violations[0].PolicyName != "evaluation-gate" {
		t.Errorf("Expected policy name to round-trip, got %q", report.Violations[0].PolicyName)
	}
}

func TestJSONExporter_ExportEntries(t *testing.T) {
	var buf bytes.Buffer
	entries := []*audit.Entry{{ID: "e-1", EntityType: audit.EntityModel, Action: audit.ActionCreate}}

	if err := NewJSONExporter(true).ExportEntries(context.Background(), entries, &buf); err != nil {
		t.Fatalf("ExportEntries() failed: %v", err)
	}

	var report EntryReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse exported JSON: %v", err)
	}
	if report.Count != 1 {
		t.Errorf("Expected count 1, got %d", report.Count)
	}
}
