package server

import (
	"net/http"
	"time"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/audit/export"
)

// auditQuery builds an audit.Query from the request's query parameters.
func auditQuery(r *http.Request) audit.Query {
	q := audit.Query{
		EntityType: r.URL.Query().Get("entity_type"),
		EntityID:   r.URL.Query().Get("entity_id"),
		Action:     r.URL.Query().Get("action"),
		Limit:      queryInt(r, "limit", 0),
		Offset:     queryInt(r, "offset", 0),
	}
	if id := queryInt64Ptr(r, "model_id"); id != nil {
		q.ModelID = *id
	}
	if id := queryInt64Ptr(r, "policy_id"); id != nil {
		q.PolicyID = *id
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.Since = t
		}
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.Until = t
		}
	}
	return q
}

// violationPage is the paginated violation listing envelope.
type violationPage struct {
	Total      int64              `json:"total"`
	Violations []*audit.Violation `json:"violations"`
}

func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request) {
	q := auditQuery(r)

	violations, err := s.store.QueryViolations(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "query violations", err)
		return
	}
	total, err := s.store.CountViolations(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "count violations", err)
		return
	}
	if violations == nil {
		violations = []*audit.Violation{}
	}
	writeJSON(w, http.StatusOK, violationPage{Total: total, Violations: violations})
}

// entryPage is the paginated audit entry listing envelope.
type entryPage struct {
	Total   int64          `json:"total"`
	Entries []*audit.Entry `json:"entries"`
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := auditQuery(r)

	entries, err := s.store.QueryEntries(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "query audit entries", err)
		return
	}
	total, err := s.store.CountEntries(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "count audit entries", err)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entryPage{Total: total, Entries: entries})
}

// handleExportViolations streams the filtered violation log in CSV (default)
// or JSON, selected by the format query parameter.
func (s *Server) handleExportViolations(w http.ResponseWriter, r *http.Request) {
	q := auditQuery(r)
	violations, err := s.store.QueryViolations(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "query violations", err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="violations.json"`)
		if err := export.NewJSONExporter(true).ExportViolations(r.Context(), violations, w); err != nil {
			s.logger.Error("violation export failed", "format", "json", "error", err)
		}
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="violations.csv"`)
		if err := export.NewCSVExporter(true).ExportViolations(r.Context(), violations, w); err != nil {
			s.logger.Error("violation export failed", "format", "csv", "error", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format")
	}
}

// handleExportAudit streams the filtered audit trail in CSV (default) or JSON.
func (s *Server) handleExportAudit(w http.ResponseWriter, r *http.Request) {
	q := auditQuery(r)
	entries, err := s.store.QueryEntries(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "query audit entries", err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="audit.json"`)
		if err := export.NewJSONExporter(true).ExportEntries(r.Context(), entries, w); err != nil {
			s.logger.Error("audit export failed", "format", "json", "error", err)
		}
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)
		if err := export.NewCSVExporter(true).ExportEntries(r.Context(), entries, w); err != nil {
			s.logger.Error("audit export failed", "format", "csv", "error", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format")
	}
}
