package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/registry"
	"veritas-hq/aegis/pkg/store"
)

// createModelRequest is the POST /api/v1/models body.
type createModelRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Owner           string `json:"owner"`
	OrganizationID  *int64 `json:"organization_id"`
	RiskLevel       string `json:"risk_level"`
	Domain          string `json:"domain"`
	PotentialHarm   string `json:"potential_harm"`
	IntendedPurpose string `json:"intended_purpose"`
	DataSources     string `json:"data_sources"`
	OversightPlan   string `json:"oversight_plan"`
}

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	risk, err := registry.ParseRiskLevel(req.RiskLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m := &registry.Model{
		Name:             req.Name,
		Description:      req.Description,
		Owner:            req.Owner,
		OrganizationID:   req.OrganizationID,
		RiskLevel:        risk,
		Domain:           req.Domain,
		PotentialHarm:    req.PotentialHarm,
		IntendedPurpose:  req.IntendedPurpose,
		DataSources:      req.DataSources,
		OversightPlan:    req.OversightPlan,
		ComplianceStatus: registry.StatusDraft,
		CreatedAt:        time.Now().UTC(),
	}

	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		if err := tx.CreateModel(r.Context(), m); err != nil {
			return err
		}
		_, err := audit.NewRecorder(tx).RecordEntry(r.Context(),
			audit.EntityModel, fmt.Sprintf("%d", m.ID), audit.ActionCreate,
			map[string]any{"name": m.Name, "risk_level": string(m.RiskLevel)})
		return err
	})
	if err != nil {
		if errors.Is(err, registry.ErrDuplicateName) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.internalError(w, r, "create model", err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	m, err := s.store.GetModel(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, r, "get model", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	f := store.ModelFilter{
		OrganizationID: queryInt64Ptr(r, "organization_id"),
	}
	if raw := r.URL.Query().Get("compliance_status"); raw != "" {
		status, err := registry.ParseComplianceStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.ComplianceStatus = status
	}
	if raw := r.URL.Query().Get("risk_level"); raw != "" {
		risk, err := registry.ParseRiskLevel(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.RiskLevel = risk
	}

	models, err := s.store.ListModels(r.Context(), f)
	if err != nil {
		s.internalError(w, r, "list models", err)
		return
	}
	if models == nil {
		models = []*registry.Model{}
	}
	writeJSON(w, http.StatusOK, models)
}

// changeStatusRequest is the PUT /api/v1/models/{id}/status body.
type changeStatusRequest struct {
	Status string `json:"status"`
}

// changeStatusResponse reports the enforcement outcome. On denial the message
// is the enforcement decision message, verbatim.
type changeStatusResponse struct {
	Allowed bool   `json:"allowed"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleChangeStatus is the policy-gated transition endpoint. A denial is a
// client outcome (409), not a server failure; a persistence failure during
// enforcement is a 500 and the transition is not granted.
func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := s.coordinator.EnforceTransition(r.Context(), id,
		registry.ComplianceStatus(req.Status), actingUser(r))
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, registry.ErrModelNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			s.internalError(w, r, "enforce transition", err)
		}
		return
	}

	if !decision.Allowed {
		writeJSON(w, http.StatusConflict, changeStatusResponse{
			Allowed: false,
			Message: decision.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, changeStatusResponse{
		Allowed: true,
		Status:  req.Status,
	})
}

// createVersionRequest is the POST /api/v1/models/{id}/versions body.
type createVersionRequest struct {
	Tag          string `json:"tag"`
	ArtifactPath string `json:"artifact_path"`
}

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	modelID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}

	v := &registry.Version{
		ModelID:      modelID,
		Tag:          req.Tag,
		ArtifactPath: req.ArtifactPath,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.store.WithTx(r.Context(), func(tx store.Tx) error {
		if _, err := tx.GetModel(r.Context(), modelID); err != nil {
			return err
		}
		if err := tx.CreateVersion(r.Context(), v); err != nil {
			return err
		}
		_, err := audit.NewRecorder(tx).RecordEntry(r.Context(),
			audit.EntityVersion, fmt.Sprintf("%d", v.ID), audit.ActionCreate,
			map[string]any{"model_id": modelID, "tag": v.Tag})
		return err
	})
	if err != nil {
		if errors.Is(err, registry.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, r, "create version", err)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	modelID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	versions, err := s.store.ListVersions(r.Context(), modelID)
	if err != nil {
		s.internalError(w, r, "list versions", err)
		return
	}
	if versions == nil {
		versions = []*registry.Version{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// createMetricRequest is the POST /api/v1/versions/{id}/metrics body.
type createMetricRequest struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (s *Server) handleCreateMetric(w http.ResponseWriter, r *http.Request) {
	versionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid version id")
		return
	}

	var req createMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	m := &registry.Metric{
		VersionID:  versionID,
		Name:       req.Name,
		Value:      req.Value,
		RecordedAt: time.Now().UTC(),
	}

	err := s.store.WithTx(r.Context(), func(tx store.Tx) error {
		if err := tx.CreateMetric(r.Context(), m); err != nil {
			return err
		}
		_, err := audit.NewRecorder(tx).RecordEntry(r.Context(),
			audit.EntityMetric, fmt.Sprintf("%d", m.ID), audit.ActionCreate,
			map[string]any{"version_id": versionID, "name": m.Name, "value": m.Value})
		return err
	})
	if err != nil {
		if errors.Is(err, registry.ErrVersionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, r, "create metric", err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	versionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid version id")
		return
	}

	ms, err := s.store.ListMetrics(r.Context(), versionID)
	if err != nil {
		s.internalError(w, r, "list metrics", err)
		return
	}
	if ms == nil {
		ms = []*registry.Metric{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// internalError logs the failure with request context and answers 500 without
// leaking internals to the caller.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(op+" failed",
		"error", err,
		"request_id", GetRequestID(r.Context()),
		slog.String("path", r.URL.Path),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
