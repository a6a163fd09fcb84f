package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"veritas-hq/aegis/pkg/policy"
)

// createPolicyRequest is the POST /api/v1/policies body.
type createPolicyRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Scope          string `json:"scope"`
	ConditionType  string `json:"condition_type"`
	Active         *bool  `json:"active"`
	OrganizationID *int64 `json:"organization_id"`
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req createPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p := &policy.Policy{
		Name:           req.Name,
		Description:    req.Description,
		Scope:          policy.Scope(req.Scope),
		ConditionType:  policy.ConditionType(req.ConditionType),
		Active:         active,
		OrganizationID: req.OrganizationID,
	}

	if err := s.policies.Create(r.Context(), p); err != nil {
		var verr *policy.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, policy.ErrDuplicateName):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.internalError(w, r, "create policy", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	p, err := s.policies.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, r, "get policy", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	f := policy.Filter{
		Scope:          policy.Scope(r.URL.Query().Get("scope")),
		OrganizationID: queryInt64Ptr(r, "organization_id"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true"
		f.Active = &active
	}

	policies, err := s.policies.List(r.Context(), f)
	if err != nil {
		s.internalError(w, r, "list policies", err)
		return
	}
	if policies == nil {
		policies = []*policy.Policy{}
	}
	writeJSON(w, http.StatusOK, policies)
}

// updatePolicyRequest is the PATCH /api/v1/policies/{id} body. Condition type
// and scope are accepted only so that attempts to change them can be rejected
// explicitly rather than silently ignored.
type updatePolicyRequest struct {
	Description   *string `json:"description"`
	Active        *bool   `json:"active"`
	ConditionType *string `json:"condition_type"`
	Scope         *string `json:"scope"`
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	var req updatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := policy.Update{
		Description: req.Description,
		Active:      req.Active,
	}
	if req.ConditionType != nil {
		ct := policy.ConditionType(*req.ConditionType)
		upd.ConditionType = &ct
	}
	if req.Scope != nil {
		sc := policy.Scope(*req.Scope)
		upd.Scope = &sc
	}

	p, err := s.policies.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrPolicyNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, policy.ErrImmutableField):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, r, "update policy", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleDeactivatePolicy soft-deletes a policy. The record survives so past
// violations keep a resolvable policy reference.
func (s *Server) handleDeactivatePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	p, err := s.policies.Deactivate(r.Context(), id)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, r, "deactivate policy", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
