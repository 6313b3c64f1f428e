// ABOUTME: HTTP handlers for plan computation endpoints
// ABOUTME: JSON plan and text/plain operator summary, with probe-backed facts

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Martel-IT/wp-nixos/planner"
)

// PlanRequest is the input for the plan endpoints. Facts are optional: the
// probed facts are used when the request omits them. Policy is optional and
// replaces the server's policy for this request only.
type PlanRequest struct {
	Facts       *planner.HardwareFacts `json:"facts,omitempty"`
	TenantCount uint                   `json:"tenant_count"`
	Policy      *planner.TuningPolicy  `json:"policy,omitempty"`
}

// Plan computes an allocation plan for the requested tenant count.
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.computePlan(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

// PlanSummary computes a plan and renders the plain-text operator summary.
func (h *Handler) PlanSummary(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.computePlan(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, planner.RenderSummary(plan))
}

// computePlan parses the request, resolves facts, and runs the pipeline.
// Writes the error response itself and returns ok=false on failure.
func (h *Handler) computePlan(w http.ResponseWriter, r *http.Request) (*planner.AllocationPlan, bool) {
	// Limit request body size to prevent DOS attacks
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, "Request body too large", http.StatusBadRequest)
			return nil, false
		}
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}

	facts := planner.HardwareFacts{}
	if req.Facts != nil {
		facts = *req.Facts
	} else {
		probed, err := h.factsService.Facts(r.Context())
		if err != nil {
			slog.Error("Hardware probe failed for plan", "error", err)
			h.writeError(w, "Hardware probe failed and no facts supplied", http.StatusServiceUnavailable)
			return nil, false
		}
		facts = probed
	}

	orchestrator := h.orchestrator
	if req.Policy != nil {
		custom, err := planner.NewOrchestrator(*req.Policy)
		if err != nil {
			var cfgErr *planner.ConfigError
			if errors.As(err, &cfgErr) {
				h.writeError(w, cfgErr.Error(), http.StatusBadRequest)
				return nil, false
			}
			h.writeError(w, "Invalid policy", http.StatusBadRequest)
			return nil, false
		}
		orchestrator = custom
	}

	// Derived plans are cached only for the server policy; ad-hoc policies
	// bypass the cache.
	cacheKey := ""
	if req.Policy == nil {
		cacheKey = fmt.Sprintf("plan:%d:%d:%d", facts.RAMMb, facts.Cores, req.TenantCount)
		if cached, found := h.cache.Get(cacheKey); found {
			return cached.(*planner.AllocationPlan), true
		}
	}

	plan, err := orchestrator.Compute(facts, req.TenantCount)
	if err != nil {
		slog.Warn("Plan computation aborted", "error", err, "ram_mb", facts.RAMMb, "tenants", req.TenantCount)
		h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return nil, false
	}

	if cacheKey != "" {
		h.cache.Set(cacheKey, plan)
	}
	return plan, true
}
