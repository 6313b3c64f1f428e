// ABOUTME: HTTP handlers for health, facts, and policy endpoints
// ABOUTME: Provides API status, cached hardware facts, and the effective policy

package handlers

import (
	"log/slog"
	"net/http"
)

// Health returns API health status including the facts probe state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":       "ok",
		"facts_source": h.factsService.Source(),
		"facts_probe":  "ok",
	}

	if _, err := h.factsService.Facts(r.Context()); err != nil {
		resp["status"] = "degraded"
		resp["facts_probe"] = err.Error()
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Facts returns the current hardware facts from the cached probe.
func (h *Handler) Facts(w http.ResponseWriter, r *http.Request) {
	facts, err := h.factsService.Facts(r.Context())
	if err != nil {
		slog.Error("Hardware probe failed", "source", h.factsService.Source(), "error", err)
		h.writeError(w, "Hardware probe failed", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"source": h.factsService.Source(),
		"facts":  facts,
	})
}

// Policy returns the effective tuning policy.
func (h *Handler) Policy(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cfg.Policy())
}
