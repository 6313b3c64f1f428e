// ABOUTME: HTTP handler for hardening profile composition
// ABOUTME: Resolves base + level + service overrides into an effective profile

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Martel-IT/wp-nixos/profile"
)

// HardeningRequest asks for the effective sandboxing profile of one managed
// service. Level defaults to baseline; Override is the optional per-service
// layer applied last.
type HardeningRequest struct {
	Service  string            `json:"service"`
	Level    profile.Level     `json:"level,omitempty"`
	Override *profile.Override `json:"override,omitempty"`
}

// HardeningResponse carries the composed profile.
type HardeningResponse struct {
	Service string          `json:"service"`
	Level   profile.Level   `json:"level"`
	Profile profile.Profile `json:"profile"`
}

// Hardening composes the effective hardening profile for a service.
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) Hardening(w http.ResponseWriter, r *http.Request) {
	// Limit request body size to prevent DOS attacks
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req HardeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, "Request body too large", http.StatusBadRequest)
			return
		}
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Service == "" {
		h.writeError(w, "service is required", http.StatusBadRequest)
		return
	}
	if req.Level == "" {
		req.Level = profile.LevelBaseline
	}
	switch req.Level {
	case profile.LevelBaseline, profile.LevelHardened, profile.LevelStrict:
	default:
		h.writeError(w, "unknown hardening level", http.StatusBadRequest)
		return
	}

	overrides := []profile.Override{profile.LevelOverride(req.Level)}
	if req.Override != nil {
		overrides = append(overrides, *req.Override)
	}

	h.writeJSON(w, http.StatusOK, HardeningResponse{
		Service: req.Service,
		Level:   req.Level,
		Profile: profile.Compose(profile.DefaultBase(), overrides...),
	})
}
