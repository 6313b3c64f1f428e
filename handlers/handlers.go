// ABOUTME: HTTP handlers for the capacity planner API endpoints
// ABOUTME: Wires the facts service, plan cache, and allocation orchestrator

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Martel-IT/wp-nixos/cache"
	"github.com/Martel-IT/wp-nixos/config"
	"github.com/Martel-IT/wp-nixos/facts"
	"github.com/Martel-IT/wp-nixos/planner"
)

// maxRequestBodySize limits JSON request bodies to 1MB to prevent DOS attacks
const maxRequestBodySize = 1 << 20 // 1MB

type Handler struct {
	cfg          *config.Config
	cache        *cache.Cache
	factsService *facts.Service
	orchestrator *planner.Orchestrator
}

func NewHandler(cfg *config.Config, c *cache.Cache, factsService *facts.Service) (*Handler, error) {
	orchestrator, err := planner.NewOrchestrator(cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}

	return &Handler{
		cfg:          cfg,
		cache:        c,
		factsService: factsService,
		orchestrator: orchestrator,
	}, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the JSON error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, ErrorResponse{Error: message, Code: code})
}
