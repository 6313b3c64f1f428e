// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health & facts
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/api/v1/facts", Handler: h.Facts},

		// Planning
		{Method: http.MethodGet, Path: "/api/v1/policy", Handler: h.Policy},
		{Method: http.MethodPost, Path: "/api/v1/plan", Handler: h.Plan},
		{Method: http.MethodPost, Path: "/api/v1/plan/summary", Handler: h.PlanSummary},

		// Hardening profiles
		{Method: http.MethodPost, Path: "/api/v1/hardening", Handler: h.Hardening},
	}
}
