// ABOUTME: Tests for the planner API handlers
// ABOUTME: httptest coverage of health, facts, plan, summary, and hardening

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Martel-IT/wp-nixos/cache"
	"github.com/Martel-IT/wp-nixos/config"
	"github.com/Martel-IT/wp-nixos/facts"
	"github.com/Martel-IT/wp-nixos/planner"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{
		Port:        "8080",
		CacheTTL:    300,
		FactsTTL:    300,
		FactsSource: "static",
		Tuning:      planner.DefaultPolicy(),
	}
	c := cache.New(time.Duration(cfg.CacheTTL) * time.Second)
	t.Cleanup(c.Stop)

	svc := facts.NewService(facts.NewStaticProvider(8192, 4), time.Hour)

	h, err := NewHandler(cfg, c, svc)
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	return h
}

func TestHealth(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", resp["status"])
	}
	if resp["facts_source"] != "static" {
		t.Errorf("Expected facts_source static, got %v", resp["facts_source"])
	}
}

func TestFacts(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.Facts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/facts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Source string                `json:"source"`
		Facts  planner.HardwareFacts `json:"facts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Facts.RAMMb != 8192 || resp.Facts.Cores != 4 {
		t.Errorf("Expected probed facts {8192 4}, got %+v", resp.Facts)
	}
}

func TestPolicy(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.Policy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/policy", nil))

	var policy planner.TuningPolicy
	if err := json.Unmarshal(rec.Body.Bytes(), &policy); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if policy.OSHeadroomMb != 2048 {
		t.Errorf("Expected default headroom 2048, got %d", policy.OSHeadroomMb)
	}
}

func planRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := testHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan", strings.NewReader(body))
	h.Plan(rec, req)
	return rec
}

func TestPlan_WithExplicitFacts(t *testing.T) {
	rec := planRequest(t, `{"facts": {"ram_mb": 8192, "cores": 4}, "tenant_count": 2}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan planner.AllocationPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to parse plan: %v", err)
	}
	if plan.WorkerPool.MaxChildren != 10 {
		t.Errorf("Expected 10 workers per tenant, got %d", plan.WorkerPool.MaxChildren)
	}
	if plan.Database.BufferPoolMb == 0 || plan.Cache.MaxMemoryMb == 0 {
		t.Error("Expected populated budgets")
	}
}

func TestPlan_ProbedFactsWhenOmitted(t *testing.T) {
	rec := planRequest(t, `{"tenant_count": 2}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan planner.AllocationPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to parse plan: %v", err)
	}
	if plan.Facts.RAMMb != 8192 {
		t.Errorf("Expected probed facts in plan, got %+v", plan.Facts)
	}
}

func TestPlan_InvalidJSON(t *testing.T) {
	rec := planRequest(t, `{tenants`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestPlan_ZeroRAMRejected(t *testing.T) {
	rec := planRequest(t, `{"facts": {"ram_mb": 0, "cores": 4}, "tenant_count": 2}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for unusable facts, got %d", rec.Code)
	}
}

func TestPlan_InvalidPolicyOverride(t *testing.T) {
	rec := planRequest(t, `{"facts": {"ram_mb": 8192, "cores": 4}, "tenant_count": 2, "policy": {"avg_process_mb": 0, "db_ratio": 0.3, "cache_ratio": 0.15, "budget_mode": "remaining"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid policy, got %d", rec.Code)
	}
}

func TestPlan_BodyTooLarge(t *testing.T) {
	h := testHandler(t)

	big := bytes.Repeat([]byte("a"), maxRequestBodySize+1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan", bytes.NewReader(big))
	h.Plan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized body, got %d", rec.Code)
	}
}

func TestPlanSummary_PlainText(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan/summary", strings.NewReader(`{"facts": {"ram_mb": 4096, "cores": 2}, "tenant_count": 10}`))
	h.PlanSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain, got %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"Worker pool", "Database", "Cache", "WARNING"} {
		if !strings.Contains(body, want) {
			t.Errorf("Summary missing %q:\n%s", want, body)
		}
	}
}

func TestPlan_CachedForIdenticalInputs(t *testing.T) {
	h := testHandler(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plan", strings.NewReader(`{"tenant_count": 3}`))
		h.Plan(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200 on call %d, got %d", i, rec.Code)
		}
	}

	if _, found := h.cache.Get("plan:8192:4:3"); !found {
		t.Error("Expected plan cached under facts+tenant key")
	}
}

func TestHardening_ComposesLevels(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hardening",
		strings.NewReader(`{"service": "mysql", "level": "strict", "override": {"memory_deny_write_execute": false}}`))
	h.Hardening(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp HardeningResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Profile.ProtectSystem != "strict" {
		t.Errorf("Expected strict ProtectSystem, got %q", resp.Profile.ProtectSystem)
	}
	if resp.Profile.MemoryDenyWriteExecute {
		t.Error("Expected service override to relax MemoryDenyWriteExecute")
	}
}

func TestHardening_DefaultsToBaseline(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hardening", strings.NewReader(`{"service": "redis"}`))
	h.Hardening(rec, req)

	var resp HardeningResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Level != "baseline" {
		t.Errorf("Expected baseline level, got %q", resp.Level)
	}
}

func TestHardening_RejectsUnknownLevel(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hardening", strings.NewReader(`{"service": "redis", "level": "paranoid"}`))
	h.Hardening(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown level, got %d", rec.Code)
	}
}

func TestHardening_RequiresService(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hardening", strings.NewReader(`{"level": "hardened"}`))
	h.Hardening(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing service, got %d", rec.Code)
	}
}

func TestRoutes_CoverAllEndpoints(t *testing.T) {
	h := testHandler(t)

	want := map[string]string{
		"/api/v1/health":       http.MethodGet,
		"/api/v1/facts":        http.MethodGet,
		"/api/v1/policy":       http.MethodGet,
		"/api/v1/plan":         http.MethodPost,
		"/api/v1/plan/summary": http.MethodPost,
		"/api/v1/hardening":    http.MethodPost,
	}

	routes := h.Routes()
	if len(routes) != len(want) {
		t.Fatalf("Expected %d routes, got %d", len(want), len(routes))
	}
	for _, route := range routes {
		method, ok := want[route.Path]
		if !ok {
			t.Errorf("Unexpected route %s", route.Path)
			continue
		}
		if route.Method != method {
			t.Errorf("Expected %s %s, got %s", method, route.Path, route.Method)
		}
		if route.Handler == nil {
			t.Errorf("Route %s has nil handler", route.Path)
		}
	}
}
