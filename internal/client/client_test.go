// ABOUTME: Tests for the planner API client
// ABOUTME: httptest coverage of response parsing and error mapping

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("Expected /api/v1/health, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "ok", "facts_source": "local", "facts_probe": "ok"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if resp.Status != "ok" || resp.FactsSource != "local" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestClient_Plan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/plan" {
			t.Errorf("Expected POST /api/v1/plan, got %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"facts": {"ram_mb": 8192, "cores": 4}, "tenant_count": 2, "worker_pool": {"max_children": 10, "start_servers": 2, "min_spare": 2, "max_spare": 5}}`))
	}))
	defer server.Close()

	plan, err := New(server.URL).Plan(context.Background(), &PlanRequest{TenantCount: 2})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.WorkerPool.MaxChildren != 10 {
		t.Errorf("Expected 10 max children, got %d", plan.WorkerPool.MaxChildren)
	}
}

func TestClient_PlanSummaryReturnsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Worker pool\n  max children: 10\n"))
	}))
	defer server.Close()

	text, err := New(server.URL).PlanSummary(context.Background(), &PlanRequest{TenantCount: 2})
	if err != nil {
		t.Fatalf("PlanSummary returned error: %v", err)
	}
	if !strings.Contains(text, "Worker pool") {
		t.Errorf("Expected summary text, got %q", text)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "allocation aborted: no usable RAM", "code": 422}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Plan(context.Background(), &PlanRequest{TenantCount: 2})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "no usable RAM") {
		t.Errorf("Expected backend error message, got %v", err)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Health(context.Background())
	if err == nil {
		t.Fatal("Expected connection error")
	}
	if !strings.Contains(err.Error(), "cannot connect to backend") {
		t.Errorf("Expected friendly connection error, got %v", err)
	}
}
