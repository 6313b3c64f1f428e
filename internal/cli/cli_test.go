// ABOUTME: Tests for the wp-capacity CLI commands
// ABOUTME: Verifies output formatting and exit codes against a stub backend

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Martel-IT/wp-nixos/internal/client"
	"github.com/Martel-IT/wp-nixos/planner"
)

// stubBackend serves canned health, facts, and plan responses.
func stubBackend(t *testing.T, plan *planner.AllocationPlan) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/health":
			json.NewEncoder(w).Encode(client.HealthResponse{Status: "ok", FactsSource: "static", FactsProbe: "ok"})
		case "/api/v1/facts":
			json.NewEncoder(w).Encode(client.FactsResponse{
				Source: "static",
				Facts:  planner.HardwareFacts{RAMMb: 8192, Cores: 4},
			})
		case "/api/v1/plan":
			json.NewEncoder(w).Encode(plan)
		default:
			http.NotFound(w, r)
		}
	}))
}

func healthyPlan() *planner.AllocationPlan {
	return &planner.AllocationPlan{
		Facts:                planner.HardwareFacts{RAMMb: 8192, Cores: 4},
		TenantCount:          2,
		EffectiveTenantCount: 2,
		WorkerPool:           planner.WorkerPoolSpec{MaxChildren: 10, StartServers: 2, MinSpare: 2, MaxSpare: 5},
		Database:             planner.DatabaseBudget{BufferPoolMb: 996, LogFileMb: 249, BufferPoolInstances: 1, MaxConnections: 240},
		Cache:                planner.CacheBudget{MaxMemoryMb: 711, MaxClients: 10000, TCPBacklog: 2048},
		FootprintMb:          5404,
	}
}

func TestFormatHealthHuman(t *testing.T) {
	resp := &client.HealthResponse{Status: "ok", FactsSource: "local", FactsProbe: "ok"}

	output := formatHealthHuman("http://localhost:8080", resp)

	if !bytes.Contains([]byte(output), []byte("http://localhost:8080")) {
		t.Error("expected output to contain planner URL")
	}
	if !bytes.Contains([]byte(output), []byte("Facts source: local")) {
		t.Error("expected output to contain facts source")
	}
}

func TestFormatHealthJSON(t *testing.T) {
	resp := &client.HealthResponse{Status: "degraded", FactsSource: "agent", FactsProbe: "probe failed"}

	output := formatHealthJSON("http://localhost:8080", resp)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["status"] != "degraded" {
		t.Errorf("expected degraded status in JSON, got %v", parsed["status"])
	}
}

func TestHealthCommand_Success(t *testing.T) {
	server := stubBackend(t, healthyPlan())
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("ok")) {
		t.Error("expected ok in output")
	}
}

func TestHealthCommand_ConnectionError(t *testing.T) {
	apiURL = "http://127.0.0.1:1"
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Error:")) {
		t.Error("expected error message in output")
	}
}

func TestFactsCommand(t *testing.T) {
	server := stubBackend(t, healthyPlan())
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runFacts(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("8192 MB")) {
		t.Errorf("expected RAM in output, got %s", buf.String())
	}
}

func TestPlanCommand_Success(t *testing.T) {
	server := stubBackend(t, healthyPlan())
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Worker pool")) {
		t.Error("expected worker pool section in output")
	}
}

func TestPlanCommand_WarningsExitOne(t *testing.T) {
	plan := healthyPlan()
	plan.Diagnostics = []planner.Diagnostic{
		{Severity: planner.SeverityWarning, Code: planner.CodeOvercommit, Message: "projected footprint exceeds RAM"},
	}
	server := stubBackend(t, plan)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1 for warnings, got %d", exitCode)
	}
}

func TestPlanCommand_MismatchedFactFlags(t *testing.T) {
	planRAMMb = 8192
	planCores = 0
	defer func() { planRAMMb = 0 }()

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestCheckCommand_PassesUnderThreshold(t *testing.T) {
	server := stubBackend(t, healthyPlan())
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	checkThreshold = 100

	var buf bytes.Buffer
	exitCode := runCheck(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("PASSED")) {
		t.Error("expected PASSED in output")
	}
}

func TestCheckCommand_FootprintOverThreshold(t *testing.T) {
	plan := healthyPlan()
	plan.FootprintMb = 9000 // 109% of 8192
	server := stubBackend(t, plan)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	checkThreshold = 100

	var buf bytes.Buffer
	exitCode := runCheck(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("FAILED")) {
		t.Error("expected FAILED in output")
	}
}

func TestCheckCommand_InvalidThreshold(t *testing.T) {
	checkThreshold = 500
	defer func() { checkThreshold = 100 }()

	var buf bytes.Buffer
	exitCode := runCheck(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestGetAPIURL_Priority(t *testing.T) {
	apiURL = ""
	t.Setenv("WP_CAPACITY_API_URL", "http://env.example.com")
	if got := GetAPIURL(); got != "http://env.example.com" {
		t.Errorf("expected env URL, got %s", got)
	}

	apiURL = "http://flag.example.com"
	defer func() { apiURL = "" }()
	if got := GetAPIURL(); got != "http://flag.example.com" {
		t.Errorf("expected flag URL to win, got %s", got)
	}
}
