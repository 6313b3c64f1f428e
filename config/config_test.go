package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("Expected default cache TTL 300, got %d", cfg.CacheTTL)
	}
	if cfg.FactsSource != "local" {
		t.Errorf("Expected default facts source local, got %s", cfg.FactsSource)
	}
}

func TestLoadConfig_StaticRequiresFacts(t *testing.T) {
	os.Clearenv()
	os.Setenv("FACTS_SOURCE", "static")

	if _, err := Load(); err == nil {
		t.Error("Expected error for static source without values, got nil")
	}

	os.Setenv("STATIC_RAM_MB", "8192")
	os.Setenv("STATIC_CORES", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.StaticRAMMb != 8192 || cfg.StaticCores != 4 {
		t.Errorf("Expected static facts 8192/4, got %d/%d", cfg.StaticRAMMb, cfg.StaticCores)
	}
}

func TestLoadConfig_UnknownFactsSource(t *testing.T) {
	os.Clearenv()
	os.Setenv("FACTS_SOURCE", "oracle")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown facts source, got nil")
	}
}

func TestLoadConfig_AgentRequiresURL(t *testing.T) {
	os.Clearenv()
	os.Setenv("FACTS_SOURCE", "agent")

	if _, err := Load(); err == nil {
		t.Error("Expected error for agent source without URL, got nil")
	}
}

func TestLoadConfig_VSphereRequiresCredentials(t *testing.T) {
	os.Clearenv()
	os.Setenv("FACTS_SOURCE", "vsphere")
	os.Setenv("VSPHERE_HOST", "vcenter.lab")
	os.Setenv("VSPHERE_USERNAME", "admin")

	if _, err := Load(); err == nil {
		t.Error("Expected error for incomplete vSphere credentials, got nil")
	}
}

func TestLoadConfig_PolicyOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("OS_HEADROOM_MB", "1024")
	os.Setenv("AVG_PROCESS_MB", "96")
	os.Setenv("BUDGET_MODE", "reserve_slice")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	p := cfg.Policy()
	if p.OSHeadroomMb != 1024 {
		t.Errorf("Expected headroom override 1024, got %d", p.OSHeadroomMb)
	}
	if p.AvgProcessMb != 96 {
		t.Errorf("Expected avg process override 96, got %d", p.AvgProcessMb)
	}
	if string(p.BudgetMode) != "reserve_slice" {
		t.Errorf("Expected reserve_slice mode, got %s", p.BudgetMode)
	}
}

func TestLoadConfig_InvalidPolicyRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_RATIO", "1.5")

	if _, err := Load(); err == nil {
		t.Error("Expected error for out-of-range DB_RATIO, got nil")
	}
}

func TestLoadConfig_CORSList(t *testing.T) {
	os.Clearenv()
	os.Setenv("CORS_ALLOWED_ORIGINS", "https://panel.example.com, https://ops.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("Expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "https://ops.example.com" {
		t.Errorf("Expected trimmed origin, got %q", cfg.CORSAllowedOrigins[1])
	}
}
