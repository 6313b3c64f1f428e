// ABOUTME: Configuration loader for the capacity planner service
// ABOUTME: Loads settings from environment variables with defaults, .env supported

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Martel-IT/wp-nixos/planner"
)

type Config struct {
	// Server
	Port               string
	CacheTTL           int      // seconds, for derived plans
	FactsTTL           int      // seconds, for hardware probe results
	CORSAllowedOrigins []string // allowed CORS origins (empty = allow all)

	// Facts source: static, local, vsphere, agent
	FactsSource string

	// Static facts (also the fallback for the local probe)
	StaticRAMMb uint
	StaticCores uint

	// Host agent (optional)
	AgentURL      string
	AgentCACert   string
	AgentAllProxy string

	// vSphere (optional)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereHostName   string
	VSphereInsecure   bool

	// Tuning is the effective planning policy: defaults overlaid with any
	// environment overrides.
	Tuning planner.TuningPolicy
}

// Policy returns the effective tuning policy.
func (c *Config) Policy() planner.TuningPolicy {
	return c.Tuning
}

// VSphereConfigured returns true if vSphere credentials are set.
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

func Load() (*Config, error) {
	// .env is optional; environment always wins.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CacheTTL:           getEnvInt("CACHE_TTL", 300),
		FactsTTL:           getEnvInt("FACTS_CACHE_TTL", 300),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		FactsSource: getEnv("FACTS_SOURCE", "local"),

		StaticRAMMb: getEnvUint("STATIC_RAM_MB", 0),
		StaticCores: getEnvUint("STATIC_CORES", 0),

		AgentURL:      os.Getenv("AGENT_URL"),
		AgentCACert:   os.Getenv("AGENT_CA_CERT"),
		AgentAllProxy: os.Getenv("AGENT_ALL_PROXY"),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereHostName:   os.Getenv("VSPHERE_HOST_NAME"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
	}

	switch cfg.FactsSource {
	case "static":
		if cfg.StaticRAMMb == 0 || cfg.StaticCores == 0 {
			return nil, fmt.Errorf("FACTS_SOURCE=static requires STATIC_RAM_MB and STATIC_CORES")
		}
	case "local":
		// Static values are the optional fallback here.
	case "vsphere":
		if !cfg.VSphereConfigured() {
			return nil, fmt.Errorf("FACTS_SOURCE=vsphere requires VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, and VSPHERE_DATACENTER")
		}
		if cfg.VSphereHostName == "" {
			return nil, fmt.Errorf("FACTS_SOURCE=vsphere requires VSPHERE_HOST_NAME")
		}
	case "agent":
		if cfg.AgentURL == "" {
			return nil, fmt.Errorf("FACTS_SOURCE=agent requires AGENT_URL")
		}
	default:
		return nil, fmt.Errorf("unknown FACTS_SOURCE %q: must be static, local, vsphere, or agent", cfg.FactsSource)
	}

	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}
	cfg.Tuning = policy

	return cfg, nil
}

// loadPolicy overlays environment overrides on the default tuning policy
// and validates the result.
func loadPolicy() (planner.TuningPolicy, error) {
	p := planner.DefaultPolicy()

	p.OSHeadroomMb = getEnvUint("OS_HEADROOM_MB", p.OSHeadroomMb)
	p.AvgProcessMb = getEnvUint("AVG_PROCESS_MB", p.AvgProcessMb)
	p.DBRatio = getEnvFloat("DB_RATIO", p.DBRatio)
	p.CacheRatio = getEnvFloat("CACHE_RATIO", p.CacheRatio)
	p.MinDBMb = getEnvUint("MIN_DB_MB", p.MinDBMb)
	p.MaxDBMb = getEnvUint("MAX_DB_MB", p.MaxDBMb)
	p.MinCacheMb = getEnvUint("MIN_CACHE_MB", p.MinCacheMb)
	p.MaxCacheMb = getEnvUint("MAX_CACHE_MB", p.MaxCacheMb)
	p.BudgetMode = planner.BudgetMode(getEnv("BUDGET_MODE", string(p.BudgetMode)))

	if err := p.Validate(); err != nil {
		return planner.TuningPolicy{}, fmt.Errorf("invalid tuning policy from environment: %w", err)
	}
	return p, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint) uint {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uint(uintVal)
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
