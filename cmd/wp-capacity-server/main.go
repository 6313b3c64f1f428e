// ABOUTME: Entry point for the wp-nixos capacity planner service
// ABOUTME: Provides HTTP API for hardware facts and allocation plans

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Martel-IT/wp-nixos/cache"
	"github.com/Martel-IT/wp-nixos/config"
	"github.com/Martel-IT/wp-nixos/facts"
	"github.com/Martel-IT/wp-nixos/handlers"
	"github.com/Martel-IT/wp-nixos/logger"
	"github.com/Martel-IT/wp-nixos/middleware"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting wp-nixos capacity planner", "facts_source", cfg.FactsSource)

	provider, err := buildProvider(cfg)
	if err != nil {
		slog.Error("Failed to build facts provider", "error", err)
		os.Exit(1)
	}
	factsService := facts.NewService(provider, time.Duration(cfg.FactsTTL)*time.Second)

	// Initialize cache for derived plans
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	slog.Info("Cache initialized", "ttl", cacheTTL)

	// Initialize handlers
	h, err := handlers.NewHandler(cfg, c, factsService)
	if err != nil {
		slog.Error("Failed to initialize handlers", "error", err)
		os.Exit(1)
	}

	// Register routes with logging and CORS middleware
	mux := http.NewServeMux()
	cors := middleware.CORS(cfg.CORSAllowedOrigins)
	for _, route := range h.Routes() {
		pattern := fmt.Sprintf("%s %s", route.Method, route.Path)
		mux.HandleFunc(pattern, middleware.Chain(route.Handler, middleware.LogRequest, cors))
		// Preflight requests arrive as OPTIONS and must reach the CORS layer.
		mux.HandleFunc(fmt.Sprintf("OPTIONS %s", route.Path), middleware.Chain(route.Handler, middleware.LogRequest, cors))
	}

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// buildProvider wires the configured facts source.
func buildProvider(cfg *config.Config) (facts.Provider, error) {
	switch cfg.FactsSource {
	case "static":
		return facts.NewStaticProvider(cfg.StaticRAMMb, cfg.StaticCores), nil
	case "local":
		var fallback *facts.StaticProvider
		if cfg.StaticRAMMb > 0 && cfg.StaticCores > 0 {
			fallback = facts.NewStaticProvider(cfg.StaticRAMMb, cfg.StaticCores)
		}
		return facts.NewLocalProvider(fallback), nil
	case "vsphere":
		return facts.NewVSphereProvider(facts.VSphereCredentials{
			Host:       cfg.VSphereHost,
			Username:   cfg.VSphereUsername,
			Password:   cfg.VSpherePassword,
			Datacenter: cfg.VSphereDatacenter,
			HostName:   cfg.VSphereHostName,
			Insecure:   cfg.VSphereInsecure,
		}), nil
	case "agent":
		return facts.NewAgentProvider(cfg.AgentURL, cfg.AgentCACert, cfg.AgentAllProxy), nil
	default:
		return nil, fmt.Errorf("unknown facts source %q", cfg.FactsSource)
	}
}
