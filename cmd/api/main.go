package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/davidleathers/dependable-verification-backend/internal/api/rest"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/config"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/telemetry"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Parse flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		balancer    = flag.String("balancer", "", "Balancer strategy override (round-robin|rr|best|b)")
		port        = flag.Int("port", 0, "Listen port override")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Version = version

	// CLI flags beat file and environment settings.
	if *balancer != "" {
		cfg.Balancer.Strategy = *balancer
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)

	// Initialize telemetry
	ctx := context.Background()
	telCfg := telemetry.DefaultConfig()
	telCfg.ServiceName = cfg.Telemetry.ServiceName
	telCfg.ServiceVersion = cfg.Version
	telCfg.Environment = cfg.Environment
	telCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	telCfg.Enabled = cfg.Telemetry.Enabled
	telCfg.SamplingRate = cfg.Telemetry.SampleRate

	provider, err := telemetry.Initialize(ctx, telCfg)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	// Create and start server
	server, err := rest.NewServer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
