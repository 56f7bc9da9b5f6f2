// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/ttvgate/internal/api"
	"github.com/ManuGH/ttvgate/internal/config"
	"github.com/ManuGH/ttvgate/internal/daemon"
	"github.com/ManuGH/ttvgate/internal/health"
	ttvlog "github.com/ManuGH/ttvgate/internal/log"
	"github.com/ManuGH/ttvgate/internal/telemetry"
	"github.com/ManuGH/ttvgate/internal/twitch"
	"github.com/ManuGH/ttvgate/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Handle command-line flags
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	// The level must be settled before anything touches the logger; the
	// loader already logs while it reads the environment.
	ttvlog.Configure(ttvlog.Config{
		Level:   os.Getenv(config.EnvLogLevel),
		Service: "ttvgate",
	})

	logger := ttvlog.WithComponent("daemon")

	// Create a context that listens for the interrupt signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration with precedence: ENV > File > Defaults
	path := strings.TrimSpace(*configPath)
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}

	// Log config source
	if path != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", path).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	// -------------------------------------------------------------------------
	// Pre-flight Checks (Fail Fast)
	// -------------------------------------------------------------------------
	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("Startup checks failed. Please verify configuration and permissions.")
	}
	// -------------------------------------------------------------------------

	// Parse server configuration
	serverCfg := config.ParseServerConfigForApp(cfg)

	bindHost := strings.TrimSpace(config.ParseString(config.EnvBind, ""))
	if bindHost != "" {
		newListen, err := config.BindListenAddr(serverCfg.ListenAddr, bindHost)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("invalid TTVGATE_BIND for API listen")
		}
		serverCfg.ListenAddr = newListen
		cfg.ListenAddr = newListen
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Msg("starting ttvgate")

	// Log key configuration
	logger.Info().Msgf("→ Upstream timeout: %s", cfg.UpstreamTimeout)
	if cfg.RateLimit.Enabled {
		logger.Info().Msgf("→ Rate limit: %.0f rps global, %.0f rps per client", cfg.RateLimit.RPS, cfg.RateLimit.PerIPRPS)
	} else {
		logger.Warn().Msg("→ Rate limit: disabled")
	}
	if cfg.ResolveEnabled {
		logger.Warn().Msg("→ Resolve diagnostic: enabled (exposes resolver behavior)")
	}
	if cfg.MetricsAddr != "" {
		logger.Info().Msgf("→ Metrics: %s", cfg.MetricsAddr)
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "ttvgate",
		ServiceVersion: version.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Protocol,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialize tracing")
	}

	// Upstream path: pinned resolver -> dialer -> two-stage client
	resolver := twitch.NewResolver()
	httpClient := twitch.NewHTTPClient(resolver, cfg.UpstreamTimeout)
	client := twitch.NewClient(httpClient)

	healthManager := health.NewManager(cfg.Version)
	healthManager.RegisterChecker(health.NewUpstreamChecker("upstream", resolver.Endpoints(), resolver.Dial))

	// Create API handler
	s := api.New(cfg, client, healthManager, api.WithResolver(resolver))

	// Build daemon dependencies
	deps := daemon.Deps{
		Logger:         logger,
		Config:         cfg,
		APIHandler:     s.Handler(),
		MetricsHandler: promhttp.Handler(),
	}

	// Create daemon manager
	mgr, err := daemon.NewManager(serverCfg, deps)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation.failed").
			Msg("failed to create daemon manager")
	}

	mgr.RegisterShutdownHook("tracing", tp.Shutdown)

	// Start daemon manager (blocks until shutdown)
	if err := mgr.Start(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon manager failed")
	}

	logger.Info().Msg("server exiting")
}
