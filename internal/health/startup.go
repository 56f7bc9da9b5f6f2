// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ManuGH/ttvgate/internal/config"
	"github.com/ManuGH/ttvgate/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before starting the server.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("Running pre-flight startup checks...")

	if err := checkListenAddresses(logger, cfg); err != nil {
		return fmt.Errorf("listen address check failed: %w", err)
	}

	if err := checkUpstreamBudget(logger, cfg); err != nil {
		return fmt.Errorf("upstream budget check failed: %w", err)
	}

	if err := checkTracing(logger, cfg); err != nil {
		return fmt.Errorf("tracing configuration check failed: %w", err)
	}

	logger.Info().Msg("✅ All startup checks passed")
	return nil
}

func checkListenAddresses(logger zerolog.Logger, cfg config.AppConfig) error {
	if err := checkHostPort(cfg.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", cfg.ListenAddr, err)
	}
	logger.Info().Str("addr", cfg.ListenAddr).Msg("✓ Listen address is valid")

	if cfg.MetricsAddr != "" {
		if err := checkHostPort(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics address %q: %w", cfg.MetricsAddr, err)
		}
		if cfg.MetricsAddr == cfg.ListenAddr {
			return fmt.Errorf("metrics address %q collides with the listen address", cfg.MetricsAddr)
		}
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("✓ Metrics address is valid")
	}

	return nil
}

func checkUpstreamBudget(logger zerolog.Logger, cfg config.AppConfig) error {
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.UpstreamTimeout < 2*time.Second {
		logger.Warn().
			Dur("timeout", cfg.UpstreamTimeout).
			Msg("upstream timeout leaves no room to try a second usher address")
	}
	if cfg.UpstreamTimeout > 30*time.Second {
		logger.Warn().
			Dur("timeout", cfg.UpstreamTimeout).
			Msg("upstream timeout is unusually long; blocked endpoints will hold clients that long")
	}
	logger.Info().Dur("timeout", cfg.UpstreamTimeout).Msg("✓ Upstream budget is valid")
	return nil
}

func checkTracing(logger zerolog.Logger, cfg config.AppConfig) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	if cfg.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing enabled without an OTLP endpoint")
	}
	if err := checkHostPort(cfg.Tracing.Endpoint); err != nil {
		return fmt.Errorf("invalid OTLP endpoint %q: %w", cfg.Tracing.Endpoint, err)
	}
	logger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("✓ Tracing configuration is valid")
	return nil
}

func checkHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
