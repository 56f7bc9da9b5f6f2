// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads and validates the relay configuration with the
// precedence ENV > config file > defaults.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Environment variable names understood by the relay. FUNCTIONS_CUSTOMHANDLER_PORT
// is honored as a port-only alias for serverless custom-handler hosts.
const (
	EnvListen          = "TTVGATE_LISTEN"
	EnvBind            = "TTVGATE_BIND"
	EnvMetricsListen   = "TTVGATE_METRICS_LISTEN"
	EnvLogLevel        = "TTVGATE_LOG_LEVEL"
	EnvAllowedOrigins  = "TTVGATE_ALLOWED_ORIGINS"
	EnvResolveEnabled  = "TTVGATE_RESOLVE_ENABLED"
	EnvUpstreamTimeout = "TTVGATE_UPSTREAM_TIMEOUT"
	EnvHandlerPort     = "FUNCTIONS_CUSTOMHANDLER_PORT"

	EnvRateLimitEnabled = "TTVGATE_RATELIMIT_ENABLED"
	EnvRateLimitRPS     = "TTVGATE_RATELIMIT_RPS"
	EnvRateLimitBurst   = "TTVGATE_RATELIMIT_BURST"
	EnvPerIPRPS         = "TTVGATE_RATELIMIT_PERIP_RPS"
	EnvPerIPBurst       = "TTVGATE_RATELIMIT_PERIP_BURST"

	EnvTracingEnabled  = "TTVGATE_TRACING_ENABLED"
	EnvOTLPEndpoint    = "TTVGATE_OTLP_ENDPOINT"
	EnvOTLPProtocol    = "TTVGATE_OTLP_PROTOCOL"
	EnvTraceSampleRate = "TTVGATE_TRACE_SAMPLE_RATE"
	EnvEnvironment     = "TTVGATE_ENVIRONMENT"
)

const (
	defaultListenAddr      = ":9000"
	defaultUpstreamTimeout = 7 * time.Second
)

// RateLimitConfig bounds request admission: a global bucket for the whole
// process plus a smaller per-client bucket.
type RateLimitConfig struct {
	Enabled    bool
	RPS        float64
	Burst      int
	PerIPRPS   float64
	PerIPBurst int
}

// TracingConfig carries the OTLP exporter settings.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Protocol    string // "grpc" or "http"
	SampleRate  float64
	Environment string
}

// ServerRuntimeConfig holds the tunable HTTP server limits.
type ServerRuntimeConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// AppConfig is the fully resolved relay configuration.
type AppConfig struct {
	ListenAddr      string
	MetricsAddr     string
	LogLevel        string
	AllowedOrigins  []string
	ResolveEnabled  bool
	UpstreamTimeout time.Duration
	RateLimit       RateLimitConfig
	Tracing         TracingConfig
	Server          ServerRuntimeConfig

	// Version is stamped by the loader from the binary's build info.
	Version string
}

func defaults() AppConfig {
	return AppConfig{
		ListenAddr:      defaultListenAddr,
		MetricsAddr:     "",
		LogLevel:        "info",
		AllowedOrigins:  []string{"*"},
		ResolveEnabled:  false,
		UpstreamTimeout: defaultUpstreamTimeout,
		RateLimit: RateLimitConfig{
			Enabled:    true,
			RPS:        20,
			Burst:      40,
			PerIPRPS:   4,
			PerIPBurst: 8,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Protocol:    "grpc",
			SampleRate:  0.05,
			Environment: "production",
		},
		Server: ServerRuntimeConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
	}
}

// Validate rejects configurations the daemon cannot start with.
func Validate(cfg AppConfig) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", cfg.ListenAddr, err)
	}
	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics address %q: %w", cfg.MetricsAddr, err)
		}
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit enabled but rps/burst not positive")
		}
		if cfg.RateLimit.PerIPRPS <= 0 || cfg.RateLimit.PerIPBurst <= 0 {
			return fmt.Errorf("rate limit enabled but per-ip rps/burst not positive")
		}
	}
	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Protocol {
		case "grpc", "http":
		default:
			return fmt.Errorf("invalid OTLP protocol %q (want grpc or http)", cfg.Tracing.Protocol)
		}
		if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
			return fmt.Errorf("trace sample rate %v out of range [0,1]", cfg.Tracing.SampleRate)
		}
	}
	return nil
}

// SplitOrigins parses a comma-separated origin list into its entries.
func SplitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
