// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/ttvgate/internal/log"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the YAML configuration file. Durations are Go duration
// strings (e.g. "7s"). Pointer fields distinguish "absent" from zero.
type FileConfig struct {
	ListenAddr     string   `yaml:"listenAddr,omitempty"`
	MetricsAddr    string   `yaml:"metricsAddr,omitempty"`
	LogLevel       string   `yaml:"logLevel,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`

	Resolve struct {
		Enabled *bool `yaml:"enabled,omitempty"`
	} `yaml:"resolve,omitempty"`

	Upstream struct {
		Timeout string `yaml:"timeout,omitempty"` // e.g. "7s"
	} `yaml:"upstream,omitempty"`

	RateLimit struct {
		Enabled    *bool    `yaml:"enabled,omitempty"`
		RPS        *float64 `yaml:"rps,omitempty"`
		Burst      *int     `yaml:"burst,omitempty"`
		PerIPRPS   *float64 `yaml:"perIPRPS,omitempty"`
		PerIPBurst *int     `yaml:"perIPBurst,omitempty"`
	} `yaml:"rateLimit,omitempty"`

	Tracing struct {
		Enabled     *bool    `yaml:"enabled,omitempty"`
		Endpoint    string   `yaml:"endpoint,omitempty"`
		Protocol    string   `yaml:"protocol,omitempty"`
		SampleRate  *float64 `yaml:"sampleRate,omitempty"`
		Environment string   `yaml:"environment,omitempty"`
	} `yaml:"tracing,omitempty"`

	Server struct {
		ReadTimeout     string `yaml:"readTimeout,omitempty"`
		WriteTimeout    string `yaml:"writeTimeout,omitempty"`
		IdleTimeout     string `yaml:"idleTimeout,omitempty"`
		MaxHeaderBytes  *int   `yaml:"maxHeaderBytes,omitempty"`
		ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"`
	} `yaml:"server,omitempty"`
}

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The file is parsed strictly; unknown keys abort the start.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge config file: %w", err)
		}
	}

	mergeEnvConfig(&cfg)

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src == nil {
		return nil
	}
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
	if src.MetricsAddr != "" {
		dst.MetricsAddr = src.MetricsAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if len(src.AllowedOrigins) > 0 {
		dst.AllowedOrigins = src.AllowedOrigins
	}
	if src.Resolve.Enabled != nil {
		dst.ResolveEnabled = *src.Resolve.Enabled
	}
	if src.Upstream.Timeout != "" {
		d, err := time.ParseDuration(src.Upstream.Timeout)
		if err != nil {
			return fmt.Errorf("upstream.timeout: %w", err)
		}
		dst.UpstreamTimeout = d
	}
	if src.RateLimit.Enabled != nil {
		dst.RateLimit.Enabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.RPS != nil {
		dst.RateLimit.RPS = *src.RateLimit.RPS
	}
	if src.RateLimit.Burst != nil {
		dst.RateLimit.Burst = *src.RateLimit.Burst
	}
	if src.RateLimit.PerIPRPS != nil {
		dst.RateLimit.PerIPRPS = *src.RateLimit.PerIPRPS
	}
	if src.RateLimit.PerIPBurst != nil {
		dst.RateLimit.PerIPBurst = *src.RateLimit.PerIPBurst
	}
	if src.Tracing.Enabled != nil {
		dst.Tracing.Enabled = *src.Tracing.Enabled
	}
	if src.Tracing.Endpoint != "" {
		dst.Tracing.Endpoint = src.Tracing.Endpoint
	}
	if src.Tracing.Protocol != "" {
		dst.Tracing.Protocol = src.Tracing.Protocol
	}
	if src.Tracing.SampleRate != nil {
		dst.Tracing.SampleRate = *src.Tracing.SampleRate
	}
	if src.Tracing.Environment != "" {
		dst.Tracing.Environment = src.Tracing.Environment
	}

	durs := []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{src.Server.ReadTimeout, "server.readTimeout", &dst.Server.ReadTimeout},
		{src.Server.WriteTimeout, "server.writeTimeout", &dst.Server.WriteTimeout},
		{src.Server.IdleTimeout, "server.idleTimeout", &dst.Server.IdleTimeout},
		{src.Server.ShutdownTimeout, "server.shutdownTimeout", &dst.Server.ShutdownTimeout},
	}
	for _, d := range durs {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	if src.Server.MaxHeaderBytes != nil {
		dst.Server.MaxHeaderBytes = *src.Server.MaxHeaderBytes
	}
	return nil
}

// mergeEnvConfig applies environment overrides on top of file and defaults.
func mergeEnvConfig(cfg *AppConfig) {
	logger := log.WithComponent("config")

	// Listen address: TTVGATE_LISTEN wins; the serverless port alias only
	// supplies a port.
	if v := ParseString(EnvListen, ""); strings.TrimSpace(v) != "" {
		cfg.ListenAddr = strings.TrimSpace(v)
	} else if port := strings.TrimSpace(os.Getenv(EnvHandlerPort)); port != "" {
		cfg.ListenAddr = ":" + port
		logger.Debug().
			Str("key", EnvHandlerPort).
			Str("value", cfg.ListenAddr).
			Str("source", "environment").
			Msg("using serverless handler port")
	}

	cfg.MetricsAddr = ParseString(EnvMetricsListen, cfg.MetricsAddr)
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)
	if v := ParseString(EnvAllowedOrigins, ""); v != "" {
		cfg.AllowedOrigins = SplitOrigins(v)
	}
	cfg.ResolveEnabled = ParseBool(EnvResolveEnabled, cfg.ResolveEnabled)
	cfg.UpstreamTimeout = ParseDuration(EnvUpstreamTimeout, cfg.UpstreamTimeout)

	cfg.RateLimit.Enabled = ParseBool(EnvRateLimitEnabled, cfg.RateLimit.Enabled)
	cfg.RateLimit.RPS = ParseFloat(EnvRateLimitRPS, cfg.RateLimit.RPS)
	cfg.RateLimit.Burst = ParseInt(EnvRateLimitBurst, cfg.RateLimit.Burst)
	cfg.RateLimit.PerIPRPS = ParseFloat(EnvPerIPRPS, cfg.RateLimit.PerIPRPS)
	cfg.RateLimit.PerIPBurst = ParseInt(EnvPerIPBurst, cfg.RateLimit.PerIPBurst)

	cfg.Tracing.Enabled = ParseBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = ParseString(EnvOTLPEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.Protocol = ParseString(EnvOTLPProtocol, cfg.Tracing.Protocol)
	cfg.Tracing.SampleRate = ParseFloat(EnvTraceSampleRate, cfg.Tracing.SampleRate)
	cfg.Tracing.Environment = ParseString(EnvEnvironment, cfg.Tracing.Environment)
}
