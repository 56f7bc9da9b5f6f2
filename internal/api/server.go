// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api provides the HTTP surface of the relay.
package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/ttvgate/internal/config"
	"github.com/ManuGH/ttvgate/internal/health"
	"github.com/ManuGH/ttvgate/internal/ratelimit"
	"github.com/ManuGH/ttvgate/internal/twitch"
)

// Pipeline runs the two-stage playback handshake for a target.
type Pipeline interface {
	Run(ctx context.Context, target twitch.Target) (string, error)
}

// Resolver exposes the override table to the resolve diagnostic.
type Resolver interface {
	Resolve(ctx context.Context, hostport string) ([]string, error)
	SystemResolve(ctx context.Context, hostport string) ([]string, error)
	Overridden(hostport string) bool
}

// Server is the HTTP API server for the relay.
type Server struct {
	cfg           config.AppConfig
	pipeline      Pipeline
	resolver      Resolver
	limiter       *ratelimit.Limiter
	healthManager *health.Manager
	startTime     time.Time
	handler       http.Handler
}

// Option allows functional configuration of the Server.
type Option func(*Server)

// WithResolver overrides the resolver behind the resolve diagnostic.
func WithResolver(r Resolver) Option {
	return func(s *Server) {
		s.resolver = r
	}
}

// WithLimiter overrides the playback admission limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// New builds the server and its router. The pipeline and health manager are
// required; the resolver and admission limiter default from the config.
func New(cfg config.AppConfig, pipeline Pipeline, healthManager *health.Manager, opts ...Option) *Server {
	s := &Server{
		cfg:           cfg,
		pipeline:      pipeline,
		healthManager: healthManager,
		startTime:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil && cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(ratelimit.Config{
			GlobalRate:  rate.Limit(cfg.RateLimit.RPS),
			GlobalBurst: cfg.RateLimit.Burst,
			PerIPRate:   rate.Limit(cfg.RateLimit.PerIPRPS),
			PerIPBurst:  cfg.RateLimit.PerIPBurst,
		})
	}
	if s.resolver == nil {
		s.resolver = twitch.NewResolver()
	}

	s.handler = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.handler
}
