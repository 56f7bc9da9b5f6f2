// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/ttvgate/internal/middleware"
)

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:     true,
		AllowedOrigins: s.cfg.AllowedOrigins,

		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,

		EnableMetrics:  true,
		TracingService: "ttvgate-api",
		EnableLogging:  true,

		EnableRateLimit: true,
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/live/{channel}", s.handleLive)
	r.Get("/api/vod/{id}", s.handleVod)

	// The resolve diagnostic leaks resolver behavior and stays off unless
	// explicitly enabled; disabled means the route does not exist at all.
	if s.cfg.ResolveEnabled {
		r.Get("/api/resolve/{host}", s.handleResolve)
	}

	r.NotFound(s.handleNotFound)

	return r
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = fmt.Fprintf(w, "%s does not exist", r.URL.RequestURI())
}
