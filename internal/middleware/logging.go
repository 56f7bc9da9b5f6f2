// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ManuGH/ttvgate/internal/log"
	"github.com/ManuGH/ttvgate/internal/ratelimit"
)

// AccessLog returns a middleware that writes one structured line per request.
// Health and metrics probes stay out of the log.
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger := log.WithComponentFromContext(r.Context(), "http")
			logger.Info().
				Str(log.FieldEvent, "http.request").
				Str(log.FieldMethod, r.Method).
				Str(log.FieldPath, r.URL.Path).
				Int(log.FieldStatus, ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur(log.FieldDuration, time.Since(start)).
				Str(log.FieldClientIP, ratelimit.GetClientIP(r)).
				Msg("request served")
		})
	}
}
