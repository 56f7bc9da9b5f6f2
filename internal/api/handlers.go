package api

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/idna"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/ttvgate/internal/log"
	"github.com/ManuGH/ttvgate/internal/middleware"
	"github.com/ManuGH/ttvgate/internal/ratelimit"
	"github.com/ManuGH/ttvgate/internal/telemetry"
	"github.com/ManuGH/ttvgate/internal/twitch"
)

const contentTypePlaylist = "application/vnd.apple.mpegurl"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.healthManager.ServeHealth(w, r)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.healthManager.ServeReady(w, r)
}

type statusResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Service: "ttvgate",
		Version: s.cfg.Version,
		UptimeS: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	s.servePlaylist(w, r, twitch.ChannelTarget(channel), "live")
}

func (s *Server) handleVod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Video IDs are u64 on the wire; anything else is not a route we serve.
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		s.handleNotFound(w, r)
		return
	}
	s.servePlaylist(w, r, twitch.VideoTarget(id), "vod")
}

// servePlaylist admits the request, runs the handshake and relays the
// playlist body untouched.
func (s *Server) servePlaylist(w http.ResponseWriter, r *http.Request, target twitch.Target, kind string) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	if s.limiter != nil && !s.limiter.Allow(ratelimit.GetClientIP(r), kind) {
		logger.Warn().
			Str(log.FieldEvent, "playback.throttled").
			Str("kind", kind).
			Str(log.FieldClientIP, ratelimit.GetClientIP(r)).
			Msg("playback admission rejected")
		writeRateLimited(w)
		return
	}

	middleware.AddSpanAttributes(r, telemetry.TargetAttributes(target.IsLive(), target.Data())...)

	body, err := s.pipeline.Run(r.Context(), target)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	// Playlists age out in seconds; a cached copy is worse than a refetch.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", contentTypePlaylist)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "playlist.write_failed").
			Msg("failed to write playlist response")
	}
}

type resolveResponse struct {
	Host        string   `json:"host"`
	Overridden  bool     `json:"overridden"`
	Override    []string `json:"override"`
	System      []string `json:"system"`
	SystemMS    int64    `json:"system_ms"`
	SystemError string   `json:"system_error,omitempty"`
}

// handleResolve answers what the relay would dial for a host, next to what
// the surrounding network says. Useful when debugging tampered resolvers.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	if s.limiter != nil && !s.limiter.Allow(ratelimit.GetClientIP(r), "resolve") {
		writeRateLimited(w)
		return
	}

	hostport, err := normalizeHostPort(chi.URLParam(r, "host"))
	if err != nil {
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "resolve.invalid_host").
			Msg("resolve request rejected")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid host"})
		return
	}

	overridden := s.resolver.Overridden(hostport)
	middleware.AddSpanAttributes(r, telemetry.ResolveAttributes(hostport, overridden)...)

	resp := resolveResponse{
		Host:       hostport,
		Overridden: overridden,
		Override:   []string{},
		System:     []string{},
	}

	// Both answers are results, including the system path failing; only the
	// goroutines' bookkeeping flows through the group.
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		if !overridden {
			return nil
		}
		addrs, err := s.resolver.Resolve(ctx, hostport)
		if err == nil {
			resp.Override = append(resp.Override, addrs...)
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		addrs, err := s.resolver.SystemResolve(ctx, hostport)
		resp.SystemMS = time.Since(start).Milliseconds()
		if err != nil {
			resp.SystemError = err.Error()
			return nil
		}
		resp.System = append(resp.System, addrs...)
		return nil
	})
	_ = g.Wait()

	logger.Debug().
		Str(log.FieldEvent, "resolve.answered").
		Str(log.FieldHost, hostport).
		Bool("overridden", overridden).
		Msg("resolve diagnostic served")

	writeJSON(w, http.StatusOK, resp)
}

// normalizeHostPort lower-cases and punycodes the host and defaults the port
// to 443, the only port the override table speaks.
func normalizeHostPort(raw string) (string, error) {
	// chi hands the segment over still escaped when the path carried
	// percent-encoding.
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	raw = strings.ToLower(strings.TrimSpace(raw))

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		host, port = raw, "443"
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(ascii, port), nil
}
