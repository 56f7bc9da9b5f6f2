// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/ttvgate/internal/log"
	"github.com/ManuGH/ttvgate/internal/middleware"
	"github.com/ManuGH/ttvgate/internal/telemetry"
	"github.com/ManuGH/ttvgate/internal/twitch"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRateLimited writes the 429 admission rejection.
func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	writeJSON(w, http.StatusTooManyRequests, map[string]string{
		"error":  "rate_limit_exceeded",
		"detail": "Too many requests. Please try again later.",
	})
}

// pipelineErrorResponse is the stable error contract of the playlist routes.
// Display stays safe for end users; Debug carries the cause chain.
type pipelineErrorResponse struct {
	Result  string `json:"result"`
	Stage   string `json:"stage,omitempty"`
	Debug   string `json:"debug"`
	Display string `json:"display"`
}

// writePipelineError maps a handshake failure onto the response contract:
// upstream rejections propagate their status, timeouts become 504, other
// transport failures 502 and undecodable upstream answers 501.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	label := "unavailable"

	resp := pipelineErrorResponse{
		Result:  "error",
		Debug:   err.Error(),
		Display: "upstream request failed",
	}

	var terr *twitch.Error
	if errors.As(err, &terr) {
		resp.Stage = string(terr.Stage)
		resp.Debug = terr.Debug()
		resp.Display = terr.Display()

		switch {
		case errors.Is(err, twitch.ErrTimeout):
			status = http.StatusGatewayTimeout
			label = "timeout"
		case errors.Is(err, twitch.ErrUpstreamRejected):
			label = "rejected"
			if terr.Status >= 400 {
				status = terr.Status
			}
		case errors.Is(err, twitch.ErrUpstreamBadResponse):
			status = http.StatusNotImplemented
			label = "bad_response"
		}
	}

	middleware.AddSpanAttributes(r, telemetry.ErrorAttributes(label)...)

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Error().
		Err(err).
		Str(log.FieldEvent, "playback.failed").
		Str(log.FieldStage, resp.Stage).
		Int(log.FieldStatus, status).
		Msg("handshake failed")

	writeJSON(w, status, resp)
}
