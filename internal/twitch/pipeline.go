package twitch

import (
	"context"

	"github.com/ManuGH/ttvgate/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Run executes the playback handshake: token first, then playlist. The
// stages are strictly ordered; the first failure returns immediately with
// its stage attached and the playlist stage never starts without a token.
// There is no retry and no partial result.
func (c *Client) Run(ctx context.Context, target Target) (string, error) {
	tracer := otel.Tracer("ttvgate/twitch")
	attrs := trace.WithAttributes(telemetry.TargetAttributes(target.IsLive(), target.Data())...)

	tokenCtx, span := tracer.Start(ctx, "twitch.token", attrs,
		trace.WithAttributes(telemetry.StageAttributes(string(StageToken))...))
	token, err := c.PlaybackToken(tokenCtx, target)
	endStageSpan(span, err)
	if err != nil {
		return "", err
	}

	playlistCtx, span := tracer.Start(ctx, "twitch.playlist", attrs,
		trace.WithAttributes(telemetry.StageAttributes(string(StagePlaylist))...))
	playlist, err := c.Playlist(playlistCtx, target, token)
	endStageSpan(span, err)
	if err != nil {
		return "", err
	}

	return playlist, nil
}

func endStageSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
