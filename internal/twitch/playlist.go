package twitch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/ttvgate/internal/log"
)

// Playlist fetches the HLS playlist for the target using a previously
// acquired token. The body is returned verbatim; this relay never parses or
// rewrites playlists.
func (c *Client) Playlist(ctx context.Context, target Target, token PlaybackToken) (string, error) {
	const op = "playlist fetch"
	start := time.Now()
	observeStageStart(StagePlaylist)

	// The upstream expects this exact parameter set; token and signature are
	// quoted from the token stage unmodified.
	pairs := []string{
		"player_backend=mediaplayer",
		"playlist_include_framerate=true",
		"reassignments_supported=true",
		"supported_codecs=vp09,avc1",
		"play_session_id=" + strings.ToLower(c.newID()),
		"cdm=wv",
		"player_version=1.4.0",
		"fast_bread=true",
		"token=" + url.QueryEscape(token.Value),
		"sig=" + url.QueryEscape(token.Signature),
		"allow_source=true",
		"p=" + strconv.Itoa(c.randN()),
	}
	playlistURL := c.usherBase + target.PlaylistPath() + "?" + strings.Join(pairs, "&")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		observeStageDone(StagePlaylist, start, err)
		return "", newTransportError(StagePlaylist, op, err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		terr := newTransportError(StagePlaylist, op, err)
		observeStageDone(StagePlaylist, start, terr)
		c.stageLogger(ctx, target).Error().
			Str(log.FieldEvent, "playlist.transport_failed").
			Dur(log.FieldDuration, time.Since(start)).
			Err(err).
			Msg("playlist request failed")
		return "", terr
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		rerr := newRejectedError(StagePlaylist, op, res.StatusCode, strings.TrimSpace(string(snippet)))
		observeStageDone(StagePlaylist, start, rerr)
		c.stageLogger(ctx, target).Error().
			Str(log.FieldEvent, "playlist.rejected").
			Int(log.FieldStatus, res.StatusCode).
			Msg("playlist request rejected upstream")
		return "", rerr
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		terr := newTransportError(StagePlaylist, op, err)
		observeStageDone(StagePlaylist, start, terr)
		return "", terr
	}

	observeStageDone(StagePlaylist, start, nil)
	c.stageLogger(ctx, target).Debug().
		Str(log.FieldEvent, "playlist.fetched").
		Int("bytes", len(body)).
		Dur(log.FieldDuration, time.Since(start)).
		Msg("playlist fetched")

	return string(body), nil
}
