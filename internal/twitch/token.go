package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/ttvgate/internal/log"
)

// PlaybackToken is the signed access grant returned by the GQL backend. The
// playlist request must quote Value and Signature exactly as received.
type PlaybackToken struct {
	Value     string
	Signature string
	Kind      string // __typename echo, informational only
}

type gqlRequest struct {
	OperationName string        `json:"operationName"`
	Extensions    gqlExtensions `json:"extensions"`
	Variables     gqlVariables  `json:"variables"`
}

type gqlExtensions struct {
	PersistedQuery gqlPersistedQuery `json:"persistedQuery"`
}

type gqlPersistedQuery struct {
	Version    int    `json:"version"`
	SHA256Hash string `json:"sha256Hash"`
}

type gqlVariables struct {
	IsLive     bool   `json:"isLive"`
	Login      string `json:"login"`
	IsVod      bool   `json:"isVod"`
	VodID      string `json:"vodID"`
	PlayerType string `json:"playerType"`
}

type gqlToken struct {
	Value     string `json:"value"`
	Signature string `json:"signature"`
	Typename  string `json:"__typename"`
}

func (t Target) gqlVariables() gqlVariables {
	v := gqlVariables{PlayerType: playerType}
	if t.kind == targetChannel {
		v.IsLive = true
		v.Login = t.data
	} else {
		v.IsVod = true
		v.VodID = t.data
	}
	return v
}

const maxErrorBodyBytes = 4 << 10

// PlaybackToken requests a playback access token for the target. The request
// travels to a fastly edge with the Host header naming the real GQL backend;
// the edge routes on that header, and the edge hostname itself is dialed
// through the override table.
func (c *Client) PlaybackToken(ctx context.Context, target Target) (PlaybackToken, error) {
	const op = "playback token"
	start := time.Now()
	observeStageStart(StageToken)

	body := gqlRequest{
		OperationName: "PlaybackAccessToken",
		Extensions: gqlExtensions{
			PersistedQuery: gqlPersistedQuery{Version: 1, SHA256Hash: persistedQueryHash},
		},
		Variables: target.gqlVariables(),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		// The request structure is fixed; marshalling cannot fail at runtime.
		observeStageDone(StageToken, start, err)
		return PlaybackToken{}, newDecodeError(StageToken, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gqlURL, bytes.NewReader(payload))
	if err != nil {
		observeStageDone(StageToken, start, err)
		return PlaybackToken{}, newTransportError(StageToken, op, err)
	}
	// Routing happens on the Host header, not the dialed hostname.
	req.Host = c.gqlHost
	req.Header.Set("Client-ID", clientID)
	req.Header.Set("Device-ID", c.newID())
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		terr := newTransportError(StageToken, op, err)
		observeStageDone(StageToken, start, terr)
		c.stageLogger(ctx, target).Error().
			Str(log.FieldEvent, "token.transport_failed").
			Dur(log.FieldDuration, time.Since(start)).
			Err(err).
			Msg("token request failed")
		return PlaybackToken{}, terr
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		rerr := newRejectedError(StageToken, op, res.StatusCode, strings.TrimSpace(string(snippet)))
		observeStageDone(StageToken, start, rerr)
		c.stageLogger(ctx, target).Error().
			Str(log.FieldEvent, "token.rejected").
			Int(log.FieldStatus, res.StatusCode).
			Msg("token request rejected upstream")
		return PlaybackToken{}, rerr
	}

	var p struct {
		Data struct {
			StreamToken *gqlToken `json:"streamPlaybackAccessToken"`
			VideoToken  *gqlToken `json:"videoPlaybackAccessToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		derr := newDecodeError(StageToken, op, err)
		observeStageDone(StageToken, start, derr)
		return PlaybackToken{}, derr
	}

	tok := p.Data.StreamToken
	if !target.IsLive() {
		tok = p.Data.VideoToken
	}
	if tok == nil || tok.Value == "" {
		// A syntactically valid response without a token (unknown channel,
		// region lock) counts as a malformed response, not a lookup miss.
		derr := newDecodeError(StageToken, op, nil)
		observeStageDone(StageToken, start, derr)
		c.stageLogger(ctx, target).Error().
			Str(log.FieldEvent, "token.missing").
			Msg("response carried no playback token")
		return PlaybackToken{}, derr
	}

	observeStageDone(StageToken, start, nil)
	c.stageLogger(ctx, target).Debug().
		Str(log.FieldEvent, "token.acquired").
		Dur(log.FieldDuration, time.Since(start)).
		Msg("playback token acquired")

	return PlaybackToken{Value: tok.Value, Signature: tok.Signature, Kind: tok.Typename}, nil
}
