// Package twitch implements the two-stage playback handshake against the
// Twitch backends, reachable from networks that tamper with DNS answers or
// block the hostnames outright.
package twitch

import (
	"context"
	"net/http"

	"github.com/ManuGH/ttvgate/internal/log"
	"github.com/rs/zerolog"
)

const (
	// gqlURL points at a fastly edge that fronts the GQL backend. The real
	// destination is selected with an explicit Host header; the edge
	// hostname itself resolves through the override table.
	gqlURL  = "https://twitch.map.fastly.net/gql"
	gqlHost = "gql.twitch.tv"

	// usherBase serves the HLS playlists.
	usherBase = "https://usher.ttvnw.net"

	// clientID is the public web-player application ID expected by GQL.
	clientID = "kimne78kx3ncx6brgo4mv6wki5h1ko"

	// persistedQueryHash pins the PlaybackAccessToken persisted GQL query.
	persistedQueryHash = "0828119ded1c13477966434e15800ff57ddacf13ba1911c129dc2200705b0712"

	playerType = "site"
)

// Client runs the playback handshake. One instance is built at startup and
// shared; it is safe for concurrent use.
type Client struct {
	http      *http.Client
	logger    zerolog.Logger
	gqlURL    string
	gqlHost   string
	usherBase string
	newID     func() string
	randN     func() int
}

// NewClient wraps the given HTTP client. Passing nil builds the default
// upstream client with the built-in resolver and timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(NewResolver(), 0)
	}
	return &Client{
		http:      httpClient,
		logger:    log.WithComponent("twitch"),
		gqlURL:    gqlURL,
		gqlHost:   gqlHost,
		usherBase: usherBase,
		newID:     GenerateID,
		randN:     randomPlaybackNumber,
	}
}

func (c *Client) stageLogger(ctx context.Context, target Target) *zerolog.Logger {
	key, value := target.logField()
	l := log.WithContext(ctx, c.logger).With().Str(key, value).Logger()
	return &l
}
