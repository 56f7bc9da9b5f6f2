// SPDX-License-Identifier: MIT
package twitch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockServer provides a configurable stand-in for the GQL and usher backends
// for testing. It records every request it serves so tests can assert on
// headers and query parameters.
type MockServer struct {
	*httptest.Server
	mu            sync.Mutex
	liveTokens    map[string]PlaybackToken
	vodTokens     map[string]PlaybackToken
	livePlaylists map[string]string
	vodPlaylists  map[string]string
	delay         map[string]time.Duration // artificial delay per endpoint
	failures      map[string]int           // failures before success per endpoint
	gqlRequests   []CapturedGQLRequest
	usherRequests []CapturedUsherRequest
}

// CapturedGQLRequest records one token request as seen by the mock.
type CapturedGQLRequest struct {
	Host     string
	ClientID string
	DeviceID string
	Body     gqlRequest
}

// CapturedUsherRequest records one playlist request as seen by the mock.
type CapturedUsherRequest struct {
	Path  string
	Query map[string][]string
}

// Endpoint keys for delay and failure injection.
const (
	MockEndpointGQL   = "/gql"
	MockEndpointUsher = "/usher"
)

// NewMockServer creates a mock with default data: one live channel
// ("somechannel") and one recording ("123456789").
func NewMockServer() *MockServer {
	mock := &MockServer{
		liveTokens:    make(map[string]PlaybackToken),
		vodTokens:     make(map[string]PlaybackToken),
		livePlaylists: make(map[string]string),
		vodPlaylists:  make(map[string]string),
		delay:         make(map[string]time.Duration),
		failures:      make(map[string]int),
	}

	mock.SetDefaultData()

	mux := http.NewServeMux()
	mux.HandleFunc("/gql", mock.handleGQL)
	mux.HandleFunc("/api/channel/hls/", mock.handleLivePlaylist)
	mux.HandleFunc("/vod/", mock.handleVodPlaylist)

	mock.Server = httptest.NewServer(mux)
	return mock
}

// NewClient returns a pipeline client wired against the mock server.
func (m *MockServer) NewClient() *Client {
	c := NewClient(m.Server.Client())
	c.gqlURL = m.URL() + "/gql"
	c.usherBase = m.URL()
	return c
}

// SetDefaultData sets up realistic test data.
func (m *MockServer) SetDefaultData() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setDefaultDataNoLock()
}

func (m *MockServer) setDefaultDataNoLock() {
	m.liveTokens["somechannel"] = PlaybackToken{
		Value:     `{"channel":"somechannel","expires":1700000000}`,
		Signature: "f00f00f00f00f00f00f00f00f00f00f00f00f00f",
		Kind:      "PlaybackAccessToken",
	}
	m.vodTokens["123456789"] = PlaybackToken{
		Value:     `{"vod_id":123456789,"expires":1700000000}`,
		Signature: "baabaabaabaabaabaabaabaabaabaabaabaabaab",
		Kind:      "PlaybackAccessToken",
	}
	m.livePlaylists["somechannel"] = "#EXTM3U\n#EXT-X-TWITCH-INFO:NODE=\"video-edge\"\nhttps://video-edge.example/hls/somechannel.m3u8\n"
	m.vodPlaylists["123456789"] = "#EXTM3U\n#EXT-X-TWITCH-INFO:ORIGIN=\"vod\"\nhttps://vod-edge.example/123456789/chunked/index.m3u8\n"
}

// SetLiveToken configures the token returned for a channel login.
func (m *MockServer) SetLiveToken(login string, token PlaybackToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liveTokens[login] = token
}

// SetVodToken configures the token returned for a video ID.
func (m *MockServer) SetVodToken(id string, token PlaybackToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vodTokens[id] = token
}

// SetLivePlaylist configures the playlist body served for a channel.
func (m *MockServer) SetLivePlaylist(login, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.livePlaylists[login] = body
}

// SetVodPlaylist configures the playlist body served for a video ID.
func (m *MockServer) SetVodPlaylist(id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vodPlaylists[id] = body
}

// SetDelay sets an artificial delay for an endpoint.
func (m *MockServer) SetDelay(endpoint string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[endpoint] = d
}

// SetFailures sets the number of failures before success for an endpoint.
func (m *MockServer) SetFailures(endpoint string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = count
}

// GQLRequests returns the token requests captured so far.
func (m *MockServer) GQLRequests() []CapturedGQLRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CapturedGQLRequest, len(m.gqlRequests))
	copy(out, m.gqlRequests)
	return out
}

// UsherRequests returns the playlist requests captured so far.
func (m *MockServer) UsherRequests() []CapturedUsherRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CapturedUsherRequest, len(m.usherRequests))
	copy(out, m.usherRequests)
	return out
}

// takeInjection pops one pending failure and returns the configured delay.
func (m *MockServer) takeInjection(endpoint string) (fail bool, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delay = m.delay[endpoint]
	if m.failures[endpoint] > 0 {
		m.failures[endpoint]--
		return true, delay
	}
	return false, delay
}

func (m *MockServer) handleGQL(w http.ResponseWriter, r *http.Request) {
	var body gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.gqlRequests = append(m.gqlRequests, CapturedGQLRequest{
		Host:     r.Host,
		ClientID: r.Header.Get("Client-ID"),
		DeviceID: r.Header.Get("Device-ID"),
		Body:     body,
	})
	m.mu.Unlock()

	fail, delay := m.takeInjection(MockEndpointGQL)
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var token PlaybackToken
	var found bool
	m.mu.Lock()
	if body.Variables.IsLive {
		token, found = m.liveTokens[body.Variables.Login]
	} else {
		token, found = m.vodTokens[body.Variables.VodID]
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	field := "streamPlaybackAccessToken"
	if !body.Variables.IsLive {
		field = "videoPlaybackAccessToken"
	}
	if !found {
		// Twitch answers unknown targets with a JSON body whose token is null.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{field: nil},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			field: map[string]string{
				"value":      token.Value,
				"signature":  token.Signature,
				"__typename": token.Kind,
			},
		},
	})
}

func (m *MockServer) handleLivePlaylist(w http.ResponseWriter, r *http.Request) {
	login := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/channel/hls/"), ".m3u8")
	m.servePlaylist(w, r, m.livePlaylists, login)
}

func (m *MockServer) handleVodPlaylist(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/vod/"), ".m3u8")
	m.servePlaylist(w, r, m.vodPlaylists, id)
}

func (m *MockServer) servePlaylist(w http.ResponseWriter, r *http.Request, playlists map[string]string, key string) {
	m.mu.Lock()
	m.usherRequests = append(m.usherRequests, CapturedUsherRequest{
		Path:  r.URL.Path,
		Query: r.URL.Query(),
	})
	body, found := playlists[key]
	m.mu.Unlock()

	fail, delay := m.takeInjection(MockEndpointUsher)
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("token") == "" || r.URL.Query().Get("sig") == "" {
		http.Error(w, `{"error":"missing token"}`, http.StatusForbidden)
		return
	}
	if !found {
		http.Error(w, `{"error":"transcode does not exist"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	_, _ = w.Write([]byte(body))
}

// Reset clears all mock data and resets to defaults.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.liveTokens = make(map[string]PlaybackToken)
	m.vodTokens = make(map[string]PlaybackToken)
	m.livePlaylists = make(map[string]string)
	m.vodPlaylists = make(map[string]string)
	m.delay = make(map[string]time.Duration)
	m.failures = make(map[string]int)
	m.gqlRequests = nil
	m.usherRequests = nil

	m.setDefaultDataNoLock()
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.Server.URL
}
