// SPDX-License-Identifier: MIT
package twitch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(&http.Client{Timeout: 500 * time.Millisecond})
	c.gqlURL = srv.URL + "/gql"
	c.usherBase = srv.URL
	return c
}

func TestPlaybackTokenUpstream5xx(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer s.Close()

	c := newTestClient(s)
	_, err := c.PlaybackToken(context.Background(), ChannelTarget("somechannel"))
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatal("expected *Error")
	}
	if perr.Stage != StageToken {
		t.Errorf("expected stage %q, got %q", StageToken, perr.Stage)
	}
	if perr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", perr.Status)
	}
}

func TestPlaybackTokenInvalidJSON(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not-json"))
	}))
	defer s.Close()

	c := newTestClient(s)
	_, err := c.PlaybackToken(context.Background(), ChannelTarget("somechannel"))
	if !errors.Is(err, ErrUpstreamBadResponse) {
		t.Fatalf("expected ErrUpstreamBadResponse, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatal("expected *Error")
	}
	if perr.Stage != StageToken {
		t.Errorf("expected stage %q, got %q", StageToken, perr.Stage)
	}
}

func TestPlaybackTokenNullToken(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"streamPlaybackAccessToken":null}}`))
	}))
	defer s.Close()

	c := newTestClient(s)
	_, err := c.PlaybackToken(context.Background(), ChannelTarget("nosuchchannel"))
	if !errors.Is(err, ErrUpstreamBadResponse) {
		t.Fatalf("expected ErrUpstreamBadResponse for null token, got %v", err)
	}
}

func TestPlaybackTokenTimeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	c := newTestClient(s)
	_, err := c.PlaybackToken(context.Background(), ChannelTarget("somechannel"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatal("expected *Error")
	}
	if !perr.Timeout() {
		t.Error("expected Timeout() to report true")
	}
	if perr.Stage != StageToken {
		t.Errorf("expected stage %q, got %q", StageToken, perr.Stage)
	}
}

func TestPlaylistUpstream4xx(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"transcode does not exist"}`, http.StatusNotFound)
	}))
	defer s.Close()

	c := newTestClient(s)
	token := PlaybackToken{Value: "v", Signature: "s"}
	_, err := c.Playlist(context.Background(), ChannelTarget("somechannel"), token)
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatal("expected *Error")
	}
	if perr.Stage != StagePlaylist {
		t.Errorf("expected stage %q, got %q", StagePlaylist, perr.Stage)
	}
	if perr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", perr.Status)
	}
}

func TestPlaylistTimeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer s.Close()

	c := newTestClient(s)
	token := PlaybackToken{Value: "v", Signature: "s"}
	_, err := c.Playlist(context.Background(), VideoTarget("123456789"), token)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatal("expected *Error")
	}
	if perr.Stage != StagePlaylist {
		t.Errorf("expected stage %q, got %q", StagePlaylist, perr.Stage)
	}
}

func TestPlaybackTokenUnreachableHost(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	s.Close() // deliberately closed to force a connect failure

	c := newTestClient(s)
	_, err := c.PlaybackToken(context.Background(), ChannelTarget("somechannel"))
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
