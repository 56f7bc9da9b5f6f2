package twitch

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
)

func TestTransportSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"context deadline", context.DeadlineExceeded, ErrTimeout},
		{"net timeout", &net.DNSError{IsTimeout: true}, ErrTimeout},
		{"connection refused", errors.New("connect: connection refused"), ErrUpstreamUnavailable},
		{"wrapped deadline", &net.OpError{Op: "dial", Err: context.DeadlineExceeded}, ErrTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			werr := newTransportError(StageToken, "test", tc.err)
			if !errors.Is(werr, tc.sentinel) {
				t.Errorf("expected sentinel %v, got %v", tc.sentinel, werr)
			}

			var perr *Error
			if !errors.As(werr, &perr) {
				t.Fatal("expected error to be *Error")
			}
			if perr.Stage != StageToken {
				t.Errorf("expected stage %q, got %q", StageToken, perr.Stage)
			}
			if !errors.Is(perr.Err, tc.err) {
				t.Errorf("expected cause %v preserved, got %v", tc.err, perr.Err)
			}
		})
	}
}

func TestRejectedError(t *testing.T) {
	err := newRejectedError(StagePlaylist, "playlist fetch", 403, `{"error":"forbidden"}`)

	if !errors.Is(err, ErrUpstreamRejected) {
		t.Errorf("expected ErrUpstreamRejected, got %v", err)
	}
	if err.Stage != StagePlaylist {
		t.Errorf("expected stage %q, got %q", StagePlaylist, err.Stage)
	}
	if err.Status != 403 {
		t.Errorf("expected status 403, got %d", err.Status)
	}
	if !strings.Contains(err.Error(), "HTTP 403") {
		t.Errorf("message should carry the status: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "forbidden") {
		t.Errorf("message should carry the upstream body: %q", err.Error())
	}
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := newDecodeError(StageToken, "playback token", cause)

	if !errors.Is(err, ErrUpstreamBadResponse) {
		t.Errorf("expected ErrUpstreamBadResponse, got %v", err)
	}
	if !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("message should carry the cause: %q", err.Error())
	}
}

func TestErrorTimeout(t *testing.T) {
	timeout := newTransportError(StageToken, "test", context.DeadlineExceeded)
	if !timeout.Timeout() {
		t.Error("deadline error should report Timeout()")
	}

	refused := newTransportError(StageToken, "test", errors.New("connection refused"))
	if refused.Timeout() {
		t.Error("refused connection should not report Timeout()")
	}
}

func TestErrorDisplayOmitsCause(t *testing.T) {
	cause := errors.New("dial tcp 192.0.2.1:443: i/o timeout")
	err := newTransportError(StagePlaylist, "playlist fetch", cause)

	display := err.Display()
	if strings.Contains(display, "192.0.2.1") {
		t.Errorf("display string should not leak transport detail: %q", display)
	}
	if !strings.Contains(err.Debug(), "192.0.2.1") {
		t.Errorf("debug string should keep transport detail: %q", err.Debug())
	}
}

func TestErrorDisplayCarriesStatus(t *testing.T) {
	err := newRejectedError(StageToken, "playback token", 404, "")
	if !strings.Contains(err.Display(), "HTTP 404") {
		t.Errorf("display should carry the status: %q", err.Display())
	}
}
