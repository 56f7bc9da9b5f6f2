package twitch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Stage names the pipeline step an error belongs to. Every error that leaves
// this package is tagged with exactly one stage.
type Stage string

const (
	StageToken    Stage = "token"
	StagePlaylist Stage = "playlist"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrTimeout             = errors.New("twitch: request timed out")
	ErrUpstreamUnavailable = errors.New("twitch: host unreachable or transport failure")
	ErrUpstreamRejected    = errors.New("twitch: upstream rejected the request")
	ErrUpstreamBadResponse = errors.New("twitch: invalid response format or malformed data")
)

// Error is a rich error type that wraps the sentinel errors with context.
type Error struct {
	Stage    Stage
	Op       string
	Sentinel error
	Status   int    // HTTP status received from upstream, when any
	Body     string // trimmed upstream body for rejected requests
	Err      error  // nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("twitch: %s: %s: %v", e.Stage, e.Op, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Timeout reports whether the error is the timeout flavor of a transport
// failure.
func (e *Error) Timeout() bool {
	return errors.Is(e.Sentinel, ErrTimeout)
}

// Display returns the short operator-facing description of the failure.
func (e *Error) Display() string {
	if e.Status > 0 {
		return fmt.Sprintf("%v (HTTP %d)", e.Sentinel, e.Status)
	}
	return e.Sentinel.Error()
}

// Debug returns the fully detailed description, nested causes included.
func (e *Error) Debug() string {
	return e.Error()
}

// transportSentinel folds a transport-level failure into the sentinel
// taxonomy: timeouts (including an expired context deadline) become
// ErrTimeout, everything else ErrUpstreamUnavailable.
func transportSentinel(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}

func newTransportError(stage Stage, op string, err error) *Error {
	return &Error{Stage: stage, Op: op, Sentinel: transportSentinel(err), Err: err}
}

func newRejectedError(stage Stage, op string, status int, body string) *Error {
	return &Error{Stage: stage, Op: op, Sentinel: ErrUpstreamRejected, Status: status, Body: body}
}

func newDecodeError(stage Stage, op string, err error) *Error {
	return &Error{Stage: stage, Op: op, Sentinel: ErrUpstreamBadResponse, Err: err}
}
