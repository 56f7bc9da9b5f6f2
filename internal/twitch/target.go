package twitch

import (
	"strings"
)

type targetKind int

const (
	targetChannel targetKind = iota
	targetVideo
)

// Target identifies what playback is requested: a live channel or a recorded
// video. The two kinds never mix; every pipeline run carries exactly one.
type Target struct {
	kind targetKind
	data string
}

// ChannelTarget returns a live-channel target. Channel names are
// case-insensitive on the upstream side, so the login is lower-cased once
// here and identical channels compare equal from then on.
func ChannelTarget(name string) Target {
	return Target{kind: targetChannel, data: strings.ToLower(name)}
}

// VideoTarget returns a recorded-video target for the given video ID.
func VideoTarget(id string) Target {
	return Target{kind: targetVideo, data: id}
}

// IsLive reports whether the target is a live channel.
func (t Target) IsLive() bool {
	return t.kind == targetChannel
}

// Data returns the channel login or video ID the target was built from.
func (t Target) Data() string {
	return t.data
}

// PlaylistPath returns the usher URL path for the target.
func (t Target) PlaylistPath() string {
	if t.kind == targetChannel {
		return "/api/channel/hls/" + t.data + ".m3u8"
	}
	return "/vod/" + t.data + ".m3u8"
}

// PlaylistURL returns the full playlist URL on the production usher host.
func (t Target) PlaylistURL() string {
	return usherBase + t.PlaylistPath()
}

func (t Target) String() string {
	if t.kind == targetChannel {
		return "channel:" + t.data
	}
	return "vod:" + t.data
}

// logField returns the canonical log key for the target kind.
func (t Target) logField() (key, value string) {
	if t.kind == targetChannel {
		return "channel", t.data
	}
	return "video_id", t.data
}
