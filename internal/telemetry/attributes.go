// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Playback target attributes
	TargetLiveKey    = "playback.live"
	TargetChannelKey = "playback.channel"
	TargetVideoKey   = "playback.video_id"

	// Pipeline attributes
	StageKey = "pipeline.stage"

	// Resolution attributes
	ResolveHostKey       = "resolve.host"
	ResolveOverriddenKey = "resolve.overridden"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// TargetAttributes creates playback-target span attributes.
func TargetAttributes(live bool, data string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Bool(TargetLiveKey, live)}
	if live {
		attrs = append(attrs, attribute.String(TargetChannelKey, data))
	} else {
		attrs = append(attrs, attribute.String(TargetVideoKey, data))
	}
	return attrs
}

// StageAttributes creates pipeline-stage span attributes.
func StageAttributes(stage string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(StageKey, stage)}
}

// ResolveAttributes creates name-resolution span attributes.
func ResolveAttributes(host string, overridden bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ResolveHostKey, host),
		attribute.Bool(ResolveOverriddenKey, overridden),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
