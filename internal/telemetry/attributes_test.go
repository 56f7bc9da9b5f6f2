// SPDX-License-Identifier: MIT
package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestTargetAttributes(t *testing.T) {
	tests := []struct {
		name    string
		live    bool
		data    string
		wantKey string
	}{
		{
			name:    "live channel",
			live:    true,
			data:    "somechannel",
			wantKey: TargetChannelKey,
		},
		{
			name:    "recorded video",
			live:    false,
			data:    "123456789",
			wantKey: TargetVideoKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := TargetAttributes(tt.live, tt.data)

			if len(attrs) != 2 {
				t.Fatalf("Expected 2 attributes, got %d", len(attrs))
			}

			verifyBoolAttribute(t, attrs, TargetLiveKey, tt.live)
			verifyAttribute(t, attrs, tt.wantKey, tt.data)
		})
	}
}

func TestStageAttributes(t *testing.T) {
	attrs := StageAttributes("token")

	if len(attrs) != 1 {
		t.Fatalf("Expected 1 attribute, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, StageKey, "token")
}

func TestResolveAttributes(t *testing.T) {
	attrs := ResolveAttributes("usher.ttvnw.net:443", true)

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, ResolveHostKey, "usher.ttvnw.net:443")
	verifyBoolAttribute(t, attrs, ResolveOverriddenKey, true)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("timeout")

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}

	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "timeout")
}

// Helper functions for attribute verification

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue bool) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsBool() != expectedValue {
				t.Errorf("Expected %s=%t, got %t", key, expectedValue, attr.Value.AsBool())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
