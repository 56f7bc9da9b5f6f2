// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"

	// Relay target fields
	FieldChannel = "channel"
	FieldVideoID = "video_id"

	// Network fields
	FieldHost     = "host"
	FieldAddrs    = "addrs"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"

	// Path / URL fields
	FieldPath   = "path"
	FieldMethod = "method"
)
