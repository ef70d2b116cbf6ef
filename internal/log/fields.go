// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldClipID    = "clip_id"
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldTrigger  = "trigger"

	// Playback fields
	FieldMode     = "mode"
	FieldReason   = "reason"
	FieldPosition = "position"
	FieldDuration = "duration"
	FieldVariant  = "variant"

	// Path / URL fields
	FieldURL  = "url"
	FieldPath = "path"
)
