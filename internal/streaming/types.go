// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package streaming

import (
	"context"

	"github.com/ManuGH/reelfeed/internal/media"
)

// ManifestInfo is what a session reports once the stream manifest is parsed.
type ManifestInfo struct {
	URL       string  // media playlist actually bound to the element
	Variant   string  // variant label (resolution or URI)
	Bandwidth int     // bits per second of the selected variant, 0 for single-rendition streams
	Variants  int     // number of renditions offered
	Duration  float64 // seconds
}

// Session is one adaptive-bitrate engine instance bound to one media handle.
// Callbacks run on the owner's event loop and never after Destroy.
type Session interface {
	ID() string
	Attach(el media.Element)
	Load(ctx context.Context, url string)
	OnManifestParsed(fn func(ManifestInfo))
	OnError(fn func(error))
	// Destroy releases network and decoder resources. Idempotent.
	Destroy()
}

// Engine creates sessions.
type Engine interface {
	Supported() bool
	NewSession() Session
}

// Mode is how a clip gets bound to its media handle.
type Mode string

const (
	ModeEngine      Mode = "engine"      // adaptive engine attached to the element
	ModeNative      Mode = "native"      // element plays the URL itself
	ModeUnsupported Mode = "unsupported" // nothing can play it
)

// ReasonCode records why Decide picked a mode.
type ReasonCode string

const (
	ReasonEngineHLS       ReasonCode = "ENGINE_HLS_READY"
	ReasonNativeHLS       ReasonCode = "NATIVE_HLS_FALLBACK"
	ReasonDirectFile      ReasonCode = "DIRECT_FILE_READY"
	ReasonNoHLSSupport    ReasonCode = "HLS_UNSUPPORTED"
	ReasonUnknownMimeType ReasonCode = "UNKNOWN_SOURCE_TYPE"
)

// Capabilities are the facts Decide works from.
type Capabilities struct {
	EngineSupported bool
	NativeHLS       bool
	NativeMP4       bool
}

// Decision is the output of Decide.
type Decision struct {
	Mode   Mode
	Reason ReasonCode
}
