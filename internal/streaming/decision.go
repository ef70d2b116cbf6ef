// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package streaming

import (
	"net/url"
	"path"
	"strings"
)

// Decide picks the attach mode for a source URL. It is total and has no side effects.
func Decide(caps Capabilities, sourceURL string) Decision {
	switch sourceKind(sourceURL) {
	case "hls":
		if caps.EngineSupported {
			return Decision{Mode: ModeEngine, Reason: ReasonEngineHLS}
		}
		if caps.NativeHLS {
			return Decision{Mode: ModeNative, Reason: ReasonNativeHLS}
		}
		return Decision{Mode: ModeUnsupported, Reason: ReasonNoHLSSupport}
	case "mp4":
		if caps.NativeMP4 {
			return Decision{Mode: ModeNative, Reason: ReasonDirectFile}
		}
		return Decision{Mode: ModeUnsupported, Reason: ReasonUnknownMimeType}
	}

	// Unknown extension: prefer the engine, which sniffs the manifest itself.
	if caps.EngineSupported {
		return Decision{Mode: ModeEngine, Reason: ReasonEngineHLS}
	}
	if caps.NativeHLS {
		return Decision{Mode: ModeNative, Reason: ReasonNativeHLS}
	}
	return Decision{Mode: ModeUnsupported, Reason: ReasonUnknownMimeType}
}

func sourceKind(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".m3u8", ".m3u":
		return "hls"
	case ".mp4", ".m4v", ".mov":
		return "mp4"
	}
	return ""
}
