// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		url  string
		want Decision
	}{
		{
			name: "Engine_HLS",
			caps: Capabilities{EngineSupported: true},
			url:  "http://cdn/clip/master.m3u8",
			want: Decision{Mode: ModeEngine, Reason: ReasonEngineHLS},
		},
		{
			name: "EngineWinsOverNative",
			caps: Capabilities{EngineSupported: true, NativeHLS: true},
			url:  "http://cdn/clip/master.m3u8?token=1",
			want: Decision{Mode: ModeEngine, Reason: ReasonEngineHLS},
		},
		{
			name: "NativeHLSFallback",
			caps: Capabilities{NativeHLS: true},
			url:  "http://cdn/clip/master.m3u8",
			want: Decision{Mode: ModeNative, Reason: ReasonNativeHLS},
		},
		{
			name: "NoHLSSupport",
			caps: Capabilities{NativeMP4: true},
			url:  "http://cdn/clip/master.m3u8",
			want: Decision{Mode: ModeUnsupported, Reason: ReasonNoHLSSupport},
		},
		{
			name: "DirectMP4",
			caps: Capabilities{EngineSupported: true, NativeMP4: true},
			url:  "http://cdn/clip.mp4",
			want: Decision{Mode: ModeNative, Reason: ReasonDirectFile},
		},
		{
			name: "UnknownExtension_Engine",
			caps: Capabilities{EngineSupported: true},
			url:  "http://cdn/play?id=7",
			want: Decision{Mode: ModeEngine, Reason: ReasonEngineHLS},
		},
		{
			name: "UnknownExtension_Nothing",
			caps: Capabilities{},
			url:  "http://cdn/play?id=7",
			want: Decision{Mode: ModeUnsupported, Reason: ReasonUnknownMimeType},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.caps, tt.url))
		})
	}
}
