// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"fmt"
	"math"
	"strings"
)

// MasterPlaylist lists every rendition of e. Variant URIs are relative to
// the master, so the playlist works behind any base URL.
func MasterPlaylist(e Entry) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-INDEPENDENT-SEGMENTS\n")
	for _, r := range e.Renditions {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d", r.Bandwidth)
		if r.Resolution != "" {
			fmt.Fprintf(&b, ",RESOLUTION=%s", r.Resolution)
		}
		if r.Codecs != "" {
			fmt.Fprintf(&b, ",CODECS=%q", r.Codecs)
		}
		fmt.Fprintf(&b, "\n%s/index.m3u8\n", r.Name)
	}
	return b.String()
}

// MediaPlaylist is the VOD segment list for one rendition.
func MediaPlaylist(e Entry, variant string) (string, error) {
	found := false
	for _, r := range e.Renditions {
		if r.Name == variant {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %s/%s", ErrVariantNotFound, e.ID(), variant)
	}

	seg := e.SegmentDuration
	n := int(math.Ceil(e.Duration / seg))
	var b strings.Builder
	b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-PLAYLIST-TYPE:VOD\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n#EXT-X-MEDIA-SEQUENCE:0\n", int(math.Ceil(seg)))
	remaining := e.Duration
	for i := 0; i < n; i++ {
		d := math.Min(seg, remaining)
		remaining -= d
		fmt.Fprintf(&b, "#EXTINF:%.3f,\nseg-%05d.ts\n", d, i)
	}
	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String(), nil
}
