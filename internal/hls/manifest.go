// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hls

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNotPlaylist   = errors.New("hls: missing #EXTM3U header")
	ErrNoVariants    = errors.New("hls: master playlist has no variants")
	ErrEmptyPlaylist = errors.New("hls: media playlist has no segments")
)

// Variant is one rendition advertised by a master playlist.
type Variant struct {
	URI        string
	Bandwidth  int
	Resolution string
	Codecs     string
}

// Label is a short human-readable name for the variant.
func (v Variant) Label() string {
	if v.Resolution != "" {
		return v.Resolution
	}
	return v.URI
}

// Manifest is the parsed form of either a master or a media playlist.
type Manifest struct {
	Master   bool
	Variants []Variant

	// Media playlist facts
	TargetDuration float64
	Segments       int
	Duration       float64 // sum of #EXTINF, seconds
	VOD            bool    // #EXT-X-PLAYLIST-TYPE:VOD or #EXT-X-ENDLIST
}

// ParseManifest parses an HLS playlist. Master playlists yield Variants in
// ascending bandwidth; media playlists yield timing facts.
func ParseManifest(playlist string) (*Manifest, error) {
	scanner := bufio.NewScanner(strings.NewReader(playlist))
	m := &Manifest{}

	var (
		sawHeader   bool
		pendingInf  *Variant
		expectMedia bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !sawHeader {
			if line != "#EXTM3U" {
				return nil, ErrNotPlaylist
			}
			sawHeader = true
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			v := &Variant{Resolution: attrs["RESOLUTION"], Codecs: attrs["CODECS"]}
			if bw, err := strconv.Atoi(attrs["BANDWIDTH"]); err == nil {
				v.Bandwidth = bw
			}
			pendingInf = v
			m.Master = true

		case strings.HasPrefix(line, "#EXT-X-PLAYLIST-TYPE:VOD"), line == "#EXT-X-ENDLIST":
			m.VOD = true

		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			v, err := strconv.ParseFloat(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:"), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid target duration: %s", line)
			}
			m.TargetDuration = v

		case strings.HasPrefix(line, "#EXTINF:"):
			// Format: #EXTINF:6.000,title
			durStr := strings.TrimPrefix(line, "#EXTINF:")
			if idx := strings.Index(durStr, ","); idx != -1 {
				durStr = durStr[:idx]
			}
			d, err := strconv.ParseFloat(durStr, 64)
			if err != nil || d < 0 {
				return nil, fmt.Errorf("invalid EXTINF duration: %s", line)
			}
			m.Duration += d
			expectMedia = true

		case strings.HasPrefix(line, "#"):
			// Other tags are irrelevant for playback coordination.

		default:
			if pendingInf != nil {
				pendingInf.URI = line
				m.Variants = append(m.Variants, *pendingInf)
				pendingInf = nil
				continue
			}
			if expectMedia {
				m.Segments++
				expectMedia = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan playlist: %w", err)
	}
	if !sawHeader {
		return nil, ErrNotPlaylist
	}

	if m.Master {
		if len(m.Variants) == 0 {
			return nil, ErrNoVariants
		}
		sort.SliceStable(m.Variants, func(i, j int) bool {
			return m.Variants[i].Bandwidth < m.Variants[j].Bandwidth
		})
		return m, nil
	}
	if m.Segments == 0 {
		return nil, ErrEmptyPlaylist
	}
	return m, nil
}

// Select returns the richest variant whose bandwidth fits maxBandwidth, or
// the leanest one when none fit. maxBandwidth <= 0 means unlimited.
func (m *Manifest) Select(maxBandwidth int) (Variant, bool) {
	if len(m.Variants) == 0 {
		return Variant{}, false
	}
	if maxBandwidth <= 0 {
		return m.Variants[len(m.Variants)-1], true
	}
	best := -1
	for i, v := range m.Variants {
		if v.Bandwidth <= maxBandwidth {
			best = i
		}
	}
	if best == -1 {
		return m.Variants[0], true
	}
	return m.Variants[best], true
}

// parseAttributes splits an attribute list, honouring quoted values that
// contain commas (CODECS="avc1.64001f,mp4a.40.2").
func parseAttributes(s string) map[string]string {
	out := map[string]string{}
	var (
		key, val strings.Builder
		inKey    = true
		quoted   bool
	)
	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			out[strings.ToUpper(k)] = strings.Trim(strings.TrimSpace(val.String()), `"`)
		}
		key.Reset()
		val.Reset()
		inKey = true
	}
	for _, r := range s {
		switch {
		case inKey && r == '=':
			inKey = false
		case inKey:
			key.WriteRune(r)
		case r == '"':
			quoted = !quoted
			val.WriteRune(r)
		case r == ',' && !quoted:
			flush()
		default:
			val.WriteRune(r)
		}
	}
	flush()
	return out
}
