// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog holds the server-side list of clips and renders the HLS
// playlists that describe them.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/ManuGH/reelfeed/internal/clip"
	"github.com/ManuGH/reelfeed/internal/validate"
	"gopkg.in/yaml.v3"
)

var (
	ErrClipNotFound    = errors.New("catalog: clip not found")
	ErrVariantNotFound = errors.New("catalog: variant not found")
)

// DefaultSegmentDuration is used when an entry does not set one, in seconds.
const DefaultSegmentDuration = 6.0

// Rendition is one quality level of a clip.
type Rendition struct {
	Name       string `yaml:"name"`
	Bandwidth  int    `yaml:"bandwidth"`
	Resolution string `yaml:"resolution,omitempty"`
	Codecs     string `yaml:"codecs,omitempty"`
}

// DefaultRenditions apply to entries without their own ladder.
var DefaultRenditions = []Rendition{
	{Name: "360p", Bandwidth: 800_000, Resolution: "640x360", Codecs: "avc1.42c01e,mp4a.40.2"},
	{Name: "720p", Bandwidth: 2_500_000, Resolution: "1280x720", Codecs: "avc1.64001f,mp4a.40.2"},
}

// Entry is one catalog clip. A play_url set in the file is handed out as is;
// otherwise the play URL points at the generated master playlist.
type Entry struct {
	clip.Clip `yaml:",inline"`
	// Duration in seconds.
	Duration        float64     `yaml:"duration"`
	SegmentDuration float64     `yaml:"segmentDuration,omitempty"`
	Renditions      []Rendition `yaml:"renditions,omitempty"`
}

type file struct {
	Clips []Entry `yaml:"clips"`
}

// Catalog is an immutable, validated set of entries in feed order.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	// #nosec G304 -- catalog path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes strict YAML and validates it.
func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Clips)
}

// New validates entries and fills per-entry defaults.
func New(entries []Entry) (*Catalog, error) {
	v := validate.New()
	c := &Catalog{entries: make([]Entry, 0, len(entries)), byID: make(map[string]int, len(entries))}
	for i, e := range entries {
		field := fmt.Sprintf("clips[%d]", i)
		if strings.TrimSpace(e.Title) == "" {
			v.AddError(field+".title", "title is required", e.Title)
			continue
		}
		if _, dup := c.byID[e.ID()]; dup {
			v.AddError(field+".title", "duplicate title", e.Title)
			continue
		}
		if e.PlayURL != "" {
			v.URL(field+".play_url", e.PlayURL, []string{"http", "https"})
		}
		v.PositiveFloat(field+".duration", e.Duration)
		if e.SegmentDuration == 0 {
			e.SegmentDuration = DefaultSegmentDuration
		}
		v.PositiveFloat(field+".segmentDuration", e.SegmentDuration)
		if len(e.Renditions) == 0 {
			e.Renditions = append([]Rendition(nil), DefaultRenditions...)
		}
		names := map[string]bool{}
		for j, r := range e.Renditions {
			rf := fmt.Sprintf("%s.renditions[%d]", field, j)
			v.NotEmpty(rf+".name", r.Name)
			if strings.ContainsAny(r.Name, "/?#") {
				v.AddError(rf+".name", "must not contain URL separators", r.Name)
			}
			if names[r.Name] {
				v.AddError(rf+".name", "duplicate rendition", r.Name)
			}
			names[r.Name] = true
			if r.Bandwidth <= 0 {
				v.AddError(rf+".bandwidth", "must be > 0", r.Bandwidth)
			}
		}
		c.byID[e.ID()] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.entries) }

// Lookup returns the entry with the given id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Clips renders the feed in order. Generated play URLs are rooted at baseURL.
func (c *Catalog) Clips(baseURL string) []clip.Clip {
	base := strings.TrimRight(baseURL, "/")
	out := make([]clip.Clip, 0, len(c.entries))
	for _, e := range c.entries {
		cl := e.Clip
		if cl.PlayURL == "" {
			cl.PlayURL = base + MasterPath(e.ID())
		}
		out = append(out, cl)
	}
	return out
}

// MasterPath is the URL path of an entry's master playlist.
func MasterPath(id string) string {
	return "/hls/" + url.PathEscape(id) + "/master.m3u8"
}
