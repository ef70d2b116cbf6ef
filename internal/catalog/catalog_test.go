// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"testing"

	"github.com/ManuGH/reelfeed/internal/hls"
	"github.com/ManuGH/reelfeed/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
clips:
  - title: Sunrise
    cover: https://cdn.example/sunrise.jpg
    creator:
      name: Ana
      handle: "@ana"
    description: first light
    duration: 14.5
  - title: Waves & Rocks
    duration: 30
    segmentDuration: 4
    renditions:
      - name: low
        bandwidth: 400000
      - name: high
        bandwidth: 3000000
        resolution: 1920x1080
  - title: External
    play_url: https://other.example/ext.mp4
    duration: 9
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	e, ok := c.Lookup("Sunrise")
	require.True(t, ok)
	assert.Equal(t, "Ana", e.Creator.Name)
	assert.Equal(t, DefaultSegmentDuration, e.SegmentDuration)
	assert.Equal(t, DefaultRenditions, e.Renditions)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestClips_PlayURLs(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	clips := c.Clips("http://localhost:8088/")
	require.Len(t, clips, 3)
	assert.Equal(t, "http://localhost:8088/hls/Sunrise/master.m3u8", clips[0].PlayURL)
	assert.Equal(t, "http://localhost:8088/hls/Waves%20&%20Rocks/master.m3u8", clips[1].PlayURL)
	assert.Equal(t, "https://other.example/ext.mp4", clips[2].PlayURL)
	for _, cl := range clips {
		assert.NoError(t, cl.Validate())
	}
}

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte(`
clips:
  - title: a
    duration: 0
  - title: a
    duration: 3
  - title: ""
    duration: 3
  - title: b
    duration: 3
    renditions:
      - name: x/y
        bandwidth: 0
`))
	require.Error(t, err)
	var ve validate.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := map[string]bool{}
	for _, e := range ve.Errors() {
		fields[e.Field] = true
	}
	assert.True(t, fields["clips[0].duration"])
	assert.True(t, fields["clips[1].title"])
	assert.True(t, fields["clips[2].title"])
	assert.True(t, fields["clips[3].renditions[0].name"])
	assert.True(t, fields["clips[3].renditions[0].bandwidth"])
}

func TestParse_StrictAndEmpty(t *testing.T) {
	_, err := Parse([]byte("clips:\n  - title: a\n    duration: 1\n    loop: true\n"))
	assert.Error(t, err)

	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestPlaylists_ParseBack(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	e, _ := c.Lookup("Waves & Rocks")

	master, err := hls.ParseManifest(MasterPlaylist(e))
	require.NoError(t, err)
	require.True(t, master.Master)
	require.Len(t, master.Variants, 2)
	assert.Equal(t, "low/index.m3u8", master.Variants[0].URI)
	assert.Equal(t, "1920x1080", master.Variants[1].Resolution)

	text, err := MediaPlaylist(e, "high")
	require.NoError(t, err)
	media, err := hls.ParseManifest(text)
	require.NoError(t, err)
	assert.False(t, media.Master)
	assert.True(t, media.VOD)
	assert.Equal(t, 8, media.Segments)
	assert.InDelta(t, 30.0, media.Duration, 1e-6)

	e, _ = c.Lookup("Sunrise")
	text, err = MediaPlaylist(e, "360p")
	require.NoError(t, err)
	media, err = hls.ParseManifest(text)
	require.NoError(t, err)
	assert.Equal(t, 3, media.Segments)
	assert.InDelta(t, 14.5, media.Duration, 1e-6)

	_, err = MediaPlaylist(e, "4k")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}
