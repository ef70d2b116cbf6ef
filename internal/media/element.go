// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package media describes the media handle the player drives and ships a
// deterministic in-memory implementation of it.
package media

import (
	"errors"
	"math"
)

// MIME types passed to CanPlayType.
const (
	MIMETypeHLS = "application/vnd.apple.mpegurl"
	MIMETypeMP4 = "video/mp4"
)

var (
	// ErrPlaybackRejected is returned by Play when the handle refuses to start
	// (autoplay policy, decode failure).
	ErrPlaybackRejected = errors.New("media: playback rejected")
	// ErrNoSource is returned by Play when nothing is loaded.
	ErrNoSource = errors.New("media: no source")
)

// Source is what gets bound to an element.
type Source struct {
	URL string
	// Duration in seconds; NaN when the container did not report one.
	Duration float64
	// Native is true when the element plays the URL itself rather than through
	// an attached streaming engine.
	Native bool
}

// TimeUpdateFunc receives the playback position and duration in seconds.
type TimeUpdateFunc func(current, duration float64)

// Element is the subset of an HTML media element the player relies on.
type Element interface {
	Play() error
	Pause()
	Paused() bool

	CurrentTime() float64
	SetCurrentTime(seconds float64)
	// Duration is NaN until a source with a known duration is loaded.
	Duration() float64

	Muted() bool
	SetMuted(muted bool)

	CanPlayType(mime string) bool
	Load(src Source)
	// Detach unbinds a streaming engine. Position and source survive so a
	// later Play resumes where it stopped.
	Detach()
	Source() (Source, bool)

	OnTimeUpdate(fn TimeUpdateFunc) (cancel func())
}

// KnownDuration reports whether d is a usable media duration.
func KnownDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}
