// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package progress keeps a scrub position (0..100) in step with a media
// element's playhead.
package progress

import (
	"errors"
	"math"

	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/metrics"
)

// ErrDurationUnknown is returned by Seek while the element has no usable duration.
var ErrDurationUnknown = errors.New("progress: duration unknown")

// Synchronizer mirrors an element's time updates into a percentage and maps
// user seeks back onto the element.
type Synchronizer struct {
	el       media.Element
	progress float64
	stop     func()
}

// New subscribes to el's time updates. Call Close to unsubscribe.
func New(el media.Element) *Synchronizer {
	s := &Synchronizer{el: el}
	s.stop = el.OnTimeUpdate(s.OnTimeUpdate)
	return s
}

// OnTimeUpdate recomputes progress. Updates with an unknown duration are ignored.
func (s *Synchronizer) OnTimeUpdate(current, duration float64) {
	if !media.KnownDuration(duration) || math.IsNaN(current) {
		return
	}
	s.progress = clamp(current / duration * 100)
}

// Seek moves the playhead to value percent of the duration.
func (s *Synchronizer) Seek(value float64) error {
	if math.IsNaN(value) {
		return errors.New("progress: seek value is NaN")
	}
	d := s.el.Duration()
	if !media.KnownDuration(d) {
		metrics.IncSeekRejected()
		return ErrDurationUnknown
	}
	value = clamp(value)
	s.el.SetCurrentTime(d * value / 100)
	s.progress = value
	return nil
}

// Progress returns the last computed position in [0, 100].
func (s *Synchronizer) Progress() float64 {
	return s.progress
}

// Close detaches from the element. Safe to call more than once.
func (s *Synchronizer) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
