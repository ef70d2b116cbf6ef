// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"math"
	"sync"
)

// SimOption configures a Sim element.
type SimOption func(*Sim)

// WithNativeHLS makes CanPlayType report HLS support.
func WithNativeHLS(enabled bool) SimOption {
	return func(s *Sim) { s.nativeHLS = enabled }
}

// WithAutoplayRejected makes every Play call fail, like a browser enforcing
// an autoplay policy.
func WithAutoplayRejected(rejected bool) SimOption {
	return func(s *Sim) { s.rejectPlay = rejected }
}

// WithNativeDuration supplies durations for natively loaded sources, which
// carry none of their own.
func WithNativeDuration(fn func(url string) float64) SimOption {
	return func(s *Sim) { s.nativeDuration = fn }
}

// Sim is an in-memory Element. Time only moves through Advance, which makes it
// usable both in tests and as the headless decoder behind the terminal player.
// Clips loop: reaching the end wraps to the start.
type Sim struct {
	mu sync.Mutex

	paused   bool
	muted    bool
	current  float64
	src      Source
	loaded   bool
	attached bool

	nativeHLS      bool
	rejectPlay     bool
	nativeDuration func(url string) float64

	nextID    int
	listeners map[int]TimeUpdateFunc

	playCalls  int
	pauseCalls int
	loads      int
}

func NewSim(opts ...SimOption) *Sim {
	s := &Sim{paused: true, listeners: map[int]TimeUpdateFunc{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAutoplayRejected toggles play rejection at runtime.
func (s *Sim) SetAutoplayRejected(rejected bool) {
	s.mu.Lock()
	s.rejectPlay = rejected
	s.mu.Unlock()
}

func (s *Sim) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playCalls++
	if s.rejectPlay {
		return ErrPlaybackRejected
	}
	if !s.loaded {
		return ErrNoSource
	}
	s.paused = false
	return nil
}

func (s *Sim) Pause() {
	s.mu.Lock()
	s.pauseCalls++
	s.paused = true
	s.mu.Unlock()
}

func (s *Sim) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Sim) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrentTime seeks. Values outside [0, duration] are clamped; NaN is ignored.
func (s *Sim) SetCurrentTime(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}
	s.mu.Lock()
	d := s.durationLocked()
	if seconds < 0 {
		seconds = 0
	}
	if KnownDuration(d) && seconds > d {
		seconds = d
	}
	s.current = seconds
	s.mu.Unlock()
}

func (s *Sim) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durationLocked()
}

func (s *Sim) durationLocked() float64 {
	if !s.loaded {
		return math.NaN()
	}
	return s.src.Duration
}

func (s *Sim) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *Sim) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

func (s *Sim) CanPlayType(mime string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mime {
	case MIMETypeHLS:
		return s.nativeHLS
	case MIMETypeMP4:
		return true
	}
	return false
}

// Load binds src. A different URL resets the position; reloading the same URL
// keeps it.
func (s *Sim) Load(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src.Native && s.nativeDuration != nil && !KnownDuration(src.Duration) {
		src.Duration = s.nativeDuration(src.URL)
	}
	if !s.loaded || s.src.URL != src.URL {
		s.current = 0
	}
	s.src = src
	s.loaded = true
	s.attached = !src.Native
	s.loads++
}

func (s *Sim) Detach() {
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
}

func (s *Sim) Source() (Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src, s.loaded
}

// Attached reports whether a streaming engine is currently bound.
func (s *Sim) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

func (s *Sim) OnTimeUpdate(fn TimeUpdateFunc) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Advance moves playback forward by dt seconds when playing with a known
// duration, wrapping at the end, and fires time-update listeners.
func (s *Sim) Advance(dt float64) {
	s.mu.Lock()
	d := s.durationLocked()
	if s.paused || !s.loaded || dt <= 0 || !KnownDuration(d) {
		s.mu.Unlock()
		return
	}
	s.current += dt
	if s.current >= d {
		s.current = math.Mod(s.current, d)
	}
	current := s.current
	fns := make([]TimeUpdateFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(current, d)
	}
}

// EmitTimeUpdate fires listeners with the current position without moving it.
func (s *Sim) EmitTimeUpdate() {
	s.mu.Lock()
	current, d := s.current, s.durationLocked()
	fns := make([]TimeUpdateFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(current, d)
	}
}

// Stats exposes call counters for assertions.
type Stats struct {
	PlayCalls  int
	PauseCalls int
	Loads      int
	Listeners  int
}

func (s *Sim) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{PlayCalls: s.playCalls, PauseCalls: s.pauseCalls, Loads: s.loads, Listeners: len(s.listeners)}
}

var _ Element = (*Sim)(nil)
