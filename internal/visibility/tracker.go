// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package visibility reports when observed elements cross the on-screen
// threshold of the feed viewport.
package visibility

import (
	"sync"

	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/rs/zerolog"
)

// Threshold is the fraction of an element that must be on screen for it to count as visible.
const Threshold = 0.5

// Event is one intersection change.
type Event string

const (
	Entering Event = "entering"
	Leaving  Event = "leaving"
)

// Target is anything with a position in the feed.
type Target interface {
	Bounds() Rect
}

// Handler receives events for one subscription.
type Handler func(Event)

// Tracker watches targets against a viewport. Like the rest of the player it
// is driven from one event loop; the mutex only guards bookkeeping so that
// Unobserve can be called from cleanup paths.
type Tracker struct {
	mu       sync.Mutex
	viewport Rect
	subs     []*Subscription
	logger   zerolog.Logger
}

// Subscription is the handle returned by Observe.
type Subscription struct {
	tracker *Tracker
	key     string
	target  Target
	fn      Handler
	visible bool
	active  bool
}

func NewTracker(viewport Rect) *Tracker {
	return &Tracker{
		viewport: viewport,
		logger:   xglog.WithComponent("visibility"),
	}
}

// Viewport returns the current viewport.
func (t *Tracker) Viewport() Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewport
}

// Observe starts watching target. key is used for logging only. When the
// target is already visible an initial Entering is delivered before Observe
// returns.
func (t *Tracker) Observe(key string, target Target, fn Handler) *Subscription {
	s := &Subscription{tracker: t, key: key, target: target, fn: fn, active: true}

	t.mu.Lock()
	t.subs = append(t.subs, s)
	visible := target.Bounds().Ratio(t.viewport) >= Threshold
	t.mu.Unlock()

	if visible {
		s.visible = true
		s.deliver(Entering)
	}
	return s
}

// ScrollTo moves the viewport top and re-evaluates every target.
func (t *Tracker) ScrollTo(top float64) {
	t.mu.Lock()
	vp := t.viewport
	t.mu.Unlock()
	vp.Top = top
	t.SetViewport(vp)
}

// SetViewport replaces the viewport and emits crossings. Within one pass all
// Leaving events are delivered before any Entering event, each group in
// observation order, so the outgoing item releases before the incoming one claims.
func (t *Tracker) SetViewport(vp Rect) {
	t.mu.Lock()
	t.viewport = vp
	subs := append([]*Subscription(nil), t.subs...)
	t.mu.Unlock()

	t.evaluate(subs, vp)
}

func (t *Tracker) evaluate(subs []*Subscription, vp Rect) {
	var leaving, entering []*Subscription
	for _, s := range subs {
		if !s.isActive() {
			continue
		}
		now := s.target.Bounds().Ratio(vp) >= Threshold
		switch {
		case s.visible && !now:
			leaving = append(leaving, s)
		case !s.visible && now:
			entering = append(entering, s)
		}
	}
	for _, s := range leaving {
		s.visible = false
		s.deliver(Leaving)
	}
	for _, s := range entering {
		s.visible = true
		s.deliver(Entering)
	}
}

// Len returns the number of live subscriptions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Close unobserves every target.
func (t *Tracker) Close() {
	t.mu.Lock()
	subs := t.subs
	t.subs = nil
	t.mu.Unlock()
	for _, s := range subs {
		s.Unobserve()
	}
}

func (s *Subscription) isActive() bool {
	s.tracker.mu.Lock()
	defer s.tracker.mu.Unlock()
	return s.active
}

func (s *Subscription) deliver(ev Event) {
	if !s.isActive() || s.fn == nil {
		return
	}
	s.tracker.logger.Debug().
		Str(xglog.FieldEvent, "visibility."+string(ev)).
		Str(xglog.FieldClipID, s.key).
		Msg("intersection changed")
	s.fn(ev)
}

// Visible reports the last delivered visibility state.
func (s *Subscription) Visible() bool {
	return s.visible
}

// Unobserve stops delivery. Safe to call more than once.
func (s *Subscription) Unobserve() {
	t := s.tracker
	t.mu.Lock()
	defer t.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	out := t.subs[:0]
	for _, other := range t.subs {
		if other != s {
			out = append(out, other)
		}
	}
	t.subs = out
}
