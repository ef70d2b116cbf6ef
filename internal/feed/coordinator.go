// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package feed owns the shared feed state: the clip sequence, which clip is
// allowed to play, and the global mute flag.
package feed

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ManuGH/reelfeed/internal/clip"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrUnknownClip is returned when an id is not part of the loaded sequence.
var ErrUnknownClip = errors.New("feed: unknown clip")

// ClaimResult is the outcome of Claim.
type ClaimResult string

const (
	// ClaimGranted: the caller is now the active clip.
	ClaimGranted ClaimResult = "granted"
	// ClaimResumed: the caller already was active and may resume.
	ClaimResumed ClaimResult = "resumed"
	// ClaimRejected: the caller must stay paused.
	ClaimRejected ClaimResult = "rejected"
)

// Allowed reports whether the claimant may start playing.
func (r ClaimResult) Allowed() bool {
	return r == ClaimGranted || r == ClaimResumed
}

// Change identifies what part of the state moved.
type Change string

const (
	ChangeActive Change = "active"
	ChangeMute   Change = "mute"
	ChangeClips  Change = "clips"
)

// State is a read-only snapshot.
type State struct {
	Clips     []clip.Clip
	ActiveID  string
	HasActive bool
	Muted     bool
}

// Listener is notified after a change is committed.
type Listener func(Change, State)

// Coordinator is the single writer of the feed state. Readers subscribe.
type Coordinator struct {
	mu        sync.Mutex
	clips     []clip.Clip
	activeID  string
	hasActive bool
	muted     bool

	nextID    int
	listeners map[int]Listener

	pager  Pager
	logger zerolog.Logger
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithPager installs the infinite-scroll collaborator. Default: NopPager.
func WithPager(p Pager) Option {
	return func(c *Coordinator) { c.pager = p }
}

// WithMuted sets the initial mute flag. Default: muted, so autoplay is allowed.
func WithMuted(muted bool) Option {
	return func(c *Coordinator) { c.muted = muted }
}

func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		muted:     true,
		listeners: map[int]Listener{},
		pager:     NopPager{},
		logger:    xglog.WithComponent("feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the clip sequence. The active id survives if it is still
// present; otherwise the first clip becomes active, or none when empty.
func (c *Coordinator) Load(clips []clip.Clip) {
	c.mu.Lock()
	c.clips = append([]clip.Clip(nil), clips...)
	prevID, prevHas := c.activeID, c.hasActive
	if !c.hasActive || clip.Index(c.clips, c.activeID) < 0 {
		if len(c.clips) > 0 {
			c.activeID, c.hasActive = c.clips[0].ID(), true
		} else {
			c.activeID, c.hasActive = "", false
		}
	}
	activeMoved := prevID != c.activeID || prevHas != c.hasActive
	st := c.snapshotLocked()
	c.mu.Unlock()

	metrics.SetFeedClips(len(clips))
	c.logger.Info().
		Str(xglog.FieldEvent, "feed.loaded").
		Int("clips", len(clips)).
		Str(xglog.FieldClipID, st.ActiveID).
		Msg("feed loaded")

	c.notify(ChangeClips, st)
	if activeMoved {
		c.notify(ChangeActive, st)
	}
}

// SetActive makes id the playing clip. Setting the current id is a no-op.
func (c *Coordinator) SetActive(id string) error {
	c.mu.Lock()
	if c.hasActive && c.activeID == id {
		c.mu.Unlock()
		return nil
	}
	if clip.Index(c.clips, id) < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownClip, id)
	}
	prev := c.activeID
	c.activeID, c.hasActive = id, true
	st := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug().
		Str(xglog.FieldEvent, "feed.active_changed").
		Str(xglog.FieldOldState, prev).
		Str(xglog.FieldNewState, id).
		Msg("active clip changed")
	c.notify(ChangeActive, st)
	return nil
}

// Claim is called by an item whose clip just became visible. mediaPaused is
// the current paused flag of the item's media element.
func (c *Coordinator) Claim(id string, mediaPaused bool) ClaimResult {
	res := c.claim(id, mediaPaused)
	metrics.IncClaim(string(res))
	return res
}

func (c *Coordinator) claim(id string, mediaPaused bool) ClaimResult {
	if !mediaPaused {
		return ClaimRejected
	}
	c.mu.Lock()
	if c.hasActive && c.activeID == id {
		c.mu.Unlock()
		return ClaimResumed
	}
	c.mu.Unlock()

	if err := c.SetActive(id); err != nil {
		c.logger.Debug().Err(err).
			Str(xglog.FieldEvent, "feed.claim_rejected").
			Str(xglog.FieldClipID, id).
			Msg("claim for unknown clip")
		return ClaimRejected
	}
	return ClaimGranted
}

// ToggleMute flips the shared mute flag. Play state is never touched.
func (c *Coordinator) ToggleMute() bool {
	c.mu.Lock()
	c.muted = !c.muted
	st := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(ChangeMute, st)
	return st.Muted
}

// ReachEnd is called when the last clip is on screen.
func (c *Coordinator) ReachEnd() {
	if !c.pager.HasMore() {
		metrics.IncReachEnd("exhausted")
		return
	}
	metrics.IncReachEnd("requested")
	c.pager.OnReachEnd()
}

// Subscribe registers fn for change notifications and returns its cancel func.
func (c *Coordinator) Subscribe(fn Listener) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Active returns the active clip id, if any.
func (c *Coordinator) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID, c.hasActive
}

// IsActive reports whether id is the active clip.
func (c *Coordinator) IsActive(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasActive && c.activeID == id
}

func (c *Coordinator) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Coordinator) Clips() []clip.Clip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]clip.Clip(nil), c.clips...)
}

func (c *Coordinator) snapshotLocked() State {
	return State{
		Clips:     append([]clip.Clip(nil), c.clips...),
		ActiveID:  c.activeID,
		HasActive: c.hasActive,
		Muted:     c.muted,
	}
}

// notify calls listeners in registration order, outside the lock.
func (c *Coordinator) notify(ch Change, st State) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	slices.Sort(ids)

	for _, id := range ids {
		c.mu.Lock()
		fn, ok := c.listeners[id]
		c.mu.Unlock()
		if ok {
			fn(ch, st)
		}
	}
}
