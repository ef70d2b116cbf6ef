// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playback runs the per-clip play/pause state machine and binds it to
// visibility, the feed coordinator, and the streaming session manager.
package playback

import (
	"context"
	"errors"

	"github.com/ManuGH/reelfeed/internal/clip"
	"github.com/ManuGH/reelfeed/internal/feed"
	"github.com/ManuGH/reelfeed/internal/fsm"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/metrics"
	"github.com/ManuGH/reelfeed/internal/progress"
	"github.com/ManuGH/reelfeed/internal/streaming"
	"github.com/ManuGH/reelfeed/internal/visibility"
	"github.com/rs/zerolog"
)

// ErrNotMounted is returned by inputs that need a mounted item.
var ErrNotMounted = errors.New("playback: item not mounted")

// Coordinator is the part of the feed coordinator an item uses.
type Coordinator interface {
	Claim(id string, mediaPaused bool) feed.ClaimResult
	SetActive(id string) error
	IsActive(id string) bool
	Muted() bool
	Subscribe(fn feed.Listener) (cancel func())
}

// Observer registers visibility callbacks.
type Observer interface {
	Observe(key string, target visibility.Target, fn visibility.Handler) *visibility.Subscription
}

// Options wires an Item.
type Options struct {
	Clip        clip.Clip
	Element     media.Element
	Coordinator Coordinator
	Observer    Observer
	Target      visibility.Target
	// Engine may be nil; the manager then falls back to native playback.
	Engine streaming.Engine
	Logger *zerolog.Logger
}

// ItemPlaybackState is the read-only view used for rendering.
type ItemPlaybackState struct {
	Playing    bool
	Progress   float64
	HasSession bool
}

// Item owns the playback of one clip. All methods must be called from the
// event loop; inputs that arrive while an input is being processed are queued
// and handled in order afterwards.
type Item struct {
	id     string
	clip   clip.Clip
	el     media.Element
	coord  Coordinator
	obs    Observer
	target visibility.Target
	logger zerolog.Logger

	mgr     *streaming.Manager
	sync    *progress.Synchronizer
	machine *fsm.Machine[State, Event]

	ctx         context.Context
	sub         *visibility.Subscription
	cancelCoord func()

	pending    []Event
	processing bool
	mounted    bool
	unmounted  bool
}

func NewItem(opts Options) *Item {
	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = xglog.WithComponent("playback")
	}
	id := opts.Clip.ID()
	logger = logger.With().Str(xglog.FieldClipID, id).Logger()
	it := &Item{
		id:     id,
		clip:   opts.Clip,
		el:     opts.Element,
		coord:  opts.Coordinator,
		obs:    opts.Observer,
		target: opts.Target,
		logger: logger,
		mgr:    streaming.NewManager(id, opts.Clip.PlayURL, opts.Element, opts.Engine, logger),
	}
	it.mgr.OnStartFailed(it.onStartFailed)
	return it
}

func (it *Item) ID() string { return it.id }

func (it *Item) Clip() clip.Clip { return it.clip }

func (it *Item) Element() media.Element { return it.el }

// Mount starts the item. It begins Playing iff its clip is the active one,
// then subscribes to the coordinator and the visibility tracker.
func (it *Item) Mount(ctx context.Context) error {
	if it.mounted || it.unmounted {
		return nil
	}
	initial := Paused
	if it.coord.IsActive(it.id) {
		initial = Playing
	}
	m, err := newMachine(it, initial)
	if err != nil {
		return err
	}
	it.machine = m
	it.ctx = ctx
	it.mounted = true

	it.el.SetMuted(it.coord.Muted())
	it.sync = progress.New(it.el)
	it.cancelCoord = it.coord.Subscribe(it.onFeedChange)

	it.logger.Debug().
		Str(xglog.FieldEvent, "playback.mounted").
		Str(xglog.FieldNewState, string(initial)).
		Msg("item mounted")

	if initial == Playing {
		it.activate()
	}
	if it.obs != nil && it.target != nil {
		it.sub = it.obs.Observe(it.id, it.target, it.onVisibility)
	}
	return nil
}

// Unmount tears everything down. Safe to call more than once; the streaming
// session is released on every path.
func (it *Item) Unmount() error {
	if !it.mounted || it.unmounted {
		it.unmounted = true
		return nil
	}
	it.unmounted = true
	it.pending = nil
	defer func() {
		if err := it.mgr.Close(); err != nil {
			it.logger.Warn().Err(err).Str(xglog.FieldEvent, "playback.release_failed").Msg("session release failed")
		}
	}()

	if it.sub != nil {
		it.sub.Unobserve()
	}
	if it.cancelCoord != nil {
		it.cancelCoord()
	}
	if it.sync != nil {
		it.sync.Close()
	}
	it.el.Pause()

	it.logger.Debug().Str(xglog.FieldEvent, "playback.unmounted").Msg("item unmounted")
	return nil
}

// Tap toggles play/pause on user request.
func (it *Item) Tap() {
	it.enqueue(UserTap)
}

// Seek moves the playhead to value percent.
func (it *Item) Seek(value float64) error {
	if it.sync == nil || it.unmounted {
		return ErrNotMounted
	}
	return it.sync.Seek(value)
}

// State returns the rendering snapshot.
func (it *Item) State() ItemPlaybackState {
	st := ItemPlaybackState{HasSession: it.mgr.HasSession()}
	if it.machine != nil {
		st.Playing = it.machine.State() == Playing
	}
	if it.sync != nil {
		st.Progress = it.sync.Progress()
	}
	return st
}

// Visible reports the last visibility the tracker delivered.
func (it *Item) Visible() bool {
	return it.sub != nil && it.sub.Visible()
}

// Mode is how the clip was last bound (engine, native, unsupported).
func (it *Item) Mode() streaming.Mode {
	return it.mgr.Mode()
}

func (it *Item) onVisibility(ev visibility.Event) {
	switch ev {
	case visibility.Entering:
		it.enqueue(Entering)
	case visibility.Leaving:
		it.enqueue(Leaving)
	}
}

// onStartFailed keeps a clip that never started visually paused. A later tap
// or re-entry retries from scratch.
func (it *Item) onStartFailed(err error) {
	it.logger.Debug().Err(err).
		Str(xglog.FieldEvent, "playback.start_failed").
		Msg("playback did not start")
	it.enqueue(StartFailed)
}

func (it *Item) onFeedChange(ch feed.Change, st feed.State) {
	switch ch {
	case feed.ChangeMute:
		it.el.SetMuted(st.Muted)
	case feed.ChangeActive:
		if it.machine != nil && it.machine.State() == Playing && (!st.HasActive || st.ActiveID != it.id) {
			it.enqueue(Revoked)
		}
	}
}

// enqueue feeds the machine one event at a time. Events raised from inside a
// transition wait until the current one has finished.
func (it *Item) enqueue(ev Event) {
	if !it.mounted || it.unmounted {
		return
	}
	it.pending = append(it.pending, ev)
	if it.processing {
		return
	}
	it.processing = true
	defer func() { it.processing = false }()

	for len(it.pending) > 0 && !it.unmounted {
		next := it.pending[0]
		it.pending = it.pending[1:]
		if _, err := it.machine.Fire(it.ctx, next); err != nil {
			it.logger.Error().Err(err).
				Str(xglog.FieldEvent, "playback.transition_failed").
				Str(xglog.FieldTrigger, string(next)).
				Msg("event rejected by state machine")
		}
	}
}

func (it *Item) activate() {
	it.mgr.Activate(it.ctx)
}

func (it *Item) deactivate() {
	it.mgr.Deactivate()
}

// claim asks the coordinator for the right to play after becoming visible.
func (it *Item) claim() {
	res := it.coord.Claim(it.id, it.el.Paused())
	it.logger.Debug().
		Str(xglog.FieldEvent, "playback.claim").
		Str(xglog.FieldReason, string(res)).
		Msg("claim answered")
	if res.Allowed() {
		it.enqueue(ClaimGranted)
	}
}

func (it *Item) requestActive() {
	if err := it.coord.SetActive(it.id); err != nil {
		it.logger.Warn().Err(err).
			Str(xglog.FieldEvent, "playback.set_active_failed").
			Msg("could not make clip active")
	}
}

func (it *Item) onTransition(from, to State, ev Event) {
	metrics.IncTransition(string(ev), string(to))
	it.logger.Debug().
		Str(xglog.FieldEvent, "playback.transition").
		Str(xglog.FieldOldState, string(from)).
		Str(xglog.FieldNewState, string(to)).
		Str(xglog.FieldTrigger, string(ev)).
		Msg("playback transition")
}
