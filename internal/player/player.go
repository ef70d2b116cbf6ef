// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package player assembles the feed: it fetches clips, lays them out one per
// screen, mounts a playback item per clip, and routes user input.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ManuGH/reelfeed/internal/clip"
	"github.com/ManuGH/reelfeed/internal/eventloop"
	"github.com/ManuGH/reelfeed/internal/feed"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/playback"
	"github.com/ManuGH/reelfeed/internal/streaming"
	"github.com/ManuGH/reelfeed/internal/toast"
	"github.com/ManuGH/reelfeed/internal/visibility"
	"github.com/rs/zerolog"
)

// ErrUnknownClip is returned by inputs addressed to a clip that is not in the feed.
var ErrUnknownClip = errors.New("player: unknown clip")

// Status of the feed as a whole.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
)

// Source provides the clip list. feedclient.Loader satisfies it.
type Source interface {
	Load(ctx context.Context) ([]clip.Clip, error)
}

// Options wires a Player.
type Options struct {
	Source Source
	// Loop serializes every state change; New panics if it is nil.
	Loop eventloop.Poster
	// Engine may be nil; clips then play natively where possible.
	Engine streaming.Engine
	// NewElement creates the media handle for a clip. Default: media.NewSim().
	NewElement     func(clip.Clip) media.Element
	ViewportHeight float64
	Gap            float64
	Pager          feed.Pager
	Toasts         *toast.Toaster
	Logger         *zerolog.Logger
}

func (o *Options) setDefaults() {
	if o.NewElement == nil {
		o.NewElement = func(clip.Clip) media.Element { return media.NewSim() }
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 100
	}
	if o.Gap < 0 {
		o.Gap = 0
	}
	if o.Pager == nil {
		o.Pager = feed.NopPager{}
	}
	if o.Toasts == nil {
		o.Toasts = toast.New()
	}
	if o.Logger == nil {
		l := xglog.WithComponent("player")
		o.Logger = &l
	}
}

type slot struct {
	top, height float64
}

func (s slot) Bounds() visibility.Rect { return visibility.Rect{Top: s.top, Height: s.height} }

// View is the per-clip rendering snapshot.
type View struct {
	Clip       clip.Clip
	Index      int
	Playing    bool
	Paused     bool // media element state
	Progress   float64
	Muted      bool
	Active     bool
	Visible    bool
	HasSession bool
	Mode       streaming.Mode
}

// Player is driven from the event loop. Only Start spawns a goroutine, and
// its result is posted back to the loop.
type Player struct {
	opts    Options
	logger  zerolog.Logger
	coord   *feed.Coordinator
	tracker *visibility.Tracker

	items  []*playback.Item
	byID   map[string]*playback.Item
	status Status
	top    float64
	closed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) *Player {
	if opts.Loop == nil {
		panic("player: Options.Loop is required")
	}
	opts.setDefaults()
	return &Player{
		opts:    opts,
		logger:  *opts.Logger,
		coord:   feed.NewCoordinator(feed.WithPager(opts.Pager)),
		tracker: visibility.NewTracker(visibility.Rect{Top: 0, Height: opts.ViewportHeight}),
		byID:    map[string]*playback.Item{},
		status:  StatusIdle,
	}
}

// Start fetches the feed in the background. The feed is mounted on the loop
// once the fetch completes, whatever its outcome.
func (p *Player) Start(ctx context.Context) {
	if p.status != StatusIdle || p.closed {
		return
	}
	p.status = StatusLoading
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		clips, err := p.opts.Source.Load(ctx)
		if err != nil {
			p.logger.Debug().Err(err).Str(xglog.FieldEvent, "player.load_failed").Msg("feed unavailable, showing empty feed")
		}
		p.opts.Loop.Post(func() { p.mount(ctx, clips) })
	}()
}

func (p *Player) mount(ctx context.Context, clips []clip.Clip) {
	if p.closed {
		return
	}
	p.coord.Load(clips)
	stride := p.stride()
	for i, c := range clips {
		it := playback.NewItem(playback.Options{
			Clip:        c,
			Element:     p.opts.NewElement(c),
			Coordinator: p.coord,
			Observer:    p.tracker,
			Target:      slot{top: float64(i) * stride, height: p.opts.ViewportHeight},
			Engine:      p.opts.Engine,
			Logger:      &p.logger,
		})
		p.items = append(p.items, it)
		p.byID[it.ID()] = it
	}
	for _, it := range p.items {
		if err := it.Mount(ctx); err != nil {
			p.logger.Error().Err(err).Str(xglog.FieldClipID, it.ID()).Msg("mount failed")
		}
	}
	p.status = StatusReady
	p.logger.Info().
		Str(xglog.FieldEvent, "player.ready").
		Int("clips", len(clips)).
		Msg("feed ready")
	p.checkEnd()
}

func (p *Player) stride() float64 {
	return p.opts.ViewportHeight + p.opts.Gap
}

func (p *Player) Status() Status { return p.status }

func (p *Player) Coordinator() *feed.Coordinator { return p.coord }

func (p *Player) Toasts() []toast.Toast { return p.opts.Toasts.Active() }

func (p *Player) Len() int { return len(p.items) }

// Offset is the current scroll position.
func (p *Player) Offset() float64 { return p.top }

// Current is the index of the slot nearest to the scroll position.
func (p *Player) Current() int {
	if len(p.items) == 0 {
		return -1
	}
	i := int(math.Round(p.top / p.stride()))
	return min(max(i, 0), len(p.items)-1)
}

// ScrollTo moves the viewport, clamped to the feed.
func (p *Player) ScrollTo(top float64) {
	if p.status != StatusReady || p.closed {
		return
	}
	maxTop := 0.0
	if n := len(p.items); n > 0 {
		maxTop = float64(n-1) * p.stride()
	}
	top = min(max(top, 0), maxTop)
	if top == p.top {
		return
	}
	p.top = top
	p.tracker.ScrollTo(top)
	p.checkEnd()
}

func (p *Player) ScrollBy(delta float64) {
	p.ScrollTo(p.top + delta)
}

// Next snaps to the following clip.
func (p *Player) Next() {
	p.ScrollTo(float64(p.Current()+1) * p.stride())
}

// Prev snaps to the preceding clip.
func (p *Player) Prev() {
	p.ScrollTo(float64(p.Current()-1) * p.stride())
}

func (p *Player) checkEnd() {
	n := len(p.items)
	if n == 0 {
		return
	}
	if last := p.items[n-1]; last.Visible() {
		p.coord.ReachEnd()
	}
}

// Tap toggles play/pause of id.
func (p *Player) Tap(id string) error {
	it, ok := p.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClip, id)
	}
	it.Tap()
	return nil
}

// TapCurrent toggles the clip under the viewport.
func (p *Player) TapCurrent() {
	if i := p.Current(); i >= 0 {
		p.items[i].Tap()
	}
}

func (p *Player) ToggleMute() bool {
	return p.coord.ToggleMute()
}

// Seek scrubs id to value percent.
func (p *Player) Seek(id string, value float64) error {
	it, ok := p.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClip, id)
	}
	return it.Seek(value)
}

// SeekBy scrubs the current clip by delta percent.
func (p *Player) SeekBy(delta float64) error {
	i := p.Current()
	if i < 0 {
		return ErrUnknownClip
	}
	it := p.items[i]
	return it.Seek(it.State().Progress + delta)
}

type advancer interface {
	Advance(dt float64)
}

// Advance moves simulated playback time by dt seconds.
func (p *Player) Advance(dt float64) {
	for _, it := range p.items {
		if a, ok := it.Element().(advancer); ok {
			a.Advance(dt)
		}
	}
}

// Views returns one snapshot per clip in feed order.
func (p *Player) Views() []View {
	snap := p.coord.Snapshot()
	out := make([]View, 0, len(p.items))
	for i, it := range p.items {
		st := it.State()
		out = append(out, View{
			Clip:       it.Clip(),
			Index:      i,
			Playing:    st.Playing,
			Paused:     it.Element().Paused(),
			Progress:   st.Progress,
			Muted:      snap.Muted,
			Active:     snap.HasActive && snap.ActiveID == it.ID(),
			Visible:    it.Visible(),
			HasSession: st.HasSession,
			Mode:       it.Mode(),
		})
	}
	return out
}

// Close unmounts every item and waits for the fetch goroutine. Idempotent.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	var errs []error
	for _, it := range p.items {
		if err := it.Unmount(); err != nil {
			errs = append(errs, err)
		}
	}
	p.tracker.Close()
	p.wg.Wait()
	return errors.Join(errs...)
}
