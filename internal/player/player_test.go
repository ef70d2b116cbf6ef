// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ManuGH/reelfeed/internal/clip"
	"github.com/ManuGH/reelfeed/internal/eventloop"
	"github.com/ManuGH/reelfeed/internal/feed"
	"github.com/ManuGH/reelfeed/internal/feedclient"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/streaming/fake"
	"github.com/ManuGH/reelfeed/internal/toast"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type staticFetcher struct {
	clips []clip.Clip
	err   error
}

func (f staticFetcher) Fetch(context.Context) ([]clip.Clip, error) { return f.clips, f.err }

func fourClips() []clip.Clip {
	out := make([]clip.Clip, 0, 4)
	for i := 1; i <= 4; i++ {
		out = append(out, clip.Clip{
			Title:   fmt.Sprintf("clip-%d", i),
			PlayURL: fmt.Sprintf("https://cdn.example/clip-%d/master.m3u8", i),
		})
	}
	return out
}

type fixture struct {
	p      *Player
	q      *eventloop.Queue
	engine *fake.Engine
	toasts *toast.Toaster
}

func newFixture(t *testing.T, f feedclient.Fetcher, opts ...func(*Options)) *fixture {
	t.Helper()
	q := eventloop.New()
	engine := fake.NewEngine(30)
	toasts := toast.New()
	logger := xglog.Discard()
	o := Options{
		Source:         feedclient.NewLoader(f, toasts),
		Loop:           q,
		Engine:         engine,
		ViewportHeight: 100,
		Toasts:         toasts,
		Logger:         &logger,
	}
	for _, fn := range opts {
		fn(&o)
	}
	fx := &fixture{p: New(o), q: q, engine: engine, toasts: toasts}
	t.Cleanup(func() { _ = fx.p.Close() })
	return fx
}

func (fx *fixture) start(t *testing.T) {
	t.Helper()
	fx.p.Start(context.Background())
	fx.p.wg.Wait()
	fx.q.Drain()
	require.Equal(t, StatusReady, fx.p.Status())
}

type row struct {
	Playing    bool
	Paused     bool
	Active     bool
	HasSession bool
}

func rows(p *Player) []row {
	var out []row
	for _, v := range p.Views() {
		out = append(out, row{Playing: v.Playing, Paused: v.Paused, Active: v.Active, HasSession: v.HasSession})
	}
	return out
}

func assertSinglePlayer(t *testing.T, p *Player) {
	t.Helper()
	playing := 0
	for _, v := range p.Views() {
		if !v.Paused {
			playing++
			assert.True(t, v.Active, "%s plays without being active", v.Clip.Title)
		}
		if v.HasSession {
			assert.True(t, v.Playing, "%s holds a session while paused", v.Clip.Title)
		}
	}
	assert.LessOrEqual(t, playing, 1)
}

func TestScenarioA_InitialLoad(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fx := newFixture(t, staticFetcher{clips: fourClips()})
	assert.Equal(t, StatusIdle, fx.p.Status())

	fx.p.Start(context.Background())
	assert.Equal(t, StatusLoading, fx.p.Status())
	fx.p.wg.Wait()
	assert.Equal(t, StatusLoading, fx.p.Status(), "nothing mounts until the loop runs")
	fx.q.Drain()
	require.Equal(t, StatusReady, fx.p.Status())

	fx.engine.Last().Parse()
	want := []row{
		{Playing: true, Paused: false, Active: true, HasSession: true},
		{Paused: true},
		{Paused: true},
		{Paused: true},
	}
	if diff := cmp.Diff(want, rows(fx.p)); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, fx.p.Views()[0].Muted)
	assertSinglePlayer(t, fx.p)
	require.NoError(t, fx.p.Close())
}

func TestScenarioB_ScrollToNext(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()})
	fx.start(t)
	first := fx.engine.Last()
	first.Parse()
	fx.p.Advance(2)

	fx.p.Next()

	assert.True(t, first.Destroyed())
	second := fx.engine.Last()
	require.NotSame(t, first, second)
	assert.Equal(t, "https://cdn.example/clip-2/master.m3u8", second.URL())
	second.Parse()

	want := []row{
		{Paused: true},
		{Playing: true, Active: true, HasSession: true},
		{Paused: true},
		{Paused: true},
	}
	if diff := cmp.Diff(want, rows(fx.p)); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, fx.p.Current())
	assertSinglePlayer(t, fx.p)
}

func TestScenarioC_PauseSurvivesSmallScroll(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()})
	fx.start(t)
	fx.engine.Last().Parse()

	require.NoError(t, fx.p.Tap("clip-1"))
	fx.p.ScrollBy(20)
	fx.p.ScrollBy(-10)

	v := fx.p.Views()[0]
	assert.False(t, v.Playing)
	assert.True(t, v.Paused)
	assert.True(t, v.Active)
	assert.False(t, fx.p.Views()[1].Playing)

	require.NoError(t, fx.p.Tap("clip-1"))
	assert.True(t, fx.p.Views()[0].Playing)
	assertSinglePlayer(t, fx.p)
}

func TestScenarioD_ReturnResumesInPlace(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()}, func(o *Options) { o.Gap = 100 })
	fx.start(t)
	fx.engine.Last().Parse()
	fx.p.Advance(5)
	require.Len(t, fx.engine.Sessions(), 1)

	// Drag into the gap: clip-1 drops below half, nothing else reaches it.
	fx.p.ScrollTo(90)
	assert.False(t, fx.p.Views()[0].Playing)
	assert.False(t, fx.p.Views()[1].Playing)
	assert.Equal(t, 0, fx.engine.Live())

	fx.p.ScrollTo(0)
	v := fx.p.Views()[0]
	assert.True(t, v.Playing)
	assert.False(t, v.Paused)
	assert.False(t, v.HasSession)
	assert.Len(t, fx.engine.Sessions(), 1, "resume must not reload the stream")
	assert.InDelta(t, 5.0/30.0*100, v.Progress, 1e-6)
	assertSinglePlayer(t, fx.p)
}

func TestScenarioE_MuteLeavesPlayStateAlone(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()})
	fx.start(t)
	fx.engine.Last().Parse()
	before := rows(fx.p)

	assert.False(t, fx.p.ToggleMute())
	for _, v := range fx.p.Views() {
		assert.False(t, v.Muted)
	}
	for i, it := range fx.p.items {
		assert.False(t, it.Element().Muted(), "element %d", i)
	}
	if diff := cmp.Diff(before, rows(fx.p)); diff != "" {
		t.Errorf("mute changed play state (-before +after):\n%s", diff)
	}

	fx.p.Next()
	fx.engine.Last().Parse()
	assert.False(t, fx.p.items[1].Element().Muted(), "mute is global across scrolls")
}

func TestAutoplayRejected_ViewStaysPaused(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()}, func(o *Options) {
		o.NewElement = func(clip.Clip) media.Element {
			return media.NewSim(media.WithAutoplayRejected(true))
		}
	})
	fx.start(t)
	first := fx.engine.Last()
	first.Parse()

	want := []row{
		{Paused: true, Active: true},
		{Paused: true},
		{Paused: true},
		{Paused: true},
	}
	if diff := cmp.Diff(want, rows(fx.p)); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, first.Destroyed())
	assertSinglePlayer(t, fx.p)

	// Tapping retries the start instead of pausing a clip that never played.
	fx.p.TapCurrent()
	assert.True(t, fx.p.Views()[0].Playing)
	assert.Len(t, fx.engine.Sessions(), 2)
}

func TestFetchFailure_ToastAndEmptyFeed(t *testing.T) {
	fx := newFixture(t, staticFetcher{err: &feedclient.FetchError{Sentinel: feedclient.ErrUnavailable, URL: "http://feed"}})
	fx.start(t)

	assert.Zero(t, fx.p.Len())
	assert.Empty(t, fx.p.Views())
	assert.Equal(t, -1, fx.p.Current())
	toasts := fx.p.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, feedclient.FailureMessage, toasts[0].Message)
	_, ok := fx.p.Coordinator().Active()
	assert.False(t, ok)

	fx.p.Next()
	fx.p.TapCurrent()
	assert.ErrorIs(t, fx.p.Tap("nope"), ErrUnknownClip)
	assert.ErrorIs(t, fx.p.SeekBy(5), ErrUnknownClip)
	assert.Empty(t, fx.engine.Sessions())
}

func TestReachEnd_FiresAtLastSlot(t *testing.T) {
	calls := 0
	fx := newFixture(t, staticFetcher{clips: fourClips()}, func(o *Options) {
		o.Pager = feed.PagerFuncs{More: func() bool { return true }, End: func() { calls++ }}
	})
	fx.start(t)

	fx.p.Next()
	fx.p.Next()
	assert.Zero(t, calls)
	fx.p.Next()
	assert.Equal(t, 1, calls)
	fx.p.Next()
	assert.Equal(t, 3, fx.p.Current(), "scroll is clamped to the last clip")
	assert.Equal(t, 1, calls)
}

func TestSeekAndAdvance(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()})
	fx.start(t)
	fx.engine.Last().Parse()

	require.NoError(t, fx.p.Seek("clip-1", 50))
	assert.InDelta(t, 50.0, fx.p.Views()[0].Progress, 1e-9)
	require.NoError(t, fx.p.SeekBy(10))
	assert.InDelta(t, 60.0, fx.p.Views()[0].Progress, 1e-9)

	fx.p.Advance(3)
	assert.InDelta(t, 70.0, fx.p.Views()[0].Progress, 1e-9)

	assert.ErrorIs(t, fx.p.Seek("missing", 10), ErrUnknownClip)
	err := fx.p.Seek("clip-2", 10)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownClip))
}

func TestClose_ReleasesEverySession(t *testing.T) {
	fx := newFixture(t, staticFetcher{clips: fourClips()})
	fx.start(t)
	s := fx.engine.Last()

	require.NoError(t, fx.p.Close())
	require.NoError(t, fx.p.Close())
	assert.True(t, s.Destroyed())
	assert.Equal(t, 0, fx.engine.Live())
	s.Parse()
	for _, v := range fx.p.Views() {
		assert.True(t, v.Paused)
	}
}

func TestNew_RequiresLoop(t *testing.T) {
	assert.PanicsWithValue(t, "player: Options.Loop is required", func() {
		New(Options{})
	})
}
