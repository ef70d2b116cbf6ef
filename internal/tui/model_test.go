// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ManuGH/reelfeed/internal/clip"
	"github.com/ManuGH/reelfeed/internal/eventloop"
	"github.com/ManuGH/reelfeed/internal/feedclient"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/player"
	"github.com/ManuGH/reelfeed/internal/streaming/fake"
	"github.com/ManuGH/reelfeed/internal/toast"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	clips []clip.Clip
	err   error
}

func (f staticFetcher) Fetch(context.Context) ([]clip.Clip, error) { return f.clips, f.err }

func threeClips() []clip.Clip {
	out := make([]clip.Clip, 0, 3)
	for i := 1; i <= 3; i++ {
		out = append(out, clip.Clip{
			Title:   fmt.Sprintf("clip-%d", i),
			PlayURL: fmt.Sprintf("https://cdn.example/clip-%d/master.m3u8", i),
			Cover:   fmt.Sprintf("https://cdn.example/c%d.jpg", i),
			Creator: clip.Creator{Name: "Ana", Handle: "@ana"},
		})
	}
	return out
}

type harness struct {
	m      *Model
	p      *player.Player
	q      *eventloop.Queue
	engine *fake.Engine
}

func newHarness(t *testing.T, f feedclient.Fetcher, opts ...func(*player.Options)) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	q := eventloop.New()
	engine := fake.NewEngine(20)
	toasts := toast.New()
	logger := xglog.Discard()
	o := player.Options{
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
	p := player.New(o)
	h := &harness{
		m:      New(ctx, Options{Player: p, Queue: q, Tick: time.Second}),
		p:      p,
		q:      q,
		engine: engine,
	}
	t.Cleanup(func() {
		cancel()
		_ = p.Close()
	})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NotNil(t, h.m.Init())
	require.Eventually(t, func() bool {
		h.q.Drain()
		return h.p.Status() == player.StatusReady
	}, 2*time.Second, 5*time.Millisecond)
}

func (h *harness) press(keys string) {
	var msg tea.KeyMsg
	switch keys {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	h.m.Update(msg)
}

func TestView_LoadingThenCard(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	assert.Contains(t, h.m.View(), "Loading feed...")

	h.start(t)
	h.engine.Last().Parse()

	view := h.m.View()
	assert.Contains(t, view, "clip-1")
	assert.Contains(t, view, "@ana Ana")
	assert.Contains(t, view, "▶ playing")
	assert.Contains(t, view, "muted")
	assert.Contains(t, view, "1/3")
	assert.Contains(t, view, "♡ Like")
}

func TestKeys_NavigateToggleMute(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	h.start(t)
	h.engine.Last().Parse()

	h.press("j")
	assert.Equal(t, 1, h.p.Current())
	h.engine.Last().Parse()
	views := h.p.Views()
	assert.False(t, views[0].Playing)
	assert.True(t, views[1].Playing)
	assert.Contains(t, h.m.View(), "clip-2")

	h.press(" ")
	assert.False(t, h.p.Views()[1].Playing)
	assert.Contains(t, h.m.View(), "paused")

	h.press("m")
	assert.False(t, h.p.Coordinator().Muted())
	assert.Contains(t, h.m.View(), "sound on")

	h.press("k")
	assert.Equal(t, 0, h.p.Current())

	h.press("J")
	assert.InDelta(t, 25.0, h.p.Offset(), 1e-9)
	h.press("K")
	assert.InDelta(t, 0.0, h.p.Offset(), 1e-9)
}

func TestTick_AdvancesAndSeekKeys(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	h.start(t)
	h.engine.Last().Parse()

	_, cmd := h.m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.InDelta(t, 5.0, h.p.Views()[0].Progress, 1e-9)

	h.press("l")
	assert.InDelta(t, 10.0, h.p.Views()[0].Progress, 1e-9)
	h.press("h")
	h.press("h")
	h.press("h")
	assert.InDelta(t, 0.0, h.p.Views()[0].Progress, 1e-9)
}

func TestDrainMsg_RunsPostedWork(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	h.start(t)

	<-h.m.wake
	ran := false
	require.True(t, h.q.Post(func() { ran = true }))
	assert.Len(t, h.m.wake, 1)

	_, cmd := h.m.Update(drainMsg{})
	assert.True(t, ran)
	require.NotNil(t, cmd)

	require.True(t, h.q.Post(func() {}))
	assert.Equal(t, drainMsg{}, cmd())
}

func TestFetchFailure_ShowsToastAndEmptyFeed(t *testing.T) {
	h := newHarness(t, staticFetcher{err: errors.New("boom")})
	h.start(t)

	view := h.m.View()
	assert.Contains(t, view, feedclient.FailureMessage)
	assert.Contains(t, view, "No clips to show.")

	// Navigation is inert on an empty feed.
	h.press("j")
	h.press(" ")
	assert.Equal(t, -1, h.p.Current())
}

func TestQuit(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, h.m.View())

	_, cmd = h.m.Update(tickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestWindowSize(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 80, h.m.width)
	assert.Equal(t, 24, h.m.height)
}

func TestCard_AutoplayRejectedShowsPaused(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()}, func(o *player.Options) {
		o.NewElement = func(clip.Clip) media.Element {
			return media.NewSim(media.WithAutoplayRejected(true))
		}
	})
	h.start(t)
	h.engine.Last().Parse()

	v := h.p.Views()[0]
	assert.True(t, v.Paused)
	assert.False(t, v.Playing)

	view := h.m.View()
	assert.Contains(t, view, "❚❚ paused")
	assert.NotContains(t, view, "▶ playing")
	assert.NotContains(t, view, "●")
	assert.Contains(t, view, "cover: https://cdn.example/c1.jpg")
}

func TestCard_PosterOnlyWhilePaused(t *testing.T) {
	h := newHarness(t, staticFetcher{clips: threeClips()})
	h.start(t)

	view := h.m.View()
	assert.Contains(t, view, "◌ starting")
	assert.Contains(t, view, "cover: https://cdn.example/c1.jpg")

	h.engine.Last().Parse()
	view = h.m.View()
	assert.Contains(t, view, "▶ playing")
	assert.NotContains(t, view, "cover:")

	h.press("j")
	assert.Contains(t, h.m.View(), "cover: https://cdn.example/c2.jpg")
	h.engine.Last().Parse()
	assert.NotContains(t, h.m.View(), "cover:")

	h.press(" ")
	view = h.m.View()
	assert.Contains(t, view, "❚❚ paused")
	assert.Contains(t, view, "cover: https://cdn.example/c2.jpg")
}
