// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/reelfeed/internal/eventloop"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/streaming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const variantPlaylist = `#EXTM3U
#EXT-X-PLAYLIST-TYPE:VOD
#EXT-X-TARGETDURATION:6
#EXTINF:6.0,
seg0.ts
#EXTINF:4.0,
seg1.ts
#EXT-X-ENDLIST
`

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/clip/master.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(masterPlaylist))
	})
	mux.HandleFunc("/clip/360p/index.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(variantPlaylist))
	})
	mux.HandleFunc("/clip/720p/index.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(variantPlaylist))
	})
	mux.HandleFunc("/clip/1080p/index.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(variantPlaylist))
	})
	mux.HandleFunc("/broken.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a playlist"))
	})
	return httptest.NewServer(mux)
}

func newTestEngine(q *eventloop.Queue, maxBW int) *Engine {
	l := xglog.Discard()
	return NewEngine(Options{Loop: q, MaxBandwidth: maxBW, Client: &http.Client{Timeout: 2 * time.Second}, Logger: &l})
}

func drainUntil(t *testing.T, q *eventloop.Queue, e *Engine, cond func() bool) {
	t.Helper()
	e.Wait()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		q.Drain()
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSession_LoadSelectsVariantAndBindsElement(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()
	q := eventloop.New()
	e := newTestEngine(q, 3000000)
	el := media.NewSim()

	s := e.NewSession()
	var got *streaming.ManifestInfo
	s.OnManifestParsed(func(info streaming.ManifestInfo) { got = &info })
	s.OnError(func(err error) { t.Errorf("unexpected error: %v", err) })
	s.Attach(el)
	s.Load(context.Background(), srv.URL+"/clip/master.m3u8")

	drainUntil(t, q, e, func() bool { return got != nil })
	assert.Equal(t, srv.URL+"/clip/720p/index.m3u8", got.URL)
	assert.Equal(t, "1280x720", got.Variant)
	assert.Equal(t, 3, got.Variants)
	assert.Equal(t, 10.0, got.Duration)
	assert.Equal(t, 10.0, el.Duration())
	assert.True(t, el.Attached())

	s.Destroy()
	s.Destroy()
	assert.False(t, el.Attached())
	e.opts.Client.CloseIdleConnections()
}

func TestSession_ParseErrorReported(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()
	q := eventloop.New()
	e := newTestEngine(q, 0)

	s := e.NewSession()
	var gotErr error
	s.OnError(func(err error) { gotErr = err })
	s.Attach(media.NewSim())
	s.Load(context.Background(), srv.URL+"/broken.m3u8")

	drainUntil(t, q, e, func() bool { return gotErr != nil })
	assert.ErrorIs(t, gotErr, ErrManifestParse)
}

func TestSession_HTTPErrorReported(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()
	q := eventloop.New()
	e := newTestEngine(q, 0)

	s := e.NewSession()
	var gotErr error
	s.OnError(func(err error) { gotErr = err })
	s.Load(context.Background(), srv.URL+"/missing.m3u8")

	drainUntil(t, q, e, func() bool { return gotErr != nil })
	assert.ErrorIs(t, gotErr, ErrManifestFetch)
}

func TestSession_DestroyBeforeDeliveryDropsCallbacks(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()
	q := eventloop.New()
	e := newTestEngine(q, 0)
	el := media.NewSim()

	s := e.NewSession()
	called := false
	s.OnManifestParsed(func(streaming.ManifestInfo) { called = true })
	s.Attach(el)
	s.Load(context.Background(), srv.URL+"/clip/master.m3u8")
	e.Wait()
	s.Destroy()
	q.Drain()

	assert.False(t, called)
	_, loaded := el.Source()
	assert.False(t, loaded)
}

func TestSession_LoadAfterDestroyIsNoop(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()
	q := eventloop.New()
	e := newTestEngine(q, 0)

	s := e.NewSession()
	s.Destroy()
	s.Load(context.Background(), srv.URL+"/clip/master.m3u8")
	e.Wait()
	assert.Zero(t, q.Drain())
	assert.Zero(t, hits.Load())
}

func TestEngine_Supported(t *testing.T) {
	q := eventloop.New()
	require.True(t, NewEngine(Options{Loop: q}).Supported())
	require.False(t, NewEngine(Options{Loop: q, Disabled: true}).Supported())
}

func TestNewEngine_RequiresLoop(t *testing.T) {
	assert.PanicsWithValue(t, "hls: Options.Loop is required", func() {
		NewEngine(Options{})
	})
}
