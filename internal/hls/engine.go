// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package hls is the adaptive-bitrate engine used by the player: it fetches
// and parses manifests, picks a rendition, and binds it to a media element.
package hls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ManuGH/reelfeed/internal/eventloop"
	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/streaming"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxManifestBytes = 1 << 20

var (
	// ErrManifestFetch covers transport failures and non-2xx answers.
	ErrManifestFetch = errors.New("hls: manifest fetch failed")
	// ErrManifestParse covers malformed playlists.
	ErrManifestParse = errors.New("hls: manifest parse failed")
)

// Options configures the Engine.
type Options struct {
	// Loop receives manifest callbacks; it must be the goroutine that owns
	// the streaming managers. NewEngine panics if it is nil.
	Loop eventloop.Poster
	// Client defaults to an otelhttp-instrumented client with Timeout.
	Client *http.Client
	// Timeout bounds each manifest request. Default: 10 seconds.
	Timeout time.Duration
	// MaxBandwidth caps variant selection in bits/s; 0 means unlimited.
	MaxBandwidth int
	// Disabled makes Supported report false, forcing native fallback.
	Disabled bool
	Logger   *zerolog.Logger
}

func (o *Options) setDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Client == nil {
		o.Client = &http.Client{
			Timeout:   o.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if o.Logger == nil {
		l := xglog.WithComponent("hls")
		o.Logger = &l
	}
}

// Engine creates HLS sessions that share one HTTP client.
type Engine struct {
	opts Options
	wg   sync.WaitGroup
}

func NewEngine(opts Options) *Engine {
	if opts.Loop == nil {
		panic("hls: Options.Loop is required")
	}
	opts.setDefaults()
	return &Engine{opts: opts}
}

func (e *Engine) Supported() bool {
	return !e.opts.Disabled
}

func (e *Engine) NewSession() streaming.Session {
	return &Session{
		id:     uuid.NewString(),
		engine: e,
	}
}

// Wait blocks until every in-flight manifest fetch has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// resolve loads the manifest at rawURL and, for master playlists, the
// selected media playlist.
func (e *Engine) resolve(ctx context.Context, rawURL string) (streaming.ManifestInfo, error) {
	top, err := e.fetch(ctx, rawURL)
	if err != nil {
		return streaming.ManifestInfo{}, err
	}
	if !top.Master {
		return streaming.ManifestInfo{URL: rawURL, Variant: "single", Variants: 1, Duration: top.Duration}, nil
	}

	v, _ := top.Select(e.opts.MaxBandwidth)
	mediaURL, err := resolveReference(rawURL, v.URI)
	if err != nil {
		return streaming.ManifestInfo{}, fmt.Errorf("%w: variant uri %q: %v", ErrManifestParse, v.URI, err)
	}
	media, err := e.fetch(ctx, mediaURL)
	if err != nil {
		return streaming.ManifestInfo{}, err
	}
	if media.Master {
		return streaming.ManifestInfo{}, fmt.Errorf("%w: nested master playlist at %s", ErrManifestParse, mediaURL)
	}
	return streaming.ManifestInfo{
		URL:       mediaURL,
		Variant:   v.Label(),
		Bandwidth: v.Bandwidth,
		Variants:  len(top.Variants),
		Duration:  media.Duration,
	}, nil
}

func (e *Engine) fetch(ctx context.Context, rawURL string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestFetch, err)
	}
	res, err := e.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestFetch, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrManifestFetch, rawURL, res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrManifestFetch, err)
	}
	m, err := ParseManifest(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestParse, err)
	}
	return m, nil
}

func resolveReference(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

var _ streaming.Engine = (*Engine)(nil)
