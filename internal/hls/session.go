// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hls

import (
	"context"
	"sync"
	"time"

	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/metrics"
	"github.com/ManuGH/reelfeed/internal/streaming"
)

// Session is a single attach/load/destroy cycle. Callbacks are delivered on
// the engine's event loop and are dropped once Destroy has run.
type Session struct {
	id     string
	engine *Engine

	mu        sync.Mutex
	el        media.Element
	cancel    context.CancelFunc
	destroyed bool
	onParsed  func(streaming.ManifestInfo)
	onError   func(error)
}

func (s *Session) ID() string { return s.id }

func (s *Session) Attach(el media.Element) {
	s.mu.Lock()
	s.el = el
	s.mu.Unlock()
}

func (s *Session) OnManifestParsed(fn func(streaming.ManifestInfo)) {
	s.mu.Lock()
	s.onParsed = fn
	s.mu.Unlock()
}

func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Load fetches the manifest in the background. Only the first Load of a
// session does anything.
func (s *Session) Load(ctx context.Context, rawURL string) {
	s.mu.Lock()
	if s.destroyed || s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	logger := s.engine.opts.Logger.With().Str(xglog.FieldSessionID, s.id).Logger()
	s.engine.wg.Add(1)
	go func() {
		defer s.engine.wg.Done()
		start := time.Now()
		info, err := s.engine.resolve(ctx, rawURL)
		metrics.ObserveManifestLatency(err == nil, time.Since(start))
		if err != nil && ctx.Err() != nil {
			// Cancelled by Destroy; nobody is listening any more.
			return
		}

		s.engine.opts.Loop.Post(func() {
			s.mu.Lock()
			if s.destroyed {
				s.mu.Unlock()
				return
			}
			el, onParsed, onError := s.el, s.onParsed, s.onError
			s.mu.Unlock()

			if err != nil {
				logger.Warn().Err(err).
					Str(xglog.FieldEvent, "hls.manifest_failed").
					Str(xglog.FieldURL, rawURL).
					Msg("manifest load failed")
				if onError != nil {
					onError(err)
				}
				return
			}
			logger.Debug().
				Str(xglog.FieldEvent, "hls.manifest_parsed").
				Str(xglog.FieldVariant, info.Variant).
				Int("variants", info.Variants).
				Float64(xglog.FieldDuration, info.Duration).
				Msg("manifest parsed")
			if el != nil {
				el.Load(media.Source{URL: info.URL, Duration: info.Duration})
			}
			if onParsed != nil {
				onParsed(info)
			}
		})
	}()
}

// Destroy cancels any in-flight fetch and detaches the element. Idempotent.
func (s *Session) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	cancel, el := s.cancel, s.el
	s.el = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if el != nil {
		el.Detach()
	}
}
