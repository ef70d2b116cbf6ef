// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package streaming bridges the per-item playback state to an adaptive
// streaming engine and owns the engine session's lifetime.
package streaming

import (
	"context"
	"errors"
	"math"

	xglog "github.com/ManuGH/reelfeed/internal/log"
	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrUnsupportedSource is reported when neither the engine nor the element
// can play the clip URL.
var ErrUnsupportedSource = errors.New("streaming: source cannot be played")

// Manager owns at most one live Session for one media element. It is not
// safe for concurrent use; drive it from the event loop.
type Manager struct {
	clipID  string
	url     string
	el      media.Element
	engine  Engine
	logger  zerolog.Logger
	session Session
	mode    Mode
	closed  bool

	onStartFailed func(error)
}

func NewManager(clipID, url string, el media.Element, engine Engine, logger zerolog.Logger) *Manager {
	return &Manager{
		clipID: clipID,
		url:    url,
		el:     el,
		engine: engine,
		logger: logger.With().Str(xglog.FieldClipID, clipID).Logger(),
	}
}

// OnStartFailed registers fn for activations that end without playback:
// play() rejected, manifest failure, or no way to play the source. fn runs
// on the caller's goroutine (the event loop) and may be invoked from inside
// Activate.
func (m *Manager) OnStartFailed(fn func(error)) {
	m.onStartFailed = fn
}

// Activate starts playback. A handle that already advanced past zero is
// resumed in place; otherwise the stream is bound fresh.
func (m *Manager) Activate(ctx context.Context) {
	if m.closed {
		return
	}
	if m.el.CurrentTime() > 0 {
		m.play("resume")
		return
	}
	if m.session != nil {
		// Fresh session still waiting for its manifest.
		return
	}

	caps := Capabilities{
		EngineSupported: m.engine != nil && m.engine.Supported(),
		NativeHLS:       m.el.CanPlayType(media.MIMETypeHLS),
		NativeMP4:       m.el.CanPlayType(media.MIMETypeMP4),
	}
	d := Decide(caps, m.url)
	m.mode = d.Mode
	metrics.SessionCreated(string(d.Mode))

	switch d.Mode {
	case ModeEngine:
		s := m.engine.NewSession()
		m.session = s
		s.OnManifestParsed(func(info ManifestInfo) {
			if m.session != s {
				return
			}
			m.logger.Debug().
				Str(xglog.FieldEvent, "streaming.manifest_parsed").
				Str(xglog.FieldSessionID, s.ID()).
				Str(xglog.FieldVariant, info.Variant).
				Float64(xglog.FieldDuration, info.Duration).
				Msg("manifest parsed, starting playback")
			m.play(string(ModeEngine))
		})
		s.OnError(func(err error) {
			if m.session != s {
				return
			}
			m.logger.Warn().Err(err).
				Str(xglog.FieldEvent, "streaming.session_error").
				Str(xglog.FieldSessionID, s.ID()).
				Msg("streaming session failed")
			m.startFailed(err)
		})
		s.Attach(m.el)
		m.logger.Debug().
			Str(xglog.FieldEvent, "streaming.session_created").
			Str(xglog.FieldSessionID, s.ID()).
			Str(xglog.FieldURL, m.url).
			Msg("streaming session attached")
		s.Load(ctx, m.url)

	case ModeNative:
		m.logger.Debug().
			Str(xglog.FieldEvent, "streaming.native").
			Str(xglog.FieldReason, string(d.Reason)).
			Msg("playing source natively")
		m.el.Load(media.Source{URL: m.url, Duration: math.NaN(), Native: true})
		m.play(string(ModeNative))

	default:
		m.logger.Warn().
			Str(xglog.FieldEvent, "streaming.unsupported").
			Str(xglog.FieldReason, string(d.Reason)).
			Str(xglog.FieldURL, m.url).
			Msg("no way to play source")
		m.startFailed(ErrUnsupportedSource)
	}
}

// Deactivate pauses the element and releases the session.
func (m *Manager) Deactivate() {
	m.el.Pause()
	m.release()
}

// Close is the guaranteed teardown path. Safe to call more than once.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.release()
	return nil
}

// HasSession reports whether an engine session is live.
func (m *Manager) HasSession() bool {
	return m.session != nil
}

// Mode returns the mode of the last fresh activation.
func (m *Manager) Mode() Mode {
	return m.mode
}

func (m *Manager) release() {
	if m.session == nil {
		return
	}
	s := m.session
	m.session = nil
	s.Destroy()
	metrics.SessionDestroyed()
	m.logger.Debug().
		Str(xglog.FieldEvent, "streaming.session_destroyed").
		Str(xglog.FieldSessionID, s.ID()).
		Msg("streaming session released")
}

func (m *Manager) play(mode string) {
	if err := m.el.Play(); err != nil {
		metrics.IncPlaybackStartFailure(mode)
		m.logger.Debug().Err(err).
			Str(xglog.FieldEvent, "streaming.play_rejected").
			Str(xglog.FieldMode, mode).
			Msg("play() rejected, staying paused")
		m.startFailed(err)
	}
}

func (m *Manager) startFailed(err error) {
	if m.onStartFailed != nil && !m.closed {
		m.onStartFailed(err)
	}
}
