// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fake provides a scriptable streaming engine for tests.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuGH/reelfeed/internal/media"
	"github.com/ManuGH/reelfeed/internal/streaming"
)

// Engine hands out Sessions and remembers them.
type Engine struct {
	mu          sync.Mutex
	Unsupported bool
	// Duration is bound to the element when a session's manifest is delivered.
	Duration float64
	sessions []*Session
}

func NewEngine(duration float64) *Engine {
	return &Engine{Duration: duration}
}

func (e *Engine) Supported() bool { return !e.Unsupported }

func (e *Engine) NewSession() streaming.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := &Session{id: fmt.Sprintf("fake-%d", len(e.sessions)+1), duration: e.Duration}
	e.sessions = append(e.sessions, s)
	return s
}

// Sessions returns every session created so far.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Session(nil), e.sessions...)
}

// Last returns the most recent session or nil.
func (e *Engine) Last() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.sessions) == 0 {
		return nil
	}
	return e.sessions[len(e.sessions)-1]
}

// Live counts sessions not yet destroyed.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.sessions {
		if !s.Destroyed() {
			n++
		}
	}
	return n
}

// Session records calls; the manifest is delivered manually via Parse.
type Session struct {
	mu        sync.Mutex
	id        string
	duration  float64
	el        media.Element
	url       string
	onParsed  func(streaming.ManifestInfo)
	onError   func(error)
	destroyed bool
	destroys  int
}

func (s *Session) ID() string { return s.id }

func (s *Session) Attach(el media.Element) {
	s.mu.Lock()
	s.el = el
	s.mu.Unlock()
}

func (s *Session) Load(_ context.Context, url string) {
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
}

func (s *Session) OnManifestParsed(fn func(streaming.ManifestInfo)) { s.onParsed = fn }
func (s *Session) OnError(fn func(error))                          { s.onError = fn }

func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroys++
	if s.destroyed {
		return
	}
	s.destroyed = true
	if s.el != nil {
		s.el.Detach()
	}
}

// Parse simulates the engine finishing manifest parsing. No-op once destroyed.
func (s *Session) Parse() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	el, url, fn := s.el, s.url, s.onParsed
	s.mu.Unlock()

	if el != nil {
		el.Load(media.Source{URL: url, Duration: s.duration})
	}
	if fn != nil {
		fn(streaming.ManifestInfo{URL: url, Variant: "fake", Variants: 1, Duration: s.duration})
	}
}

// Fail simulates a load error. No-op once destroyed.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	destroyed, fn := s.destroyed, s.onError
	s.mu.Unlock()
	if !destroyed && fn != nil {
		fn(err)
	}
}

func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Session) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// DestroyCalls counts Destroy invocations, including redundant ones.
func (s *Session) DestroyCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroys
}

var _ streaming.Engine = (*Engine)(nil)
