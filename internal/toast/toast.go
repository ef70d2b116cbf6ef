// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package toast keeps short-lived user notifications.
package toast

import (
	"sync"
	"time"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 4 * time.Second

// Level of a toast.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Toast is one notification.
type Toast struct {
	Level   Level
	Message string
	Expires time.Time
}

// Publisher is what producers of notifications depend on.
type Publisher interface {
	Error(msg string)
	Info(msg string)
}

// Toaster stores toasts until they expire.
type Toaster struct {
	mu       sync.Mutex
	toasts   []Toast
	duration time.Duration
	now      func() time.Time
}

// Option customises a Toaster.
type Option func(*Toaster)

// WithDuration overrides DefaultDuration.
func WithDuration(d time.Duration) Option {
	return func(t *Toaster) {
		if d > 0 {
			t.duration = d
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Toaster) { t.now = now }
}

func New(opts ...Option) *Toaster {
	t := &Toaster{duration: DefaultDuration, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Toaster) Error(msg string) { t.push(LevelError, msg) }

func (t *Toaster) Info(msg string) { t.push(LevelInfo, msg) }

func (t *Toaster) push(level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, Toast{Level: level, Message: msg, Expires: t.now().Add(t.duration)})
}

// Active returns unexpired toasts, newest first, and forgets expired ones.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	kept := t.toasts[:0]
	for _, ts := range t.toasts {
		if now.Before(ts.Expires) {
			kept = append(kept, ts)
		}
	}
	t.toasts = kept

	out := make([]Toast, len(kept))
	for i, ts := range kept {
		out[len(kept)-1-i] = ts
	}
	return out
}

var _ Publisher = (*Toaster)(nil)
