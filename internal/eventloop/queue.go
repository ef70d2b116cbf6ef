// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package eventloop serialises callbacks onto one goroutine. Asynchronous
// producers (network fetches, engine callbacks) Post work; the owner of the
// UI state drains it, so state is only ever touched from one place.
package eventloop

import (
	"context"
	"sync"
)

// Poster accepts work to be run on the event loop.
type Poster interface {
	Post(fn func()) bool
}

// Queue is a FIFO of pending callbacks.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	onWake  func()
	wake    chan struct{}
}

func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// OnWake registers fn to be invoked (from the posting goroutine) whenever new
// work arrives. Set it before the first Post.
func (q *Queue) OnWake(fn func()) {
	q.mu.Lock()
	q.onWake = fn
	q.mu.Unlock()
}

// Post enqueues fn. It returns false once the queue is closed.
func (q *Queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, fn)
	hook := q.onWake
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	if hook != nil {
		hook()
	}
	return true
}

// Len returns the number of callbacks waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs pending callbacks on the caller goroutine until none are left,
// including callbacks posted while draining. It returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
		ran++
	}
}

// Run drains on every wake-up until ctx is done or the queue is closed.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
			q.Drain()
			q.mu.Lock()
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return nil
			}
		}
	}
}

// Close rejects further posts and drops anything still pending.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.pending = nil
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

var _ Poster = (*Queue)(nil)
