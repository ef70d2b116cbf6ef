// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsm is a small transition-table state machine. Every accepted input
// must be listed explicitly, including self-loops; anything else is rejected.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when no edge exists for (state, event).
var ErrInvalidTransition = errors.New("fsm: invalid transition")

// Transition describes a single edge in the FSM.
// Guard may reject the transition; Action performs side-effects after the
// new state is committed, so it observes To via State().
type Transition[S ~string, E ~string] struct {
	From   S
	Event  E
	To     S
	Guard  func(ctx context.Context, from S, event E) error
	Action func(ctx context.Context, from S, to S, event E)
}

// Hook is notified after every committed transition.
type Hook[S ~string, E ~string] func(from S, to S, event E)

type edge[S ~string, E ~string] struct {
	from  S
	event E
}

// Machine runs a transition table. It is safe for concurrent use, but
// transitions are meant to be fed from a single event loop.
type Machine[S ~string, E ~string] struct {
	mu    sync.Mutex
	state S
	index map[edge[S, E]]Transition[S, E]
	hooks []Hook[S, E]
}

// New builds a machine; duplicate (From, Event) edges are a programming error.
func New[S ~string, E ~string](initial S, transitions []Transition[S, E]) (*Machine[S, E], error) {
	idx := make(map[edge[S, E]]Transition[S, E], len(transitions))
	for _, t := range transitions {
		k := edge[S, E]{from: t.From, event: t.Event}
		if _, exists := idx[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Event)
		}
		idx[k] = t
	}
	return &Machine[S, E]{state: initial, index: idx}, nil
}

// OnTransition registers a hook called after each commit.
func (m *Machine[S, E]) OnTransition(h Hook[S, E]) {
	m.mu.Lock()
	m.hooks = append(m.hooks, h)
	m.mu.Unlock()
}

func (m *Machine[S, E]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Can reports whether event has an edge from the current state (guards not evaluated).
func (m *Machine[S, E]) Can(event E) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[edge[S, E]{from: m.state, event: event}]
	return ok
}

// Fire applies an event. A guard error leaves the state untouched and is
// returned as-is so callers can match it with errors.Is.
func (m *Machine[S, E]) Fire(ctx context.Context, event E) (S, error) {
	m.mu.Lock()
	from := m.state
	t, ok := m.index[edge[S, E]{from: from, event: event}]
	m.mu.Unlock()
	if !ok {
		return from, fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, from, event)
	}

	if t.Guard != nil {
		if err := t.Guard(ctx, from, event); err != nil {
			return from, err
		}
	}

	m.mu.Lock()
	if m.state != from {
		cur := m.state
		m.mu.Unlock()
		return cur, fmt.Errorf("concurrent transition detected: from=%s cur=%s event=%s", from, cur, event)
	}
	m.state = t.To
	hooks := append([]Hook[S, E](nil), m.hooks...)
	m.mu.Unlock()

	if t.Action != nil {
		t.Action(ctx, from, t.To, event)
	}
	for _, h := range hooks {
		h(from, t.To, event)
	}
	return t.To, nil
}
