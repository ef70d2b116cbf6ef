// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"context"

	"github.com/ManuGH/reelfeed/internal/fsm"
)

// State of one item.
type State string

const (
	Paused  State = "paused"
	Playing State = "playing"
)

// Event is an input to the item machine.
type Event string

const (
	Entering     Event = "entering"
	Leaving      Event = "leaving"
	UserTap      Event = "user_tap"
	ClaimGranted Event = "claim_granted"
	// Revoked: another clip became active while this one played.
	Revoked Event = "revoked"
	// StartFailed: the media handle never started (play rejected, manifest
	// error, unplayable source).
	StartFailed Event = "start_failed"
)

type transition = fsm.Transition[State, Event]

func newMachine(it *Item, initial State) (*fsm.Machine[State, Event], error) {
	do := func(fn func()) func(context.Context, State, State, Event) {
		return func(context.Context, State, State, Event) { fn() }
	}

	m, err := fsm.New(initial, []transition{
		{From: Paused, Event: Entering, To: Paused, Action: do(it.claim)},
		{From: Playing, Event: Entering, To: Playing},
		{From: Paused, Event: Leaving, To: Paused},
		{From: Playing, Event: Leaving, To: Paused, Action: do(it.deactivate)},
		{From: Paused, Event: UserTap, To: Playing, Action: do(func() {
			it.requestActive()
			it.activate()
		})},
		{From: Playing, Event: UserTap, To: Paused, Action: do(it.deactivate)},
		{From: Paused, Event: ClaimGranted, To: Playing, Action: do(it.activate)},
		{From: Playing, Event: ClaimGranted, To: Playing},
		{From: Playing, Event: Revoked, To: Paused, Action: do(it.deactivate)},
		{From: Paused, Event: Revoked, To: Paused},
		{From: Playing, Event: StartFailed, To: Paused, Action: do(it.deactivate)},
		{From: Paused, Event: StartFailed, To: Paused},
	})
	if err != nil {
		return nil, err
	}
	m.OnTransition(it.onTransition)
	return m, nil
}
