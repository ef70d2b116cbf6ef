// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the feed.
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	NudgeDn  key.Binding
	NudgeUp  key.Binding
	Toggle   key.Binding
	Mute     key.Binding
	SeekBack key.Binding
	SeekFwd  key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns a set of default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("j", "down", "pgdown"),
			key.WithHelp("j/↓", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("k", "up", "pgup"),
			key.WithHelp("k/↑", "prev"),
		),
		NudgeDn: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "scroll down"),
		),
		NudgeUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "scroll up"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "play/pause"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m", "M"),
			key.WithHelp("m", "mute"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "-5%"),
		),
		SeekFwd: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "+5%"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Toggle, k.Mute, k.SeekBack, k.SeekFwd, k.Quit}
}
