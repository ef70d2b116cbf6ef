// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package tui renders the feed in a terminal, one clip card per screen.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/reelfeed/internal/eventloop"
	"github.com/ManuGH/reelfeed/internal/player"
	"github.com/ManuGH/reelfeed/internal/toast"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultTick  = 250 * time.Millisecond
	defaultNudge = 25.0
	seekStep     = 5.0
)

// drainMsg asks the model to run callbacks posted to the event loop.
type drainMsg struct{}

// tickMsg advances simulated playback time.
type tickMsg time.Time

// Options wires a Model.
type Options struct {
	Player *player.Player
	Queue  *eventloop.Queue
	// Tick is the playback clock resolution. Default: 250ms.
	Tick time.Duration
	// Nudge is the free-scroll distance of J/K in viewport units.
	Nudge float64
	Keys  *KeyMap
}

// Model is the bubbletea model of the feed. Update is the event loop: posted
// callbacks are drained there and nowhere else.
type Model struct {
	ctx    context.Context
	player *player.Player
	queue  *eventloop.Queue
	wake   chan struct{}

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model

	tick     time.Duration
	nudge    float64
	width    int
	height   int
	quitting bool
}

func New(ctx context.Context, opts Options) *Model {
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.Nudge <= 0 {
		opts.Nudge = defaultNudge
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = progressBarWidth

	m := &Model{
		ctx:     ctx,
		player:  opts.Player,
		queue:   opts.Queue,
		wake:    make(chan struct{}, 1),
		keys:    keys,
		help:    help.New(),
		spinner: s,
		bar:     bar,
		tick:    opts.Tick,
		nudge:   opts.Nudge,
	}
	m.queue.OnWake(func() {
		select {
		case m.wake <- struct{}{}:
		default:
		}
	})
	return m
}

// Init starts the feed fetch and the playback clock.
func (m *Model) Init() tea.Cmd {
	m.player.Start(m.ctx)
	return tea.Batch(m.spinner.Tick, m.tickCmd(), m.waitForWake())
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForWake() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.wake:
			return drainMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case drainMsg:
		m.queue.Drain()
		return m, m.waitForWake()

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.queue.Drain()
		m.player.Advance(m.tick.Seconds())
		return m, m.tickCmd()

	case spinner.TickMsg:
		if m.player.Status() == player.StatusReady {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.player.Status() != player.StatusReady {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.player.Next()
	case key.Matches(msg, m.keys.Prev):
		m.player.Prev()
	case key.Matches(msg, m.keys.NudgeDn):
		m.player.ScrollBy(m.nudge)
	case key.Matches(msg, m.keys.NudgeUp):
		m.player.ScrollBy(-m.nudge)
	case key.Matches(msg, m.keys.Toggle):
		m.player.TapCurrent()
	case key.Matches(msg, m.keys.Mute):
		m.player.ToggleMute()
	case key.Matches(msg, m.keys.SeekBack):
		_ = m.player.SeekBy(-seekStep)
	case key.Matches(msg, m.keys.SeekFwd):
		_ = m.player.SeekBy(seekStep)
	}
	m.queue.Drain()
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if t := m.renderToasts(); t != "" {
		b.WriteString(t + "\n\n")
	}

	switch m.player.Status() {
	case player.StatusIdle, player.StatusLoading:
		b.WriteString(m.spinner.View() + " " + statusStyle.Render("Loading feed..."))
		return b.String()
	}

	views := m.player.Views()
	if len(views) == 0 {
		b.WriteString(statusStyle.Render("No clips to show."))
		b.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.Quit}))
		return b.String()
	}

	cur := m.player.Current()
	b.WriteString(m.renderCard(views[cur]))
	b.WriteString("\n")
	b.WriteString(m.renderStrip(views, cur))
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.help()))
	return b.String()
}

func (m *Model) renderToasts() string {
	active := m.player.Toasts()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, 0, len(active))
	for _, t := range active {
		style := toastInfoStyle
		if t.Level == toast.LevelError {
			style = toastErrorStyle
		}
		lines = append(lines, style.Render(t.Message))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderCard(v player.View) string {
	// The element decides what the viewer sees; the machine may be Playing
	// while the manifest is still loading.
	state := pauseStyle.Render("❚❚ paused")
	switch {
	case v.Playing && !v.Paused:
		state = playStyle.Render("▶ playing")
	case v.Playing:
		state = pauseStyle.Render("◌ starting")
	}
	sound := "🔊 sound on"
	if v.Muted {
		sound = muteStyle.Render("🔇 muted")
	}
	header := state + "  " + sound
	if v.Mode != "" {
		header += "  " + statusStyle.Render("["+string(v.Mode)+"]")
	}

	lines := []string{header, ""}
	if v.Paused && v.Clip.Cover != "" {
		lines = append(lines, posterStyle.Render("cover: "+v.Clip.Cover), "")
	}
	lines = append(lines, titleStyle.Render(v.Clip.Title))
	if c := v.Clip.Creator; c.Name != "" || c.Handle != "" {
		lines = append(lines, creatorStyle.Render(strings.TrimSpace(c.Handle+" "+c.Name)))
	}
	if v.Clip.Description != "" {
		lines = append(lines, descStyle.Render(v.Clip.Description))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("%s %3.0f%%", m.bar.ViewAs(v.Progress/100), v.Progress),
		"",
		actionStyle.Render("♡ Like   ＋ Follow   ↗ Share"),
	)

	style := cardStyle
	if v.Active {
		style = activeCardStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderStrip is the position indicator: one glyph per clip.
func (m *Model) renderStrip(views []player.View, cur int) string {
	var b strings.Builder
	for i, v := range views {
		glyph := "○"
		switch {
		case v.Playing && !v.Paused:
			glyph = "●"
		case v.Active:
			glyph = "◉"
		}
		if i == cur {
			glyph = "[" + glyph + "]"
		} else {
			glyph = " " + glyph + " "
		}
		b.WriteString(glyph)
	}
	return statusStyle.Render(fmt.Sprintf("%s  %d/%d", b.String(), cur+1, len(views)))
}
