// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tui

import "github.com/charmbracelet/lipgloss"

const (
	cardWidth        = 48
	progressBarWidth = 36
)

var (
	cardStyle = lipgloss.NewStyle().
			Width(cardWidth).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	activeCardStyle = cardStyle.BorderForeground(lipgloss.Color("205"))

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	creatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	descStyle    = lipgloss.NewStyle().Faint(true)
	posterStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	statusStyle  = lipgloss.NewStyle().Faint(true)
	playStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // Bright Green
	pauseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))  // Gray
	muteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // Yellow
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true)

	toastErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("9")).
			Padding(0, 1)
	toastInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Padding(0, 1)
)
