package tui

import "github.com/charmbracelet/lipgloss"

// theme holds every style the screen uses
type theme struct {
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	badge     lipgloss.Style
	muted     lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
	input     lipgloss.Style
	logKinds  map[string]lipgloss.Style
}

func newTheme() theme {
	amber := lipgloss.Color("#ffb000")
	cyan := lipgloss.Color("#5fd7ff")
	green := lipgloss.Color("#87d787")
	red := lipgloss.Color("#ff5f5f")
	muted := lipgloss.Color("#808080")
	text := lipgloss.Color("#e4e4e4")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(amber).
			Padding(0, 1),
		label: lipgloss.NewStyle().Foreground(muted),
		value: lipgloss.NewStyle().Foreground(text).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		title:     lipgloss.NewStyle().Foreground(cyan).Bold(true),
		badge:     lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(green).Bold(true).Padding(0, 1),
		muted:     lipgloss.NewStyle().Foreground(muted),
		status:    lipgloss.NewStyle().Foreground(cyan),
		errStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(muted),
		logKinds: map[string]lipgloss.Style{
			"ACTION": lipgloss.NewStyle().Foreground(cyan),
			"TRADE":  lipgloss.NewStyle().Foreground(green),
			"COMBAT": lipgloss.NewStyle().Foreground(red),
			"SYSTEM": lipgloss.NewStyle().Foreground(amber),
		},
	}
}

func (t theme) logKind(kind string) lipgloss.Style {
	if s, ok := t.logKinds[kind]; ok {
		return s
	}
	return t.muted
}
