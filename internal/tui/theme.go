package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette of the booking TUI. All colors use
// lipgloss ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	Brand            lipgloss.Color
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color

	TelemetryValue lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	Brand:            lipgloss.Color("75"), // sky blue
	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	SelectedBackground: lipgloss.Color("24"),
	SelectedForeground: lipgloss.Color("255"),

	Success: lipgloss.Color("114"),
	Warning: lipgloss.Color("214"),
	Danger:  lipgloss.Color("196"),

	TelemetryValue: lipgloss.Color("87"), // cyan
}

type styles struct {
	brand    lipgloss.Style
	tagline  lipgloss.Style
	title    lipgloss.Style
	text     lipgloss.Style
	faint    lipgloss.Style
	selected lipgloss.Style
	panel    lipgloss.Style
	danger   lipgloss.Style
	warning  lipgloss.Style
	success  lipgloss.Style
	value    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		brand:    lipgloss.NewStyle().Bold(true).Foreground(theme.Brand),
		tagline:  lipgloss.NewStyle().Foreground(theme.FaintText),
		title:    lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).MarginBottom(1),
		text:     lipgloss.NewStyle().Foreground(theme.NormalText),
		faint:    lipgloss.NewStyle().Foreground(theme.FaintText),
		selected: lipgloss.NewStyle().Bold(true).Foreground(theme.SelectedForeground).Background(theme.SelectedBackground),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.BorderColor).
			Padding(0, 1),
		danger:  lipgloss.NewStyle().Bold(true).Foreground(theme.Danger),
		warning: lipgloss.NewStyle().Foreground(theme.Warning),
		success: lipgloss.NewStyle().Foreground(theme.Success),
		value:   lipgloss.NewStyle().Bold(true).Foreground(theme.TelemetryValue),
		help:    lipgloss.NewStyle().Foreground(theme.HelpText),
	}
}
