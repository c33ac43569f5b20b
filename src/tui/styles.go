package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds all customizable style colors for the search UI.
type StyleConfig struct {
	// Primary colors
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	DarkBackground lipgloss.Color
	CardBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	// Outcome colors
	FoundColor    lipgloss.Color
	NotFoundColor lipgloss.Color
	ErrorColor    lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		CardBackground: lipgloss.Color("#2D2D2D"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		FoundColor:     lipgloss.Color("#34A853"),
		NotFoundColor:  lipgloss.Color("#FBBC04"),
		ErrorColor:     lipgloss.Color("#EA4335"),
	}
}

// TitleStyle returns a title lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// PanelStyle returns a bordered panel style; focused panels get the accent border.
func (s *StyleConfig) PanelStyle(focused bool) lipgloss.Style {
	border := s.BorderColor
	if focused {
		border = s.AccentBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// LabelStyle is used for field names inside the results panel.
func (s *StyleConfig) LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.TextSecondary).Bold(true)
}

// LinkStyle renders reference URLs.
func (s *StyleConfig) LinkStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.AccentBlue).Underline(true)
}

// StatusStyle colors a status line by outcome.
func (s *StyleConfig) StatusStyle(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true).Padding(0, 1)
}
