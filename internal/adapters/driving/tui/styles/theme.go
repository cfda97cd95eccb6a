// Package styles holds the colours and lipgloss styles of the progress display.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette. Primary and Secondary are the ends of the
// progress bar gradient.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"),
		Secondary: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Muted:     lipgloss.Color("#6C7086"),
		Success:   lipgloss.Color("#A6E3A1"),
		Error:     lipgloss.Color("#F38BA8"),
	}
}

// Styles are the rendered pieces of one progress view.
type Styles struct {
	theme *Theme

	Title   lipgloss.Style // run heading
	Step    lipgloss.Style // active step
	Detail  lipgloss.Style // item being processed
	Success lipgloss.Style // finished steps
	Error   lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles builds styles from theme, or from the default theme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	plain := lipgloss.NewStyle()
	return &Styles{
		theme:   theme,
		Title:   plain.Bold(true).Foreground(theme.Primary),
		Step:    plain.Bold(true).Foreground(theme.Text),
		Detail:  plain.Foreground(theme.Muted),
		Success: plain.Foreground(theme.Success),
		Error:   plain.Foreground(theme.Error),
		Help:    plain.Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
