package main

import (
	"github.com/charmbracelet/lipgloss"

	"coach/pkg/protocol"
)

// Theme defines the colors shared by status output and the overlay.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("12"),  // Blue
		Secondary: lipgloss.Color("14"),  // Cyan
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// Label renders a fixed-width field label.
func (t Theme) Label(s string) string {
	return lipgloss.NewStyle().Foreground(t.Muted).Width(10).Render(s)
}

// StyleColor maps an overlay style id to its accent color.
func (t Theme) StyleColor(styleID string) lipgloss.Color {
	switch styleID {
	case protocol.StyleStrict:
		return t.Error
	case protocol.StylePatternBreak:
		return t.Warning
	default:
		return t.Secondary
	}
}

// Box returns the frame for an overlay: level B gets a thick border.
func (t Theme) Box(level protocol.Level, styleID string) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	if level == protocol.LevelB {
		border = lipgloss.ThickBorder()
	}
	if styleID == protocol.StylePatternBreak {
		border = lipgloss.DoubleBorder()
	}
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(t.StyleColor(styleID)).
		Padding(0, 1)
}
