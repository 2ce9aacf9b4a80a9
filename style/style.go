// Package style provides small lipgloss-based renderers for CLI output.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cuewatch/cue/color"
)

// New returns an empty lipgloss.Style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored initializes a new style with the specified foreground and background colors.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer that applies the foreground color.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a padded banner.
var Title = func(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

// Box draws a rounded border around the given lines.
func Box(border lipgloss.Color, lines ...string) string {
	return New().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Bar renders a fixed-width progress bar for ratio in [0, 1].
func Bar(ratio float64, width int) string {
	ratio = max(0, min(1, ratio))
	filled := int(ratio * float64(width))
	return Fg(color.Progress(ratio))(strings.Repeat("█", filled)) +
		Faint(strings.Repeat("░", width-filled))
}
