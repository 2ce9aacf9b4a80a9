// Package color holds the terminal colors used by the CLI.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI palette.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	HiRed  = New("9")
)

var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
)

// Progress picks a color for a completion ratio in [0, 1].
func Progress(ratio float64) lipgloss.Color {
	switch {
	case ratio >= 0.9:
		return Green
	case ratio >= 0.5:
		return Yellow
	case ratio > 0:
		return Orange
	default:
		return Gray
	}
}
