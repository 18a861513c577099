package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the monitor UI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	ActiveColor  = lipgloss.Color("#43BF6D") // Green - channels carrying a value
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	MutedColor   = lipgloss.Color("#626262") // Gray - zero channels, secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(1)

	rowLabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	zeroChannelStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	activeChannelStyle = lipgloss.NewStyle().
				Foreground(ActiveColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)
)

func gridBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Padding(0, 1)
}

// GetTerminalSize returns the current terminal size, clamped to the
// supported range
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}
