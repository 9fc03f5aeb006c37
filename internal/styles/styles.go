// Package styles provides shared lipgloss styles for CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// Semantic palette.
var (
	ColorPrimary = lipgloss.Color("#7aa2f7")
	ColorMuted   = lipgloss.Color("#565f89")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
)

var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	Muted   = lipgloss.NewStyle().Foreground(ColorMuted)
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	// Added and Removed color diff lines.
	Added   = lipgloss.NewStyle().Foreground(ColorSuccess)
	Removed = lipgloss.NewStyle().Foreground(ColorError)

	// Kind badges for plan previews.
	BadgeCreate = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	BadgeModify = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	BadgeDelete = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)
