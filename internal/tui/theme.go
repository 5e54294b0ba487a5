package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Revenue colors
	RevenueUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	RevenueDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	RevenueZeroStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Project state colors
	StateActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	StateWinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	StateKilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	StateIdleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Alert severity colors
	SeverityInfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))
	SeverityWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	SeverityCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// Cycle progress bar
	CycleFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	CycleEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)
