package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/ecemon/internal/model"
)

// Color constants.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorPurple = lipgloss.Color("#8b5cf6")
	colorOrange = lipgloss.Color("#f97316")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

// Status styles, used for deployment health indicators.
var (
	StyleStatusGreen   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStatusYellow  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStatusRed     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleStatusError   = lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
	StyleStatusUnknown = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleOverviewCard is the bordered card for the overview bar.
var StyleOverviewCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Margin(0).
	Align(lipgloss.Center)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

// Named color styles for table cell coloring.
var (
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// StatusStyle returns the bold foreground style for a health bucket.
func StatusStyle(status model.HealthStatus) lipgloss.Style {
	switch status {
	case model.StatusGreen:
		return StyleStatusGreen
	case model.StatusYellow:
		return StyleStatusYellow
	case model.StatusRed:
		return StyleStatusRed
	case model.StatusError:
		return StyleStatusError
	default:
		return StyleStatusUnknown
	}
}

// statusColor returns the card background for a health bucket.
func statusColor(status model.HealthStatus) lipgloss.Color {
	switch status {
	case model.StatusGreen:
		return colorGreen
	case model.StatusYellow:
		return colorYellow
	case model.StatusRed:
		return colorRed
	case model.StatusError:
		return colorOrange
	default:
		return colorGray
	}
}
