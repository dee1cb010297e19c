package tui

import "github.com/charmbracelet/lipgloss"

// severity represents the alert level for a metric value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// memorySeverity returns Warning when allocator memory use > 75%, Critical when > 90%.
func memorySeverity(ratio float64) severity {
	switch {
	case ratio > 0.90:
		return severityCritical
	case ratio > 0.75:
		return severityWarning
	default:
		return severityNormal
	}
}

// allocatorSeverity returns Critical when no allocator is healthy and Warning
// when only some are.
func allocatorSeverity(healthy, total int) severity {
	switch {
	case total == 0:
		return severityNormal
	case healthy == 0:
		return severityCritical
	case healthy < total:
		return severityWarning
	default:
		return severityNormal
	}
}

// relocatingSeverity returns Warning while any shard is relocating.
func relocatingSeverity(shards int64) severity {
	if shards > 0 {
		return severityWarning
	}
	return severityNormal
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// severityFg returns the foreground color for a card rendered at severity s.
func severityFg(s severity) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return colorGreen
	}
}
