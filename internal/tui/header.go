package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   control-plane host
//	center: colored allocator health indicator
//	right:  "Run: <id>" for the collection run
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := app.host
	if left == "" {
		left = "ECE"
	}

	alloc := app.summary.Allocators
	var center string
	switch {
	case alloc.Err != nil:
		center = StyleError.Render("● ALLOCATORS UNAVAILABLE")
	case alloc.Count == 0:
		center = StyleStatusUnknown.Render("● NO ALLOCATORS")
	default:
		sev := allocatorSeverity(alloc.Healthy, alloc.Count)
		center = lipgloss.NewStyle().Bold(true).Foreground(severityFg(sev)).
			Render(fmt.Sprintf("● %d/%d ALLOCATORS HEALTHY", alloc.Healthy, alloc.Count))
	}

	right := ""
	if app.runID != "" {
		id := app.runID
		if len(id) > 8 {
			id = id[:8]
		}
		right = StyleDim.Render("Run: " + id)
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}
