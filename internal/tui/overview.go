package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/ecemon/internal/format"
	"github.com/dm/ecemon/internal/model"
)

// renderOverview renders the 7-card overview bar.
// Wide terminals (>= 80 cols): all cards in a single horizontal row.
// Narrow terminals (< 80 cols): cards stacked in rows of 2.
func renderOverview(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 14) / 7
		if cardWidth < 8 {
			cardWidth = 8
		}
	}

	barWidth := cardWidth - 4
	if barWidth < 4 {
		barWidth = 4
	}

	deps := app.summary.Deployments
	alloc := app.summary.Allocators

	card1 := StyleOverviewCard.
		Foreground(colorBlue).
		Width(cardWidth).
		Render(fmt.Sprintf("%d", deps.Count) + "\nDeployments")

	statusCard := func(label string, statuses ...model.HealthStatus) string {
		n := 0
		for _, s := range statuses {
			n += deps.Health[s]
		}
		style := StyleOverviewCard.Width(cardWidth)
		if n > 0 {
			style = style.Background(statusColor(statuses[0])).Foreground(colorDark).Bold(true)
		} else {
			style = style.Foreground(colorGray)
		}
		return style.Render(fmt.Sprintf("%d", n) + "\n" + label)
	}
	card2 := statusCard("Green", model.StatusGreen)
	card3 := statusCard("Yellow", model.StatusYellow)
	card4 := statusCard("Red", model.StatusRed)
	card5 := statusCard("Error/Unknown", model.StatusError, model.StatusUnknown)

	allocText := format.NotAvailable
	allocSev := severityNormal
	if alloc.Err == nil {
		allocText = fmt.Sprintf("%d/%d", alloc.Healthy, alloc.Count)
		allocSev = allocatorSeverity(alloc.Healthy, alloc.Count)
	}
	card6 := StyleOverviewCard.
		Foreground(severityFg(allocSev)).
		Width(cardWidth).
		Render(allocText + "\nAllocators")

	ratio, ok := alloc.MemoryUsedRatio()
	memVal := format.Ratio(ratio, ok)
	memSev := memorySeverity(ratio)
	if memSev == severityCritical {
		memVal += "!"
	}
	memBar := renderMiniBar(ratio*100, barWidth)
	card7 := StyleOverviewCard.
		Foreground(severityFg(memSev)).
		Width(cardWidth).
		Render(memVal + "\n" + memBar + "\n" +
			format.Megabytes(alloc.MemoryUsedMB) + "/" + format.Megabytes(alloc.MemoryTotalMB) + "\nMemory")

	if narrowMode {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3, card7)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6, card7)
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
