package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/ecemon/internal/format"
	"github.com/dm/ecemon/internal/model"
)

const (
	colName = iota
	colID
	colStatus
	colNodes
	colRelocating
	colMemory
	colVersion
)

// DeploymentTableModel is a sortable, paginated, searchable table of inspected deployments.
type DeploymentTableModel struct {
	tableModel
	allRows     []model.DeploymentRow // unfiltered source data
	displayRows []model.DeploymentRow // after filter + sort applied
}

// NewDeploymentTable returns a DeploymentTableModel with a 7-column layout
// and default sort by Status (col 2) descending, so unhealthy deployments
// come first.
func NewDeploymentTable() DeploymentTableModel {
	cols := []columnDef{
		{Title: "Name", Width: 28, Align: "left", Key: "name"},
		{Title: "ID", Width: 34, Align: "left", Key: "id"},
		{Title: "Status", Width: 9, Align: "center", Key: "status"},
		{Title: "Nodes", Width: 6, Align: "right", Key: "nodes"},
		{Title: "Relocating", Width: 10, Align: "right", Key: "relocating"},
		{Title: "Memory", Width: 10, Align: "right", Key: "memory"},
		{Title: "Version", Width: 9, Align: "right", Key: "version"},
	}
	m := DeploymentTableModel{
		tableModel: newTableModel(cols),
	}
	m.sortCol = colStatus
	m.sortDesc = true
	return m
}

// SetData applies the current search filter and sort to rows, storing the
// result as displayRows ready for rendering.
func (m *DeploymentTableModel) SetData(rows []model.DeploymentRow) {
	m.allRows = rows
	m.refresh()
}

func (m *DeploymentTableModel) refresh() {
	filtered := filterDeploymentRows(m.allRows, m.search)
	m.displayRows = sortDeploymentRows(filtered, m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
}

// Update delegates to the embedded tableModel and re-applies filter/sort
// when the sort column, direction, search term, or page changes.
func (m DeploymentTableModel) Update(msg tea.Msg) (DeploymentTableModel, tea.Cmd) {
	prevSort := m.sortCol
	prevDesc := m.sortDesc
	prevSearch := m.search
	prevPage := m.page

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		m.refresh()
	} else if m.page != prevPage {
		m.clampPage(len(m.displayRows))
	}
	return m, cmd
}

// renderTable renders the "Deployments" section: a header bar followed by
// the lipgloss table body for the current page.
func (m *DeploymentTableModel) renderTable(width int) string {
	pc := pageCount(len(m.displayRows), m.pageSize)
	hdr := m.renderHeader("Deployments", m.page+1, pc)

	headers := make([]string, len(m.columns))
	for i, c := range m.columns {
		if i == m.sortCol {
			arrow := "↓"
			if !m.sortDesc {
				arrow = "↑"
			}
			headers[i] = c.Title + arrow
		} else {
			headers[i] = c.Title
		}
	}

	start, end := pageBounds(len(m.displayRows), m.page, m.pageSize)
	page := m.displayRows[start:end]
	if len(page) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no deployments)"))
	}

	sortCol := m.sortCol
	t := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			if row < 0 || row >= len(page) {
				return base.Foreground(colorWhite)
			}
			r := page[row]
			switch col {
			case colStatus:
				return base.Inherit(StatusStyle(r.Status))
			case colRelocating:
				if s := relocatingSeverity(r.RelocatingShards); s != severityNormal {
					return base.Inherit(severityToStyle(s))
				}
				return base.Foreground(colorWhite)
			case colMemory:
				return base.Foreground(colorCyan)
			case colVersion:
				return base.Foreground(colorPurple)
			default:
				return base.Foreground(colorWhite)
			}
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if width > 0 {
		t = t.Width(width)
	}

	for _, r := range page {
		cells := make([]string, len(m.columns))
		for col, c := range m.columns {
			cells[col] = truncateName(deploymentCellValue(r, col), c.Width)
		}
		t = t.Row(cells...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String())
}

// renderHeader renders the title bar with search/sort/page hints.
func (m *DeploymentTableModel) renderHeader(title string, page, pageCount int) string {
	pageInfo := fmt.Sprintf("Page %d/%d", page, pageCount)

	var right string
	switch {
	case m.searching:
		right = "Search: " + m.input.View()
	case m.search != "":
		right = fmt.Sprintf("filter=%q  %d matches  %s", m.search, len(m.displayRows), pageInfo)
	default:
		right = fmt.Sprintf("[/: search]  [1-%d: sort]  [←→: page]  %s", len(m.columns), pageInfo)
	}

	return StyleDim.Render(title + "  " + right)
}

// renderLegend returns a brief column legend for display when help is shown.
func (m *DeploymentTableModel) renderLegend() string {
	parts := make([]string, len(m.columns))
	for i, c := range m.columns {
		parts[i] = fmt.Sprintf("%d=%s", i+1, c.Title)
	}
	return StyleDim.Render("  " + strings.Join(parts, "  "))
}

// deploymentCellValue formats a DeploymentRow field for a given column index.
func deploymentCellValue(r model.DeploymentRow, col int) string {
	switch col {
	case colName:
		return r.DisplayName()
	case colID:
		return r.ID
	case colStatus:
		if r.HealthErr != nil {
			return "ERROR"
		}
		if r.RawStatus != "" {
			return strings.ToUpper(r.RawStatus)
		}
		return strings.ToUpper(string(r.Status))
	case colNodes:
		return format.FormatNumber(r.Nodes)
	case colRelocating:
		return format.FormatNumber(r.RelocatingShards)
	case colMemory:
		if r.MemoryMB <= 0 {
			return format.NotAvailable
		}
		return format.Megabytes(r.MemoryMB)
	case colVersion:
		if r.Version == "" {
			return format.NotAvailable
		}
		return r.Version
	default:
		return ""
	}
}
