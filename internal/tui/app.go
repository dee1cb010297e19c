package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/ecemon/internal/model"
)

// chromeLines is the number of terminal lines used by everything except the
// table body: header, overview cards, table title, column headers, footer.
const chromeLines = 10

// App is the root Bubble Tea model for browsing a collected report.
type App struct {
	host    string
	runID   string
	summary model.Summary

	deployments DeploymentTableModel

	// Layout
	width, height int

	// UI state
	showHelp bool
}

// NewApp creates an App over summary s. host and runID are shown in the header.
func NewApp(host, runID string, s model.Summary) *App {
	t := NewDeploymentTable()
	t.SetData(s.Deployments.Rows)
	return &App{
		host:        host,
		runID:       runID,
		summary:     s,
		deployments: t,
	}
}

// Init implements tea.Model. The report is static, so there is nothing to start.
func (app *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model, the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		if rows := msg.Height - chromeLines; rows >= 5 {
			app.deployments.pageSize = rows
			app.deployments.clampPage(len(app.deployments.displayRows))
		}
		return app, nil

	case tea.KeyMsg:
		// While the search box has focus every key belongs to it.
		if !app.deployments.searching {
			switch {
			case key.Matches(msg, keys.Quit):
				return app, tea.Quit
			case key.Matches(msg, keys.Help):
				app.showHelp = !app.showHelp
				return app, nil
			}
		}
		var cmd tea.Cmd
		app.deployments, cmd = app.deployments.Update(msg)
		return app, cmd
	}

	return app, nil
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	parts := []string{
		renderHeader(app),
		renderOverview(app),
		app.deployments.renderTable(app.width),
		renderFooter(app),
	}
	return strings.Join(parts, "\n")
}

// Run browses s in an alternate-screen terminal UI until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, host, runID string, s model.Summary) error {
	p := tea.NewProgram(NewApp(host, runID, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
