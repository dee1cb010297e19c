package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_LoadsRows(t *testing.T) {
	app := NewApp("host", "run", fixtureSummary())
	assert.Len(t, app.deployments.displayRows, 4)
	assert.Nil(t, app.Init(), "static report needs no startup command")
}

func TestApp_WindowSizeSetsPageSize(t *testing.T) {
	app := NewApp("host", "run", fixtureSummary())

	m, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := m.(*App)
	assert.Nil(t, cmd)
	assert.Equal(t, 120, updated.width)
	assert.Equal(t, 40, updated.height)
	assert.Equal(t, 40-chromeLines, updated.deployments.pageSize)

	m, _ = updated.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	assert.Equal(t, 40-chromeLines, m.(*App).deployments.pageSize, "tiny terminals keep the previous page size")
}

func TestApp_QuitKey(t *testing.T) {
	app := NewApp("host", "run", fixtureSummary())
	_, cmd := app.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_HelpToggle(t *testing.T) {
	app := NewApp("host", "run", fixtureSummary())
	m, _ := app.Update(keyPress("?"))
	assert.True(t, m.(*App).showHelp)
	m, _ = m.Update(keyPress("?"))
	assert.False(t, m.(*App).showHelp)
}

func TestApp_SearchCapturesQuitKey(t *testing.T) {
	app := NewApp("host", "run", fixtureSummary())
	m, _ := app.Update(keyPress("/"))
	require.True(t, m.(*App).deployments.searching)

	m, _ = m.Update(keyPress("q"))
	assert.True(t, m.(*App).deployments.searching, "q typed into the search box must not quit")
	assert.Equal(t, "q", m.(*App).deployments.input.Value())
}

func TestApp_SortKeyRoutedToTable(t *testing.T) {
	app := NewApp("host", "run", fixtureSummary())
	m, _ := app.Update(keyPress("1"))
	assert.Equal(t, colName, m.(*App).deployments.sortCol)
}

func TestApp_View(t *testing.T) {
	app := NewApp("https://ece.example", "run", fixtureSummary())
	m, _ := app.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	out := m.View()
	assert.Contains(t, out, "https://ece.example")
	assert.Contains(t, out, "Deployments")
	assert.Contains(t, out, "charlie")
	assert.Contains(t, out, "? for help")
}
