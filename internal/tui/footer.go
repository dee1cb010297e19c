package tui

// renderFooter renders the key binding help footer at full terminal width.
// When app.showHelp is true, shows all key bindings plus the column legend;
// otherwise a brief hint.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	if !app.showHelp {
		return StyleDim.Width(width).Render("? for help")
	}
	return app.deployments.renderLegend() + "\n" + StyleDim.Width(width).Render(helpText)
}
