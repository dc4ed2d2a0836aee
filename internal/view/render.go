package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/six78/gamelobby/internal/config"
)

var (
	foregroundShadeStyle = lipgloss.NewStyle().Foreground(config.ForegroundShadeColor)
	errorStyle           = lipgloss.NewStyle().Foreground(config.ErrorColor)
)

func (m model) render() string {
	if m.fatalError != nil {
		return errorStyle.Render(fmt.Sprintf("error: %s", m.fatalError))
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		m.renderRoomID(),
		m.historyView.View(),
		"",
		m.renderGame(),
		m.resultView.View(),
		"",
		m.shortcutsView.View(),
		renderLogPath(),
	)
}

func (m model) renderRoomID() string {
	return "  Room: " + m.update.RoomID.String()
}

func (m model) renderGame() string {
	if !m.received || (m.update.Len == 0 && !m.update.GameOver) {
		return fmt.Sprintf("%s Waiting for the first state ...", m.spinner.View())
	}
	return m.stateView.View()
}

func renderLogPath() string {
	if config.LogFilePath == "" {
		return ""
	}
	path := strings.Replace(config.LogFilePath, " ", "%20", -1)
	return foregroundShadeStyle.Render(fmt.Sprintf("Log: file:///%s", path))
}
