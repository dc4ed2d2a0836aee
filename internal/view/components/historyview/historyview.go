package historyview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/view/messages"
	"github.com/six78/gamelobby/pkg/observer"
)

const width = 40

var (
	shadeStyle     = lipgloss.NewStyle().Foreground(config.ForegroundShadeColor)
	highlightStyle = lipgloss.NewStyle().Foreground(config.HighlightColor).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(config.ErrorColor)
)

type Model struct {
	update observer.Update
}

func New() Model {
	return Model{}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) Model {
	switch msg := msg.(type) {
	case messages.UpdateMessage:
		m.update = msg.Update
	}
	return m
}

func (m Model) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		m.renderMode(),
		"  ",
		m.renderPosition(),
		"  ",
		renderBar(m.update.Position, m.update.Len),
	)
}

func (m Model) renderMode() string {
	switch {
	case m.update.Replay:
		return highlightStyle.Render("REPLAY")
	case m.update.GameOver:
		return shadeStyle.Render("FINISHED")
	case m.update.Paused:
		return errorStyle.Render("PAUSED")
	}
	return highlightStyle.Render("LIVE")
}

func (m Model) renderPosition() string {
	if m.update.Len == 0 {
		return shadeStyle.Render("-/-")
	}
	return fmt.Sprintf("%d/%d", m.update.Position+1, m.update.Len)
}

// renderBar draws the cursor position scaled to a fixed width.
func renderBar(position int, length int) string {
	if length == 0 {
		return shadeStyle.Render(strings.Repeat("·", width))
	}
	marker := 0
	if length > 1 {
		marker = position * (width - 1) / (length - 1)
	}
	return shadeStyle.Render(strings.Repeat("─", marker)) +
		highlightStyle.Render("●") +
		shadeStyle.Render(strings.Repeat("─", width-marker-1))
}
