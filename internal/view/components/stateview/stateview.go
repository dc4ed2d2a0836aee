package stateview

import (
	"bytes"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/view/messages"
	"github.com/six78/gamelobby/pkg/protocol"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	shadeStyle  = lipgloss.NewStyle().Foreground(config.ForegroundShadeColor)
	errorStyle  = lipgloss.NewStyle().Foreground(config.ErrorColor)
	dataStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(config.ForegroundShadeColor).
			Padding(0, 1)
)

type Model struct {
	state *protocol.State
	err   *protocol.ErrorMessage
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
		m.state = msg.Update.State
		m.err = msg.Update.Error
	}
	return m
}

func (m Model) View() string {
	if m.state == nil {
		return shadeStyle.Render("no state yet")
	}

	header := fmt.Sprintf("%s  turn %d  next %s",
		headerStyle.Render(m.state.GameType),
		m.state.Turn,
		headerStyle.Render(string(m.state.CurrentTeam)),
	)

	views := []string{header, dataStyle.Render(formatData(m.state.Data))}
	if m.err != nil {
		views = append(views, errorStyle.Render(fmt.Sprintf("error: %s", m.err.Error())))
	}
	return lipgloss.JoinVertical(lipgloss.Top, views...)
}

func formatData(data json.RawMessage) string {
	if len(data) == 0 {
		return shadeStyle.Render("empty")
	}
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, data, "", "  "); err != nil {
		return string(data)
	}
	return buffer.String()
}
