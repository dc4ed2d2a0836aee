package resultview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/slices"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/view/messages"
	"github.com/six78/gamelobby/pkg/protocol"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(config.HighlightColor)
	winnerStyle = lipgloss.NewStyle().Bold(true)
	shadeStyle  = lipgloss.NewStyle().Foreground(config.ForegroundShadeColor)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

type Model struct {
	result *protocol.GameResult
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
		m.result = msg.Update.Result
	}
	return m
}

func (m Model) View() string {
	if m.result == nil {
		return ""
	}

	title := "Draw"
	if !m.result.IsDraw() {
		winners := make([]string, 0, len(m.result.Winners))
		for _, team := range m.result.Winners {
			winners = append(winners, string(team))
		}
		title = "Winner: " + strings.Join(winners, ", ")
	}

	header := []string{cellStyle.Render("player"), cellStyle.Render("cause")}
	for _, fragment := range m.result.Definition {
		header = append(header, cellStyle.Render(fragment.Name))
	}

	rows := []string{
		headerStyle.Render(title),
		shadeStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, header...)),
	}
	for _, score := range m.result.Scores {
		rows = append(rows, m.renderScore(score))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func (m Model) renderScore(score protocol.PlayerScore) string {
	name := score.DisplayName
	if name == "" {
		name = string(score.Team)
	}
	style := cellStyle
	if slices.Contains(m.result.Winners, score.Team) {
		style = cellStyle.Copy().Inherit(winnerStyle)
	}

	cause := string(score.Cause)
	if score.Reason != "" {
		cause = fmt.Sprintf("%s (%s)", cause, score.Reason)
	}

	cells := []string{style.Render(name), cellStyle.Render(cause)}
	for _, value := range score.Values {
		cells = append(cells, cellStyle.Render(fmt.Sprint(value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, cells...)
}
