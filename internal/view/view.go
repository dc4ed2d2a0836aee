package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/pkg/observer"
)

func NewProgram(game observer.Game) *tea.Program {
	return tea.NewProgram(initialModel(game), tea.WithAltScreen())
}

func Run(game observer.Game) int {
	return RunProgram(NewProgram(game))
}

func RunProgram(p *tea.Program) int {
	if _, err := p.Run(); err != nil {
		config.Logger.Error("error running program", zap.Error(err))
		return 1
	}
	return 0
}
