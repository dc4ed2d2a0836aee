package view

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/six78/gamelobby/internal/view/commands"
	"github.com/six78/gamelobby/internal/view/components/eventhandler"
	"github.com/six78/gamelobby/internal/view/components/historyview"
	"github.com/six78/gamelobby/internal/view/components/resultview"
	"github.com/six78/gamelobby/internal/view/components/shortcutsview"
	"github.com/six78/gamelobby/internal/view/components/stateview"
	"github.com/six78/gamelobby/internal/view/messages"
	"github.com/six78/gamelobby/pkg/observer"
)

type model struct {
	game       observer.Game
	update     observer.Update
	received   bool
	fatalError error

	eventHandler  eventhandler.Model
	historyView   historyview.Model
	stateView     stateview.Model
	resultView    resultview.Model
	shortcutsView shortcutsview.Model
	spinner       spinner.Model
}

func initialModel(game observer.Game) model {
	snapshot := game.Snapshot()
	canPause := game.CanTogglePause() || snapshot.Replay

	return model{
		game:          game,
		update:        snapshot,
		eventHandler:  eventhandler.New(game.Subscribe()),
		historyView:   historyview.New(),
		stateView:     stateview.New(),
		resultView:    resultview.New(),
		shortcutsView: shortcutsview.New(shortcutsview.DefaultKeyMap(), canPause),
		spinner:       createSpinner(),
	}
}

func createSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return s
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.eventHandler.Init(m.update),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case messages.FatalErrorMessage:
		m.fatalError = msg.Err
		return m, tea.Quit

	case messages.UpdateMessage:
		m.update = msg.Update
		m.received = true

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.eventHandler, cmd = m.eventHandler.Update(msg)
	cmds = append(cmds, cmd)

	m.historyView = m.historyView.Update(msg)
	m.stateView = m.stateView.Update(msg)
	m.resultView = m.resultView.Update(msg)
	m.shortcutsView = m.shortcutsView.Update(msg)

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := m.shortcutsView.Keys()
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Next):
		return commands.Next(m.game)
	case key.Matches(msg, keys.Previous):
		return commands.Previous(m.game)
	case key.Matches(msg, keys.First):
		return commands.First(m.game)
	case key.Matches(msg, keys.Last):
		return commands.Last(m.game)
	case key.Matches(msg, keys.Pause):
		return commands.TogglePause(m.game)
	}
	return nil
}

func (m model) View() string {
	return m.render()
}
