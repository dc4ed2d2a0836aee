package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/six78/gamelobby/pkg/observer"
)

// Every command acts on the game and returns nothing,
// the resulting snapshot arrives through the subscription.

func Next(game observer.Game) tea.Cmd {
	return run(game.Next)
}

func Previous(game observer.Game) tea.Cmd {
	return run(game.Previous)
}

func First(game observer.Game) tea.Cmd {
	return run(game.GoToFirst)
}

func Last(game observer.Game) tea.Cmd {
	return run(game.GoToLast)
}

// TogglePause resumes a paused game and pauses a running one.
func TogglePause(game observer.Game) tea.Cmd {
	return func() tea.Msg {
		if game.Snapshot().Paused {
			game.Unpause()
		} else {
			game.Pause()
		}
		return nil
	}
}

func run(action func()) tea.Cmd {
	return func() tea.Msg {
		action()
		return nil
	}
}
