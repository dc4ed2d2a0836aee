package eventhandler

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/six78/gamelobby/internal/view/messages"
	"github.com/six78/gamelobby/pkg/observer"
)

type Model struct {
	// pointer so copies of the model share the subscription,
	// nil once the channel is closed
	subscription **observer.Subscription
}

func New(subscription *observer.Subscription) Model {
	return Model{
		subscription: &subscription,
	}
}

// Init emits the current snapshot. Waiting for events starts
// when that snapshot reaches Update.
func (m Model) Init(current observer.Update) tea.Cmd {
	return func() tea.Msg {
		return messages.UpdateMessage{Tag: observer.EventUpdated, Update: current}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg.(type) {
	case messages.UpdateMessage:
		return m, m.wait()
	}
	return m, nil
}

// wait blocks for one event. The next wait is issued when the
// resulting message reaches Update.
func (m Model) wait() tea.Cmd {
	return func() tea.Msg {
		if m.subscription == nil || *m.subscription == nil {
			return nil
		}
		event, more := <-(*m.subscription).Events
		if !more {
			*m.subscription = nil
			return nil
		}
		return messages.UpdateMessage{Tag: event.Tag, Update: event.Update}
	}
}
