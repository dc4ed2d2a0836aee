package observer

import (
	"github.com/six78/gamelobby/pkg/protocol"
)

type EventTag int

const (
	EventUpdated EventTag = iota
	EventError
)

// Update is a snapshot of the observer taken when an event is published.
type Update struct {
	RoomID   protocol.RoomID
	Position int
	Len      int
	Paused   bool
	Replay   bool
	GameOver bool
	State    *protocol.State
	Error    *protocol.ErrorMessage
	Result   *protocol.GameResult
}

type Event struct {
	Tag    EventTag
	Update Update
}

type Subscription struct {
	Events chan Event
}

const subscriptionBuffer = 64

type eventManager struct {
	subscriptions []*Subscription
}

// send never blocks. Every event carries a full snapshot,
// so a reader that falls behind only misses intermediate ones.
func (m *eventManager) send(event Event) {
	for _, sub := range m.subscriptions {
		select {
		case sub.Events <- event:
		default:
		}
	}
}

func (m *eventManager) subscribe() *Subscription {
	subscription := &Subscription{
		Events: make(chan Event, subscriptionBuffer),
	}
	m.subscriptions = append(m.subscriptions, subscription)
	return subscription
}

func (m *eventManager) close() {
	for _, sub := range m.subscriptions {
		close(sub.Events)
	}
	m.subscriptions = nil
}
