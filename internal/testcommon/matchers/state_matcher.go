package matchers

import (
	"testing"

	"github.com/six78/gamelobby/pkg/protocol"
)

type Condition func(state protocol.State) bool

type StateMatcher struct {
	*MessageMatcher
	condition Condition
}

func NewStateMatcher(t *testing.T, roomID protocol.RoomID, condition Condition) *StateMatcher {
	return &StateMatcher{
		MessageMatcher: NewRoomMessageMatcher(t, roomID, protocol.MessageTypeMemento),
		condition:      condition,
	}
}

func (m *StateMatcher) Matches(x interface{}) bool {
	memento, ok := m.message(x).(*protocol.MementoEvent)
	if !ok {
		return false
	}
	if m.condition != nil && !m.condition(memento.State) {
		return false
	}
	m.trigger(memento.State)
	return true
}

func (m *StateMatcher) String() string {
	return "is memento matching custom condition"
}

func (m *StateMatcher) WaitState() protocol.State {
	state, _ := m.Wait().(protocol.State)
	return state
}
