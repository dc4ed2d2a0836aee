package matchers

import (
	"fmt"
	"testing"

	"github.com/six78/gamelobby/pkg/protocol"
)

// MessageMatcher matches a protocol.Frame carrying a message of the given type.
// With a room id set, the message must arrive inside a RoomPacket for that room.
type MessageMatcher struct {
	*Matcher
	messageType protocol.MessageType
	roomID      protocol.RoomID
}

func NewMessageMatcher(t *testing.T, messageType protocol.MessageType) *MessageMatcher {
	return &MessageMatcher{
		Matcher:     NewMatcher(t),
		messageType: messageType,
	}
}

func NewRoomMessageMatcher(t *testing.T, roomID protocol.RoomID, messageType protocol.MessageType) *MessageMatcher {
	return &MessageMatcher{
		Matcher:     NewMatcher(t),
		messageType: messageType,
		roomID:      roomID,
	}
}

func (m *MessageMatcher) message(x interface{}) protocol.Message {
	frame, ok := x.(protocol.Frame)
	if !ok || frame.Message == nil {
		return nil
	}

	message := frame.Message
	if packet, ok := message.(*protocol.RoomPacket); ok {
		if !m.roomID.Empty() && packet.RoomID != m.roomID {
			return nil
		}
		message = packet.Data
	} else if !m.roomID.Empty() {
		return nil
	}

	if message == nil || message.Type() != m.messageType {
		return nil
	}
	return message
}

func (m *MessageMatcher) Matches(x interface{}) bool {
	message := m.message(x)
	if message == nil {
		return false
	}
	m.trigger(message)
	return true
}

func (m *MessageMatcher) String() string {
	if m.roomID.Empty() {
		return fmt.Sprintf("is %s message", m.messageType)
	}
	return fmt.Sprintf("is %s message in room %s", m.messageType, m.roomID)
}

func (m *MessageMatcher) WaitMessage() protocol.Message {
	message, _ := m.Wait().(protocol.Message)
	return message
}
