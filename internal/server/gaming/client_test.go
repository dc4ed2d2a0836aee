package gaming

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/six78/gamelobby/pkg/protocol"
)

// recordingClient keeps every frame the room sends to it.
type recordingClient struct {
	t      require.TestingT
	id     string
	frames chan protocol.Frame
}

func newRecordingClient(t require.TestingT) *recordingClient {
	return &recordingClient{
		t:      t,
		id:     uuid.NewString(),
		frames: make(chan protocol.Frame, 256),
	}
}

func (c *recordingClient) ID() string {
	return c.id
}

func (c *recordingClient) Send(frame protocol.Frame) error {
	c.frames <- frame
	return nil
}

// next returns the next message, unwrapping room packets.
func (c *recordingClient) next() protocol.Message {
	select {
	case frame := <-c.frames:
		if packet, ok := frame.Message.(*protocol.RoomPacket); ok {
			return packet.Data
		}
		return frame.Message
	case <-time.After(time.Second):
		require.Fail(c.t, "timeout waiting for message")
	}
	return nil
}

// expect skips messages until one of the given type arrives.
func (c *recordingClient) expect(messageType protocol.MessageType) protocol.Message {
	for {
		message := c.next()
		if message == nil || message.Type() == messageType {
			return message
		}
	}
}

func (c *recordingClient) empty() bool {
	return len(c.frames) == 0
}

func (c *recordingClient) drain() {
	for len(c.frames) > 0 {
		<-c.frames
	}
}
