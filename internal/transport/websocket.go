package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/six78/gamelobby/pkg/protocol"
)

const (
	writeWait = 10 * time.Second
)

// WebSocketConnection sends one JSON envelope per text message.
type WebSocketConnection struct {
	conn *websocket.Conn

	writeMutex sync.Mutex
	closeOnce  sync.Once
	closeErr   error
	closed     chan struct{}
}

func NewWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	conn.SetReadLimit(maxFrameSize)
	return &WebSocketConnection{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

func DialWebSocket(url string) (*WebSocketConnection, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial websocket")
	}
	return NewWebSocketConnection(conn), nil
}

func (c *WebSocketConnection) Send(frame protocol.Frame) error {
	payload, err := protocol.EncodeFrame(frame)
	if err != nil {
		return err
	}

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if c.isClosed() {
		return ErrClosed
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	if err != nil {
		return errors.Wrap(err, "failed to write frame")
	}
	return nil
}

func (c *WebSocketConnection) Receive() (protocol.Frame, error) {
	for {
		messageType, payload, err := c.conn.ReadMessage()
		if err != nil {
			if c.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return protocol.Frame{}, ErrClosed
			}
			return protocol.Frame{}, errors.Wrap(err, "failed to read frame")
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return decodeFrame(payload)
	}
}

func (c *WebSocketConnection) Close() error {
	c.closeOnce.Do(func() {
		c.writeMutex.Lock()
		close(c.closed)
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMutex.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *WebSocketConnection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *WebSocketConnection) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
