package network

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/transport"
	"github.com/six78/gamelobby/pkg/protocol"
)

const sendQueueSize = 256

var (
	ErrClientClosed = errors.New("client closed")
	ErrQueueFull    = errors.New("send queue is full")
)

// Client is the server side of one lobby connection.
// Frames are queued and written by a dedicated goroutine, so
// a slow reader never blocks a room.
type Client struct {
	id     string
	conn   transport.Connection
	queue  chan protocol.Frame
	logger *zap.Logger

	administrator atomic.Bool
	testMode      atomic.Bool

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn transport.Connection, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		conn:   conn,
		queue:  make(chan protocol.Frame, sendQueueSize),
		logger: logger.With(zap.String("clientID", id), zap.String("remote", conn.RemoteAddr())),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Administrator() bool {
	return c.administrator.Load()
}

func (c *Client) TestMode() bool {
	return c.testMode.Load()
}

// Send queues the frame. A client that can't keep up is disconnected.
func (c *Client) Send(frame protocol.Frame) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.queue <- frame:
		return nil
	default:
		c.logger.Warn("send queue full, dropping client")
		c.Close()
		return ErrQueueFull
	}
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		err := c.conn.Close()
		if err != nil {
			c.logger.Debug("failed to close connection", zap.Error(err))
		}
	})
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.queue:
			err := c.conn.Send(frame)
			if err != nil {
				if !errors.Is(err, transport.ErrClosed) {
					c.logger.Warn("failed to send frame", zap.Error(err))
				}
				c.Close()
				return
			}
		}
	}
}
