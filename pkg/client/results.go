package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/pkg/protocol"
)

var ErrConnectionClosed = errors.New("connection closed")

type UnexpectedResponseError struct {
	Expected protocol.MessageType
	Received protocol.MessageType
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: expected %s, received %s", e.Expected, e.Received)
}

// Callback receives either the expected response or an error, never both.
type Callback func(protocol.Message, error)

type registration struct {
	expected protocol.MessageType
	callback Callback
}

// ResultManager matches responses to pending requests by request id.
// Every registration is resolved at most once.
type ResultManager struct {
	logger  *zap.Logger
	mutex   sync.Mutex
	pending map[protocol.RequestID]registration
	closed  bool
}

func NewResultManager(logger *zap.Logger) *ResultManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultManager{
		logger:  logger.Named("results"),
		pending: make(map[protocol.RequestID]registration),
	}
}

// Register replaces an earlier registration with the same id.
// After Close the callback is immediately failed with ErrConnectionClosed.
func (m *ResultManager) Register(id protocol.RequestID, expected protocol.MessageType, callback Callback) {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		callback(nil, ErrConnectionClosed)
		return
	}
	if _, ok := m.pending[id]; ok {
		m.logger.Warn("replacing pending request", zap.String("requestID", string(id)))
	}
	m.pending[id] = registration{
		expected: expected,
		callback: callback,
	}
	m.mutex.Unlock()
}

// Cancel drops a registration without invoking its callback.
func (m *ResultManager) Cancel(id protocol.RequestID) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.pending[id]
	delete(m.pending, id)
	return ok
}

// Dispatch resolves the registration matching the frame's request id.
// It returns false for frames nobody is waiting for.
func (m *ResultManager) Dispatch(frame protocol.Frame) bool {
	if frame.RequestID.Empty() || frame.Message == nil {
		return false
	}

	m.mutex.Lock()
	r, ok := m.pending[frame.RequestID]
	if ok {
		delete(m.pending, frame.RequestID)
	}
	m.mutex.Unlock()

	if !ok {
		return false
	}

	switch message := frame.Message.(type) {
	case *protocol.ErrorMessage:
		if r.expected == protocol.MessageTypeError {
			r.callback(message, nil)
		} else {
			r.callback(nil, message)
		}
	default:
		if message.Type() == r.expected {
			r.callback(message, nil)
		} else {
			r.callback(nil, &UnexpectedResponseError{
				Expected: r.expected,
				Received: message.Type(),
			})
		}
	}

	return true
}

func (m *ResultManager) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pending)
}

// Close fails every pending registration with ErrConnectionClosed.
func (m *ResultManager) Close() {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return
	}
	m.closed = true
	pending := m.pending
	m.pending = make(map[protocol.RequestID]registration)
	m.mutex.Unlock()

	for _, r := range pending {
		r.callback(nil, ErrConnectionClosed)
	}
}

// Future holds the single outcome of a request.
type Future struct {
	once    sync.Once
	done    chan struct{}
	message protocol.Message
	err     error
}

func NewFuture() *Future {
	return &Future{
		done: make(chan struct{}),
	}
}

// Resolve stores the outcome. Only the first call has an effect.
func (f *Future) Resolve(message protocol.Message, err error) {
	f.once.Do(func() {
		f.message = message
		f.err = err
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx is done.
func (f *Future) Wait(ctx context.Context) (protocol.Message, error) {
	select {
	case <-f.done:
		return f.message, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
