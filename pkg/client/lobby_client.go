package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/transport"
	"github.com/six78/gamelobby/pkg/protocol"
)

// LobbyClient owns one connection to the server.
// Incoming frames are first matched against pending requests
// and then fanned out to the registered listeners.
type LobbyClient struct {
	logger  *zap.Logger
	conn    transport.Connection
	results *ResultManager

	lobbyListeners   listeners[LobbyListener]
	historyListeners listeners[HistoryListener]
	adminListeners   listeners[AdministrativeListener]

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

type Option func(*LobbyClient)

func WithLogger(logger *zap.Logger) Option {
	return func(c *LobbyClient) {
		c.logger = logger
	}
}

func New(conn transport.Connection, opts ...Option) *LobbyClient {
	c := &LobbyClient{
		conn: conn,
		done: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	c.logger = c.logger.Named("lobby")
	c.results = NewResultManager(c.logger)
	return c
}

func Dial(ctx context.Context, address string, opts ...Option) (*LobbyClient, error) {
	c := New(nil, opts...)
	conn, err := transport.DialWithRetry(ctx, address, c.logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to lobby")
	}
	c.conn = conn
	return c, nil
}

// Start launches the receive loop. Subsequent calls do nothing.
func (c *LobbyClient) Start() {
	c.startOnce.Do(func() {
		go c.receiveLoop()
	})
}

// Stop closes the connection. Pending requests fail with ErrConnectionClosed.
func (c *LobbyClient) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		err = c.conn.Close()
		c.results.Close()
	})
	return err
}

// Done is closed once the receive loop has exited.
func (c *LobbyClient) Done() <-chan struct{} {
	return c.done
}

func (c *LobbyClient) receiveLoop() {
	defer func() {
		_ = c.Stop()
		close(c.done)
		c.logger.Info("receive loop stopped")
	}()

	for {
		frame, err := c.conn.Receive()
		if errors.Is(err, transport.ErrMalformedFrame) {
			c.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		if errors.Is(err, transport.ErrClosed) {
			return
		}
		if err != nil {
			c.logger.Error("failed to receive frame", zap.Error(err))
			return
		}
		c.onFrame(frame)
	}
}

func (c *LobbyClient) onFrame(frame protocol.Frame) {
	if frame.Message == nil {
		c.logger.Warn("received empty frame")
		return
	}

	c.results.Dispatch(frame)

	switch message := frame.Message.(type) {
	case *protocol.RoomPacket:
		c.onRoomPacket(message)
	case *protocol.GamePreparedResponse:
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnGamePrepared(message)
		}
	case *protocol.JoinedRoomResponse:
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnGameJoined(message.RoomID)
		}
	case *protocol.LeftGameEvent:
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnGameLeft(message.RoomID)
		}
	case *protocol.ObservationResponse:
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnGameObserved(message.RoomID)
		}
	case *protocol.TestModeResponse:
		c.logger.Info("test mode changed", zap.Bool("testMode", message.TestMode))
	case *protocol.ErrorMessage:
		c.onError("", message)
	default:
		c.onCustomMessage(message)
	}
}

func (c *LobbyClient) onRoomPacket(packet *protocol.RoomPacket) {
	roomID := packet.RoomID

	switch data := packet.Data.(type) {
	case *protocol.MementoEvent:
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnNewState(roomID, data.State)
		}
		for _, l := range c.historyListeners.snapshot() {
			l.OnNewState(roomID, data.State)
		}
	case *protocol.GameResult:
		c.logger.Info("received game result",
			zap.String("roomID", roomID.String()),
			zap.Any("winners", data.Winners))
		for _, l := range c.historyListeners.snapshot() {
			l.OnGameOver(roomID, data)
		}
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnGameOver(roomID, data)
		}
	case *protocol.GamePausedEvent:
		for _, l := range c.adminListeners.snapshot() {
			l.OnGamePaused(roomID, data.NextTeam)
		}
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnGamePaused(roomID, data.NextTeam)
		}
	case *protocol.ErrorMessage:
		c.onError(roomID, data)
	default:
		for _, l := range c.lobbyListeners.snapshot() {
			l.OnRoomMessage(roomID, data)
		}
	}
}

func (c *LobbyClient) onError(roomID protocol.RoomID, err *protocol.ErrorMessage) {
	c.logger.Warn("received error",
		zap.String("roomID", roomID.String()),
		zap.String("code", string(err.Code)),
		zap.String("message", err.Message))
	for _, l := range c.lobbyListeners.snapshot() {
		l.OnError(roomID, err)
	}
	for _, l := range c.historyListeners.snapshot() {
		l.OnGameError(roomID, err)
	}
}

func (c *LobbyClient) onCustomMessage(message protocol.Message) {
	c.logger.Warn("unhandled message", zap.String("type", string(message.Type())))
	for _, l := range c.lobbyListeners.snapshot() {
		l.OnCustomMessage(message)
	}
}

// Listener registration. Adding a present or removing an absent listener is a no-op.

func (c *LobbyClient) AddLobbyListener(l LobbyListener) {
	c.lobbyListeners.add(l)
}

func (c *LobbyClient) RemoveLobbyListener(l LobbyListener) {
	c.lobbyListeners.remove(l)
}

func (c *LobbyClient) AddHistoryListener(l HistoryListener) {
	c.historyListeners.add(l)
}

func (c *LobbyClient) RemoveHistoryListener(l HistoryListener) {
	c.historyListeners.remove(l)
}

func (c *LobbyClient) AddAdministrativeListener(l AdministrativeListener) {
	c.adminListeners.add(l)
}

func (c *LobbyClient) RemoveAdministrativeListener(l AdministrativeListener) {
	c.adminListeners.remove(l)
}

// Fire-and-forget requests

func (c *LobbyClient) send(message protocol.Message) error {
	err := c.conn.Send(protocol.NewFrame(message))
	if err != nil {
		return errors.Wrapf(err, "failed to send %s", message.Type())
	}
	return nil
}

func (c *LobbyClient) Authenticate(password string) error {
	return c.send(&protocol.AuthenticateRequest{Password: password})
}

func (c *LobbyClient) PrepareGame(gameType string, paused bool) error {
	return c.send(&protocol.PrepareGameRequest{
		GameType: gameType,
		Slots:    protocol.DefaultSlots(),
		Pause:    paused,
	})
}

func (c *LobbyClient) JoinRoom(gameType string) error {
	return c.send(&protocol.JoinRoomRequest{GameType: gameType})
}

func (c *LobbyClient) JoinPreparedGame(code protocol.ReservationCode) error {
	return c.send(&protocol.JoinPreparedRoomRequest{ReservationCode: code})
}

func (c *LobbyClient) FreeReservation(code protocol.ReservationCode) error {
	return c.send(&protocol.FreeReservationRequest{ReservationCode: code})
}

func (c *LobbyClient) SendMessageToRoom(roomID protocol.RoomID, message protocol.Message) error {
	return c.send(protocol.NewRoomPacket(roomID, message))
}

func (c *LobbyClient) Observe(roomID protocol.RoomID) error {
	c.Start()
	c.logger.Debug("sending observation request", zap.String("roomID", roomID.String()))
	return c.send(&protocol.ObservationRequest{RoomID: roomID})
}

func (c *LobbyClient) PauseGame(roomID protocol.RoomID, pause bool) error {
	return c.send(&protocol.PauseGameRequest{RoomID: roomID, Pause: pause})
}

func (c *LobbyClient) Step(roomID protocol.RoomID, forced bool) error {
	return c.send(&protocol.StepRequest{RoomID: roomID, Forced: forced})
}

func (c *LobbyClient) Cancel(roomID protocol.RoomID) error {
	return c.send(&protocol.CancelRequest{RoomID: roomID})
}

func (c *LobbyClient) SetTestMode(enabled bool) error {
	return c.send(&protocol.TestModeRequest{Enabled: enabled})
}

// Correlated requests

// RequestAsync sends the message with a fresh request id and returns
// a future resolved by the response of the expected type or by an error.
func (c *LobbyClient) RequestAsync(message protocol.Message, expected protocol.MessageType) (protocol.RequestID, *Future) {
	id := protocol.NewRequestID()
	future := NewFuture()

	c.results.Register(id, expected, future.Resolve)

	err := c.conn.Send(protocol.Frame{
		RequestID: id,
		Message:   message,
	})
	if err != nil {
		c.results.Cancel(id)
		future.Resolve(nil, errors.Wrapf(err, "failed to send %s", message.Type()))
	}

	return id, future
}

// Request blocks until the response arrives or ctx is done.
// There is no implicit timeout.
func (c *LobbyClient) Request(ctx context.Context, message protocol.Message, expected protocol.MessageType) (protocol.Message, error) {
	id, future := c.RequestAsync(message, expected)
	response, err := future.Wait(ctx)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.results.Cancel(id)
	}
	return response, err
}

func (c *LobbyClient) PrepareGameAndWait(ctx context.Context, request *protocol.PrepareGameRequest) (*protocol.GamePreparedResponse, error) {
	response, err := c.Request(ctx, request, protocol.MessageTypeGamePrepared)
	if err != nil {
		return nil, err
	}
	return response.(*protocol.GamePreparedResponse), nil
}

func (c *LobbyClient) JoinRoomAndWait(ctx context.Context, gameType string) (*protocol.JoinedRoomResponse, error) {
	response, err := c.Request(ctx, &protocol.JoinRoomRequest{GameType: gameType}, protocol.MessageTypeJoinedRoom)
	if err != nil {
		return nil, err
	}
	return response.(*protocol.JoinedRoomResponse), nil
}

func (c *LobbyClient) JoinPreparedGameAndWait(ctx context.Context, code protocol.ReservationCode) (*protocol.JoinedRoomResponse, error) {
	response, err := c.Request(ctx, &protocol.JoinPreparedRoomRequest{ReservationCode: code}, protocol.MessageTypeJoinedRoom)
	if err != nil {
		return nil, err
	}
	return response.(*protocol.JoinedRoomResponse), nil
}

func (c *LobbyClient) ObserveAndWait(ctx context.Context, roomID protocol.RoomID) (*protocol.ObservationResponse, error) {
	c.Start()
	response, err := c.Request(ctx, &protocol.ObservationRequest{RoomID: roomID}, protocol.MessageTypeObserved)
	if err != nil {
		return nil, err
	}
	return response.(*protocol.ObservationResponse), nil
}
