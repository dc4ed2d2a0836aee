package network

import (
	"crypto/subtle"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/internal/transport"
	"github.com/six78/gamelobby/pkg/protocol"
)

// Lobby turns client frames into manager and room calls.
// Every failure is reported to the requesting client, which stays connected.
type Lobby struct {
	manager  *gaming.Manager
	password string
	metrics  *gaming.Metrics
	logger   *zap.Logger

	clients map[string]*Client
	mutex   sync.RWMutex
	wg      sync.WaitGroup
}

type Option func(*Lobby)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Lobby) {
		l.logger = logger
	}
}

// WithPassword sets the administrator password.
// Without one nobody can authenticate.
func WithPassword(password string) Option {
	return func(l *Lobby) {
		l.password = password
	}
}

func WithMetrics(metrics *gaming.Metrics) Option {
	return func(l *Lobby) {
		l.metrics = metrics
	}
}

func NewLobby(manager *gaming.Manager, opts ...Option) *Lobby {
	l := &Lobby{
		manager: manager,
		clients: make(map[string]*Client),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("lobby")
	return l
}

// Serve runs a connection until it closes. It blocks.
func (l *Lobby) Serve(conn transport.Connection) {
	client := NewClient(conn, l.logger)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		client.writeLoop()
	}()

	l.addClient(client)
	defer l.removeClient(client)

	client.logger.Info("client connected")
	for {
		frame, err := conn.Receive()
		if errors.Is(err, transport.ErrMalformedFrame) {
			client.logger.Warn("malformed frame", zap.Error(err))
			l.reply(client, "", protocol.NewErrorMessage(protocol.ErrorCodeMalformedRequest, err.Error()))
			continue
		}
		if err != nil {
			if !errors.Is(err, transport.ErrClosed) {
				client.logger.Warn("receive failed", zap.Error(err))
			}
			break
		}
		l.HandleFrame(client, frame)
	}
	client.Close()
	client.logger.Info("client disconnected")
}

func (l *Lobby) addClient(client *Client) {
	l.mutex.Lock()
	l.clients[client.ID()] = client
	l.mutex.Unlock()
	if l.metrics != nil {
		l.metrics.ClientsConnected.Inc()
	}
}

func (l *Lobby) removeClient(client *Client) {
	l.mutex.Lock()
	delete(l.clients, client.ID())
	l.mutex.Unlock()
	if l.metrics != nil {
		l.metrics.ClientsConnected.Dec()
	}
	l.manager.RemoveClient(client)
}

func (l *Lobby) Clients() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.clients)
}

// Close disconnects every client and waits for the writers to stop.
func (l *Lobby) Close() {
	l.mutex.RLock()
	clients := make([]*Client, 0, len(l.clients))
	for _, client := range l.clients {
		clients = append(clients, client)
	}
	l.mutex.RUnlock()

	for _, client := range clients {
		client.Close()
	}
	l.wg.Wait()
}

func (l *Lobby) HandleFrame(client *Client, frame protocol.Frame) {
	if frame.Message == nil {
		return
	}
	response, err := l.handle(client, frame)
	if err != nil {
		client.logger.Info("request failed",
			zap.String("type", string(frame.Message.Type())),
			zap.Error(err))
		l.reply(client, frame.RequestID, toErrorMessage(err))
		return
	}
	if response != nil {
		l.reply(client, frame.RequestID, response)
	}
}

func (l *Lobby) reply(client *Client, requestID protocol.RequestID, message protocol.Message) {
	err := client.Send(protocol.Frame{
		RequestID: requestID,
		Message:   message,
	})
	if err != nil {
		client.logger.Debug("failed to reply", zap.Error(err))
	}
}

func (l *Lobby) handle(client *Client, frame protocol.Frame) (protocol.Message, error) {
	message := frame.Message
	switch m := message.(type) {
	case *protocol.AuthenticateRequest:
		return nil, l.authenticate(client, m.Password)

	case *protocol.JoinRoomRequest:
		room, existing, err := l.manager.JoinOrCreateGame(client, m.GameType)
		if err != nil {
			return nil, err
		}
		return &protocol.JoinedRoomResponse{RoomID: room.ID(), Existing: existing}, nil

	case *protocol.JoinPreparedRoomRequest:
		room, err := l.manager.JoinPreparedGame(client, m.ReservationCode)
		if err != nil {
			return nil, err
		}
		return &protocol.JoinedRoomResponse{RoomID: room.ID(), Existing: true}, nil

	case *protocol.RoomPacket:
		return nil, l.handleRoomPacket(client, m)
	}

	if protocol.IsRoomScoped(message.Type()) {
		return nil, errors.Wrap(ErrMissingRoom, string(message.Type()))
	}

	if !client.Administrator() {
		if _, known := administrative[message.Type()]; known {
			return nil, ErrUnauthorized
		}
		return nil, errors.Wrap(ErrUnexpectedFrame, string(message.Type()))
	}

	return l.handleAdministrative(client, frame)
}

var administrative = map[protocol.MessageType]struct{}{
	protocol.MessageTypePrepareGame:     {},
	protocol.MessageTypeFreeReservation: {},
	protocol.MessageTypeObservation:     {},
	protocol.MessageTypePauseGame:       {},
	protocol.MessageTypeStep:            {},
	protocol.MessageTypeCancel:          {},
	protocol.MessageTypeTestMode:        {},
}

func (l *Lobby) handleAdministrative(client *Client, frame protocol.Frame) (protocol.Message, error) {
	message := frame.Message
	switch m := message.(type) {
	case *protocol.PrepareGameRequest:
		room, codes, err := l.manager.PrepareGame(m)
		if err != nil {
			return nil, err
		}
		return &protocol.GamePreparedResponse{RoomID: room.ID(), Reservations: codes}, nil

	case *protocol.FreeReservationRequest:
		return nil, l.manager.FreeReservation(m.ReservationCode)

	case *protocol.ObservationRequest:
		room, err := l.manager.FindRoom(m.RoomID)
		if err != nil {
			return nil, err
		}
		// the response goes out before the first memento
		l.reply(client, frame.RequestID, &protocol.ObservationResponse{RoomID: room.ID()})
		return nil, room.Observe(client)

	case *protocol.PauseGameRequest:
		room, err := l.manager.FindRoom(m.RoomID)
		if err != nil {
			return nil, err
		}
		return nil, room.Pause(m.Pause)

	case *protocol.StepRequest:
		room, err := l.manager.FindRoom(m.RoomID)
		if err != nil {
			return nil, err
		}
		return nil, room.Step(m.Forced || client.TestMode())

	case *protocol.CancelRequest:
		room, err := l.manager.FindRoom(m.RoomID)
		if err != nil {
			return nil, err
		}
		return nil, room.Cancel()

	case *protocol.TestModeRequest:
		client.testMode.Store(m.Enabled)
		client.logger.Info("test mode changed", zap.Bool("enabled", m.Enabled))
		return &protocol.TestModeResponse{TestMode: m.Enabled}, nil
	}

	return nil, errors.Wrap(ErrUnexpectedFrame, string(message.Type()))
}

func (l *Lobby) handleRoomPacket(client *Client, packet *protocol.RoomPacket) error {
	move, ok := packet.Data.(*protocol.Move)
	if !ok {
		if packet.Data == nil {
			return ErrUnexpectedPacket
		}
		return errors.Wrap(ErrUnexpectedPacket, string(packet.Data.Type()))
	}

	room, err := l.manager.FindRoom(packet.RoomID)
	if err != nil {
		return err
	}
	return room.OnMove(client, move)
}

func (l *Lobby) authenticate(client *Client, password string) error {
	if l.password == "" || subtle.ConstantTimeCompare([]byte(l.password), []byte(password)) != 1 {
		client.logger.Warn("authentication failed")
		return ErrWrongPassword
	}
	client.administrator.Store(true)
	client.logger.Info("client authenticated as administrator")
	return nil
}
