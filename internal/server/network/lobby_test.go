package network

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/internal/testcommon"
	"github.com/six78/gamelobby/internal/transport"
	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/observer"
	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/plugin/minimal"
	"github.com/six78/gamelobby/pkg/protocol"
)

func TestLobby(t *testing.T) {
	suite.Run(t, new(LobbySuite))
}

type LobbySuite struct {
	testcommon.Suite

	password string
	metrics  *gaming.Metrics
	manager  *gaming.Manager
	server   *Server
	done     chan error
}

func (s *LobbySuite) SetupTest() {
	s.password = gofakeit.Password(true, true, true, false, false, 16)
	s.metrics = gaming.NewMetrics(prometheus.NewRegistry())
	s.manager = gaming.NewManager(plugin.NewRegistry(minimal.New()), gaming.WithLogger(s.Logger))
	lobby := NewLobby(s.manager,
		WithLogger(s.Logger),
		WithPassword(s.password),
		WithMetrics(s.metrics),
	)

	var err error
	s.server, err = Listen("/ip4/127.0.0.1/tcp/0", lobby, s.Logger)
	s.Require().NoError(err)

	s.done = make(chan error, 1)
	go func() {
		s.done <- s.server.Run()
	}()
}

func (s *LobbySuite) TearDownTest() {
	s.Require().NoError(s.server.Stop())
	select {
	case err := <-s.done:
		s.Require().NoError(err)
	case <-time.After(time.Second):
		s.Require().Fail("server did not stop")
	}
}

func (s *LobbySuite) connect() transport.Connection {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, err := transport.Dial(ctx, s.server.Address())
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *LobbySuite) request(conn transport.Connection, message protocol.Message) protocol.RequestID {
	id := protocol.NewRequestID()
	s.Require().NoError(conn.Send(protocol.Frame{RequestID: id, Message: message}))
	return id
}

// expect skips frames until one of the given type arrives.
// Room packets are matched by their payload.
func (s *LobbySuite) expect(conn transport.Connection, messageType protocol.MessageType) protocol.Frame {
	for {
		frame, err := conn.Receive()
		s.Require().NoError(err)
		message := frame.Message
		if packet, ok := message.(*protocol.RoomPacket); ok {
			message = packet.Data
		}
		if message.Type() == messageType {
			return protocol.Frame{RequestID: frame.RequestID, Message: message}
		}
	}
}

func (s *LobbySuite) admin() transport.Connection {
	conn := s.connect()
	s.request(conn, &protocol.AuthenticateRequest{Password: s.password})
	return conn
}

func (s *LobbySuite) TestJoinAndPlay() {
	one := s.connect()
	two := s.connect()

	id := s.request(one, &protocol.JoinRoomRequest{GameType: minimal.GameType})
	frame := s.expect(one, protocol.MessageTypeJoinedRoom)
	s.Require().Equal(id, frame.RequestID)
	joined := frame.Message.(*protocol.JoinedRoomResponse)
	s.Require().False(joined.Existing)

	s.request(two, &protocol.JoinRoomRequest{GameType: minimal.GameType})
	frame = s.expect(two, protocol.MessageTypeJoinedRoom)
	s.Require().True(frame.Message.(*protocol.JoinedRoomResponse).Existing)
	s.Require().Equal(joined.RoomID, frame.Message.(*protocol.JoinedRoomResponse).RoomID)

	s.expect(one, protocol.MessageTypeMoveRequest)
	s.request(one, protocol.NewRoomPacket(joined.RoomID, &protocol.Move{Data: minimal.NewMove(3)}))

	memento := s.expect(two, protocol.MessageTypeMemento).Message.(*protocol.MementoEvent)
	if memento.State.Turn == 0 {
		memento = s.expect(two, protocol.MessageTypeMemento).Message.(*protocol.MementoEvent)
	}
	s.Require().Equal(1, memento.State.Turn)
	s.expect(two, protocol.MessageTypeMoveRequest)

	_ = one.Close()
	result := s.expect(two, protocol.MessageTypeGameResult).Message.(*protocol.GameResult)
	s.Require().Equal([]protocol.Team{protocol.TeamTwo}, result.Winners)
	s.expect(two, protocol.MessageTypeLeftGame)
}

func (s *LobbySuite) TestUnknownGameType() {
	conn := s.connect()
	id := s.request(conn, &protocol.JoinRoomRequest{GameType: gofakeit.Word()})

	frame := s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(id, frame.RequestID)
	s.Require().Equal(protocol.ErrorCodeUnknownGameType, frame.Message.(*protocol.ErrorMessage).Code)
	s.Require().Zero(s.manager.Count())

	// the connection stays usable
	s.request(conn, &protocol.JoinRoomRequest{GameType: minimal.GameType})
	s.expect(conn, protocol.MessageTypeJoinedRoom)
}

func (s *LobbySuite) TestAdministrativeRequiresAuthentication() {
	conn := s.connect()

	s.request(conn, &protocol.PrepareGameRequest{GameType: minimal.GameType})
	frame := s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeUnauthorized, frame.Message.(*protocol.ErrorMessage).Code)

	s.request(conn, &protocol.AuthenticateRequest{Password: s.password + "x"})
	frame = s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeUnauthorized, frame.Message.(*protocol.ErrorMessage).Code)
	s.Require().Zero(s.manager.Count())
}

func (s *LobbySuite) TestUnexpectedMessage() {
	conn := s.admin()

	s.request(conn, &protocol.MementoEvent{State: s.FakeState(1)})
	frame := s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeMalformedRequest, frame.Message.(*protocol.ErrorMessage).Code)

	s.request(conn, protocol.NewRoomPacket(protocol.NewRoomID(), &protocol.MoveRequest{}))
	frame = s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeMalformedRequest, frame.Message.(*protocol.ErrorMessage).Code)

	s.request(conn, protocol.NewRoomPacket(protocol.NewRoomID(), &protocol.Move{}))
	frame = s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeRoomNotFound, frame.Message.(*protocol.ErrorMessage).Code)
}

func (s *LobbySuite) TestBareRoomMessage() {
	conn := s.connect()
	s.request(conn, &protocol.JoinRoomRequest{GameType: minimal.GameType})
	s.expect(conn, protocol.MessageTypeJoinedRoom)

	s.request(conn, &protocol.Move{Data: minimal.NewMove(1)})
	frame := s.expect(conn, protocol.MessageTypeError)
	message := frame.Message.(*protocol.ErrorMessage)
	s.Require().Equal(protocol.ErrorCodeMalformedRequest, message.Code)
	s.Require().Contains(message.Message, ErrMissingRoom.Error())
}

func (s *LobbySuite) TestMalformedFrame() {
	left, right := net.Pipe()
	go s.server.HandleBlocking(transport.NewStreamConnection(right))
	conn := transport.NewStreamConnection(left)
	defer conn.Close()

	go func() {
		_, _ = left.Write([]byte("{broken\n"))
	}()
	frame := s.expect(conn, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeMalformedRequest, frame.Message.(*protocol.ErrorMessage).Code)
}

func (s *LobbySuite) TestPrepareObserveAndControl() {
	admin := s.admin()

	id := s.request(admin, &protocol.PrepareGameRequest{
		GameType: minimal.GameType,
		Slots:    protocol.DefaultSlots(),
		Pause:    true,
	})
	frame := s.expect(admin, protocol.MessageTypeGamePrepared)
	s.Require().Equal(id, frame.RequestID)
	prepared := frame.Message.(*protocol.GamePreparedResponse)
	s.Require().Len(prepared.Reservations, 2)

	id = s.request(admin, &protocol.ObservationRequest{RoomID: prepared.RoomID})
	frame = s.expect(admin, protocol.MessageTypeObserved)
	s.Require().Equal(id, frame.RequestID)

	one := s.connect()
	two := s.connect()
	s.request(one, &protocol.JoinPreparedRoomRequest{ReservationCode: prepared.Reservations[0]})
	s.expect(one, protocol.MessageTypeJoinedRoom)
	s.request(two, &protocol.JoinPreparedRoomRequest{ReservationCode: prepared.Reservations[1]})
	s.expect(two, protocol.MessageTypeJoinedRoom)

	s.expect(admin, protocol.MessageTypeMemento)
	paused := s.expect(admin, protocol.MessageTypeGamePaused).Message.(*protocol.GamePausedEvent)
	s.Require().Equal(protocol.TeamOne, paused.NextTeam)

	s.request(admin, &protocol.StepRequest{RoomID: prepared.RoomID})
	s.expect(one, protocol.MessageTypeMoveRequest)
	s.request(one, protocol.NewRoomPacket(prepared.RoomID, &protocol.Move{Data: minimal.NewMove(1)}))

	memento := s.expect(admin, protocol.MessageTypeMemento).Message.(*protocol.MementoEvent)
	s.Require().Equal(1, memento.State.Turn)

	s.request(admin, &protocol.CancelRequest{RoomID: prepared.RoomID})
	result := s.expect(admin, protocol.MessageTypeGameResult).Message.(*protocol.GameResult)
	s.Require().True(result.IsDraw())

	s.request(admin, &protocol.PauseGameRequest{RoomID: prepared.RoomID, Pause: false})
	frame = s.expect(admin, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeRoomNotFound, frame.Message.(*protocol.ErrorMessage).Code)
}

func (s *LobbySuite) TestReservationUsedTwice() {
	admin := s.admin()
	s.request(admin, &protocol.PrepareGameRequest{GameType: minimal.GameType})
	prepared := s.expect(admin, protocol.MessageTypeGamePrepared).Message.(*protocol.GamePreparedResponse)

	s.request(admin, &protocol.FreeReservationRequest{ReservationCode: prepared.Reservations[1]})

	player := s.connect()
	s.request(player, &protocol.JoinPreparedRoomRequest{ReservationCode: prepared.Reservations[1]})
	frame := s.expect(player, protocol.MessageTypeError)
	s.Require().Equal(protocol.ErrorCodeReservationNotFound, frame.Message.(*protocol.ErrorMessage).Code)
}

func (s *LobbySuite) TestTestMode() {
	admin := s.admin()
	id := s.request(admin, &protocol.TestModeRequest{Enabled: true})
	frame := s.expect(admin, protocol.MessageTypeTestModeResponse)
	s.Require().Equal(id, frame.RequestID)
	s.Require().True(frame.Message.(*protocol.TestModeResponse).TestMode)
}

func (s *LobbySuite) TestLobbyClient() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, s.server.Address(), client.WithLogger(s.Logger))
	s.Require().NoError(err)
	c.Start()
	defer c.Stop()

	s.Require().NoError(c.Authenticate(s.password))
	prepared, err := c.PrepareGameAndWait(ctx, &protocol.PrepareGameRequest{GameType: minimal.GameType})
	s.Require().NoError(err)
	s.Require().Len(prepared.Reservations, 2)

	observed, err := c.ObserveAndWait(ctx, prepared.RoomID)
	s.Require().NoError(err)
	s.Require().Equal(prepared.RoomID, observed.RoomID)

	_, err = c.JoinRoomAndWait(ctx, gofakeit.Word())
	s.Require().Error(err)

	s.Require().Eventually(func() bool {
		return testutil.ToFloat64(s.metrics.ClientsConnected) == 1
	}, time.Second, 10*time.Millisecond)
}

func (s *LobbySuite) dialLobbyClient(ctx context.Context) *client.LobbyClient {
	c, err := client.Dial(ctx, s.server.Address(), client.WithLogger(s.Logger))
	s.Require().NoError(err)
	c.Start()
	s.T().Cleanup(func() { _ = c.Stop() })
	return c
}

func (s *LobbySuite) TestObserverFollowsPreparedGame() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := s.dialLobbyClient(ctx)
	s.Require().NoError(c.Authenticate(s.password))
	prepared, err := c.PrepareGameAndWait(ctx, &protocol.PrepareGameRequest{GameType: minimal.GameType})
	s.Require().NoError(err)

	game, err := observer.Attach(ctx, c, prepared.RoomID, false, observer.WithLogger(s.Logger))
	s.Require().NoError(err)
	defer game.Close()

	one := s.connect()
	two := s.connect()
	s.request(one, &protocol.JoinPreparedRoomRequest{ReservationCode: prepared.Reservations[0]})
	s.expect(one, protocol.MessageTypeJoinedRoom)
	s.request(two, &protocol.JoinPreparedRoomRequest{ReservationCode: prepared.Reservations[1]})
	s.expect(two, protocol.MessageTypeJoinedRoom)

	s.Require().Eventually(func() bool {
		return game.Len() == 1
	}, time.Second, 10*time.Millisecond)
	s.Require().Equal(0, game.CurrentState().Turn)

	game.Pause()

	s.expect(one, protocol.MessageTypeMoveRequest)
	s.request(one, protocol.NewRoomPacket(prepared.RoomID, &protocol.Move{Data: minimal.NewMove(2)}))

	s.Require().Eventually(func() bool {
		return game.Len() == 2
	}, time.Second, 10*time.Millisecond)
	s.Require().Equal(0, game.Position())
	s.Require().Equal(0, game.CurrentState().Turn)

	game.GoToLast()
	s.Require().Equal(1, game.CurrentState().Turn)
}

func (s *LobbySuite) TestObserveWithoutPassword() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	room, _, err := s.manager.PrepareGame(&protocol.PrepareGameRequest{GameType: minimal.GameType})
	s.Require().NoError(err)

	c := s.dialLobbyClient(ctx)
	_, err = observer.Attach(ctx, c, room.ID(), false, observer.WithLogger(s.Logger))
	var message *protocol.ErrorMessage
	s.Require().ErrorAs(err, &message)
	s.Require().Equal(protocol.ErrorCodeUnauthorized, message.Code)
}
