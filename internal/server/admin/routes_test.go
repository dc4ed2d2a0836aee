package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/internal/server/network"
	"github.com/six78/gamelobby/internal/testcommon"
	"github.com/six78/gamelobby/internal/transport"
	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/plugin/minimal"
	"github.com/six78/gamelobby/pkg/protocol"
)

func TestAdmin(t *testing.T) {
	suite.Run(t, new(Suite))
}

type Suite struct {
	testcommon.Suite

	manager *gaming.Manager
	server  *network.Server
	http    *httptest.Server
}

func (s *Suite) SetupTest() {
	registry := prometheus.NewRegistry()
	metrics := gaming.NewMetrics(registry)
	s.manager = gaming.NewManager(plugin.NewRegistry(minimal.New()),
		gaming.WithLogger(s.Logger),
		gaming.WithMetrics(metrics),
	)
	lobby := network.NewLobby(s.manager, network.WithLogger(s.Logger), network.WithMetrics(metrics))

	var err error
	s.server, err = network.Listen("/ip4/127.0.0.1/tcp/0", lobby, s.Logger)
	s.Require().NoError(err)

	s.http = httptest.NewServer(SetupRoutes(s.manager, s.server, registry, s.Logger))
}

func (s *Suite) TearDownTest() {
	s.http.Close()
	s.Require().NoError(s.server.Stop())
}

func (s *Suite) get(path string) *http.Response {
	response, err := http.Get(s.http.URL + path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = response.Body.Close() })
	return response
}

func (s *Suite) TestHealthz() {
	s.Require().Equal(http.StatusOK, s.get("/healthz").StatusCode)
}

func (s *Suite) TestRooms() {
	room, _, err := s.manager.PrepareGame(&protocol.PrepareGameRequest{GameType: minimal.GameType})
	s.Require().NoError(err)

	response := s.get("/rooms")
	s.Require().Equal(http.StatusOK, response.StatusCode)

	var infos []gaming.RoomInfo
	s.Require().NoError(json.NewDecoder(response.Body).Decode(&infos))
	s.Require().Len(infos, 1)
	s.Require().Equal(room.ID(), infos[0].ID)
	s.Require().True(infos[0].Prepared)
	s.Require().Len(infos[0].Slots, 2)
	s.Require().True(infos[0].Slots[0].Reserved)

	response = s.get("/rooms/" + room.ID().String())
	s.Require().Equal(http.StatusOK, response.StatusCode)

	response = s.get("/rooms/" + protocol.NewRoomID().String())
	s.Require().Equal(http.StatusNotFound, response.StatusCode)
}

func (s *Suite) TestMetrics() {
	_, err := s.manager.CreateGame(minimal.GameType, false)
	s.Require().NoError(err)

	response := s.get("/metrics")
	s.Require().Equal(http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	s.Require().NoError(err)
	s.Require().Contains(string(body), "gamelobby_rooms_created_total 1")
	s.Require().Contains(string(body), "gamelobby_rooms_active 1")
}

func (s *Suite) TestWebSocket() {
	url := "ws" + strings.TrimPrefix(s.http.URL, "http") + "/ws"
	conn, err := transport.DialWebSocket(url)
	s.Require().NoError(err)
	defer conn.Close()

	id := protocol.NewRequestID()
	s.Require().NoError(conn.Send(protocol.Frame{
		RequestID: id,
		Message:   &protocol.JoinRoomRequest{GameType: minimal.GameType},
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			frame, err := conn.Receive()
			if err != nil {
				s.Fail("receive failed", err.Error())
				return
			}
			if frame.RequestID == id {
				s.Equal(protocol.MessageTypeJoinedRoom, frame.Message.Type())
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Require().Fail("no response over websocket")
	}
	s.Require().Equal(1, s.manager.Count())
}
