package gaming

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	zapobserver "go.uber.org/zap/zaptest/observer"

	mockgaming "github.com/six78/gamelobby/internal/server/gaming/mock"
	"github.com/six78/gamelobby/internal/testcommon"
	"github.com/six78/gamelobby/internal/testcommon/matchers"
	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/plugin/minimal"
	"github.com/six78/gamelobby/pkg/protocol"
	mockstorage "github.com/six78/gamelobby/pkg/storage/mock"
)

func TestRoom(t *testing.T) {
	suite.Run(t, new(RoomSuite))
}

type RoomSuite struct {
	testcommon.Suite

	clock   clockwork.FakeClock
	storage *mockstorage.MockService
	metrics *Metrics
	manager *Manager
}

func (s *RoomSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.clock = clockwork.NewFakeClock()
	s.storage = mockstorage.NewMockService(ctrl)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.manager = NewManager(plugin.NewRegistry(minimal.New()),
		WithLogger(s.Logger),
		WithClock(s.clock),
		WithStorage(s.storage),
		WithMetrics(s.metrics),
	)
}

// startGame creates an ad-hoc game and skips the start messages.
func (s *RoomSuite) startGame() (*Room, *recordingClient, *recordingClient) {
	one := newRecordingClient(s.T())
	two := newRecordingClient(s.T())

	room, existing, err := s.manager.JoinOrCreateGame(one, minimal.GameType)
	s.Require().NoError(err)
	s.Require().False(existing)

	same, existing, err := s.manager.JoinOrCreateGame(two, minimal.GameType)
	s.Require().NoError(err)
	s.Require().True(existing)
	s.Require().Equal(room, same)
	s.Require().Equal(StatusActive, room.Status())

	welcome := one.expect(protocol.MessageTypeWelcome).(*protocol.WelcomeMessage)
	s.Require().Equal(protocol.TeamOne, welcome.Team)
	welcome = two.expect(protocol.MessageTypeWelcome).(*protocol.WelcomeMessage)
	s.Require().Equal(protocol.TeamTwo, welcome.Team)

	memento := one.expect(protocol.MessageTypeMemento).(*protocol.MementoEvent)
	s.Require().Equal(0, memento.State.Turn)
	s.Require().Equal(protocol.TeamOne, memento.State.CurrentTeam)
	two.expect(protocol.MessageTypeMemento)

	return room, one, two
}

func (s *RoomSuite) move(room *Room, client *recordingClient, pick int) {
	err := room.OnMove(client, &protocol.Move{Data: minimal.NewMove(pick)})
	s.Require().NoError(err)
}

func (s *RoomSuite) TestFullGame() {
	room, one, two := s.startGame()
	room.saveReplays = true

	s.storage.EXPECT().SaveReplay(gomock.Any()).Return("replay.json", nil).Times(1)

	players := []*recordingClient{one, two}
	for turn := 0; turn < minimal.MaxTurns; turn++ {
		player := players[turn%2]
		player.expect(protocol.MessageTypeMoveRequest)
		pick := 1
		if turn%2 == 0 {
			pick = 3
		}
		s.move(room, player, pick)
	}

	result := one.expect(protocol.MessageTypeGameResult).(*protocol.GameResult)
	s.Require().Equal([]protocol.Team{protocol.TeamOne}, result.Winners)
	s.Require().Len(result.Scores, 2)
	s.Require().Equal("player1", result.Scores[0].DisplayName)
	s.Require().Equal(protocol.ScoreCauseRegular, result.Scores[1].Cause)
	s.Require().Equal([]int{2, 15}, result.Scores[0].Values)

	two.expect(protocol.MessageTypeGameResult)
	left := two.expect(protocol.MessageTypeLeftGame).(*protocol.LeftGameEvent)
	s.Require().Equal(room.ID(), left.RoomID)

	s.Require().Equal(StatusOver, room.Status())
	s.Require().Equal(0, s.manager.Count())
	s.Require().Equal(float64(1), testutil.ToFloat64(s.metrics.GamesFinished.WithLabelValues(minimal.GameType)))

	replay := room.Replay()
	s.Require().Len(replay.States(), minimal.MaxTurns+1)
	s.Require().NotNil(replay.Result)
}

func (s *RoomSuite) TestBrokenReplayIsLogged() {
	room, _, _ := s.startGame()
	core, logs := zapobserver.New(zap.ErrorLevel)
	room.logger = zap.New(core)

	room.mutex.Lock()
	room.replay.AddState(protocol.State{GameType: minimal.GameType, Data: json.RawMessage("{broken")})
	room.mutex.Unlock()

	s.Require().Nil(room.Replay())
	s.Require().Equal(1, logs.FilterMessage("failed to copy replay").Len())
}

func (s *RoomSuite) TestMoveAfterGameOver() {
	room, one, _ := s.startGame()
	s.Require().NoError(room.Cancel())

	err := room.OnMove(one, &protocol.Move{Data: minimal.NewMove(1)})
	s.Require().ErrorIs(err, ErrGameNotRunning)
}

func (s *RoomSuite) TestRuleViolation() {
	room, one, two := s.startGame()
	one.expect(protocol.MessageTypeMoveRequest)

	// not requested from team two
	s.move(room, two, 2)

	errorMessage := one.expect(protocol.MessageTypeError).(*protocol.ErrorMessage)
	s.Require().Equal(protocol.ErrorCodeRuleViolation, errorMessage.Code)

	result := one.expect(protocol.MessageTypeGameResult).(*protocol.GameResult)
	s.Require().Equal([]protocol.Team{protocol.TeamOne}, result.Winners)
	score, ok := result.ScoreOf(protocol.TeamTwo)
	s.Require().True(ok)
	s.Require().Equal(protocol.ScoreCauseRuleViolation, score.Cause)
	s.Require().NotEmpty(score.Reason)
}

func (s *RoomSuite) TestInvalidMove() {
	room, one, two := s.startGame()
	one.expect(protocol.MessageTypeMoveRequest)

	s.move(room, one, minimal.MaxPick+1)

	result := two.expect(protocol.MessageTypeGameResult).(*protocol.GameResult)
	s.Require().Equal([]protocol.Team{protocol.TeamTwo}, result.Winners)
	score, _ := result.ScoreOf(protocol.TeamOne)
	s.Require().Equal(protocol.ScoreCauseRuleViolation, score.Cause)
}

func (s *RoomSuite) TestNotAPlayer() {
	room, _, _ := s.startGame()
	stranger := newRecordingClient(s.T())

	err := room.OnMove(stranger, &protocol.Move{Data: minimal.NewMove(1)})
	s.Require().ErrorIs(err, ErrNotAPlayer)
	s.Require().Equal(StatusActive, room.Status())
}

func (s *RoomSuite) TestTurnTimeout() {
	room, one, two := s.startGame()
	one.expect(protocol.MessageTypeMoveRequest)

	s.clock.BlockUntil(1)
	s.clock.Advance(minimal.New().TurnTimeout() + time.Second)

	result := two.expect(protocol.MessageTypeGameResult).(*protocol.GameResult)
	s.Require().Equal([]protocol.Team{protocol.TeamTwo}, result.Winners)
	score, _ := result.ScoreOf(protocol.TeamOne)
	s.Require().Equal(protocol.ScoreCauseHardTimeout, score.Cause)
	s.Require().Eventually(func() bool {
		return room.Status() == StatusOver
	}, time.Second, 10*time.Millisecond)
}

func (s *RoomSuite) TestMoveStopsTimer() {
	room, one, two := s.startGame()
	one.expect(protocol.MessageTypeMoveRequest)
	s.clock.BlockUntil(1)

	s.move(room, one, 2)
	two.expect(protocol.MessageTypeMoveRequest)

	// only the timer of team two is left
	s.clock.BlockUntil(1)
	s.clock.Advance(minimal.New().TurnTimeout() / 2)
	s.Require().Equal(StatusActive, room.Status())
}

func (s *RoomSuite) TestPlayerLeaves() {
	room, one, two := s.startGame()

	s.Require().True(room.RemoveClient(one))

	result := two.expect(protocol.MessageTypeGameResult).(*protocol.GameResult)
	s.Require().Equal([]protocol.Team{protocol.TeamTwo}, result.Winners)
	score, _ := result.ScoreOf(protocol.TeamOne)
	s.Require().Equal(protocol.ScoreCauseLeft, score.Cause)
	s.Require().Equal(0, s.manager.Count())
}

func (s *RoomSuite) TestCancel() {
	room, one, _ := s.startGame()
	observer := newRecordingClient(s.T())
	s.Require().NoError(room.Observe(observer))

	s.Require().NoError(room.Cancel())

	result := one.expect(protocol.MessageTypeGameResult).(*protocol.GameResult)
	s.Require().True(result.IsDraw())
	for _, score := range result.Scores {
		s.Require().Equal(protocol.ScoreCauseUnknown, score.Cause)
		s.Require().Equal([]int{0, 0}, score.Values)
	}
	observer.expect(protocol.MessageTypeGameResult)

	s.Require().ErrorIs(room.Cancel(), ErrGameNotRunning)
}

func (s *RoomSuite) TestObserveLateJoiner() {
	room, one, _ := s.startGame()
	one.expect(protocol.MessageTypeMoveRequest)
	s.move(room, one, 1)

	observer := newRecordingClient(s.T())
	s.Require().NoError(room.Observe(observer))

	memento := observer.expect(protocol.MessageTypeMemento).(*protocol.MementoEvent)
	s.Require().Equal(1, memento.State.Turn)
	s.Require().True(observer.empty())

	s.Require().True(room.RemoveClient(observer))
	s.Require().Equal(StatusActive, room.Status())
	s.Require().Equal(0, room.Info().Observers)
}

func (s *RoomSuite) TestPausedGame() {
	room, codes, err := s.manager.PrepareGame(&protocol.PrepareGameRequest{
		GameType: minimal.GameType,
		Pause:    true,
	})
	s.Require().NoError(err)
	s.Require().Len(codes, 2)

	observer := newRecordingClient(s.T())
	s.Require().NoError(room.Observe(observer))
	s.Require().True(observer.empty())

	one := newRecordingClient(s.T())
	two := newRecordingClient(s.T())
	_, err = s.manager.JoinPreparedGame(one, codes[0])
	s.Require().NoError(err)
	_, err = s.manager.JoinPreparedGame(two, codes[1])
	s.Require().NoError(err)

	observer.expect(protocol.MessageTypeMemento)
	paused := observer.expect(protocol.MessageTypeGamePaused).(*protocol.GamePausedEvent)
	s.Require().Equal(protocol.TeamOne, paused.NextTeam)

	one.expect(protocol.MessageTypeMemento)
	s.Require().True(one.empty())

	s.Require().NoError(room.Step(false))
	one.expect(protocol.MessageTypeMoveRequest)
	s.move(room, one, 2)

	memento := observer.expect(protocol.MessageTypeMemento).(*protocol.MementoEvent)
	s.Require().Equal(1, memento.State.Turn)
	observer.expect(protocol.MessageTypeGamePaused)
	two.expect(protocol.MessageTypeMemento)
	memento = two.expect(protocol.MessageTypeMemento).(*protocol.MementoEvent)
	s.Require().Equal(1, memento.State.Turn)
	s.Require().True(two.empty())

	s.Require().NoError(room.Pause(false))
	two.expect(protocol.MessageTypeMoveRequest)
	s.Require().ErrorIs(room.Step(false), ErrNotPaused)
}

func (s *RoomSuite) TestPauseDuringMove() {
	room, one, two := s.startGame()
	one.expect(protocol.MessageTypeMoveRequest)

	s.Require().NoError(room.Pause(true))
	s.Require().True(room.Paused())

	s.move(room, one, 1)
	two.expect(protocol.MessageTypeMemento)
	s.Require().True(two.empty())

	// forced step works on a running game too
	s.Require().NoError(room.Pause(false))
	two.expect(protocol.MessageTypeMoveRequest)
	s.Require().NoError(room.Step(true))
	s.Require().True(two.empty())
}

func (s *RoomSuite) TestRoomInfo() {
	room, _, _ := s.startGame()

	info := room.Info()
	s.Require().Equal(room.ID(), info.ID)
	s.Require().Equal(minimal.GameType, info.GameType)
	s.Require().Equal(StatusActive, info.Status)
	s.Require().Len(info.Slots, 2)
	for _, slot := range info.Slots {
		s.Require().True(slot.Connected)
		s.Require().False(slot.Reserved)
	}
}

func (s *RoomSuite) TestSendFailureIsIgnored() {
	ctrl := gomock.NewController(s.T())
	broken := mockgaming.NewMockClient(ctrl)
	broken.EXPECT().ID().Return("broken").AnyTimes()
	broken.EXPECT().Send(gomock.Any()).Return(errors.New("connection reset")).AnyTimes()
	two := newRecordingClient(s.T())

	room, err := s.manager.CreateAndJoinGame(broken, minimal.GameType)
	s.Require().NoError(err)
	s.Require().NoError(room.Join(two))

	two.expect(protocol.MessageTypeWelcome)
	s.Require().Equal(StatusActive, room.Status())
}

func (s *RoomSuite) TestMockPlayer() {
	ctrl := gomock.NewController(s.T())
	player := mockgaming.NewMockClient(ctrl)
	player.EXPECT().ID().Return("mock").AnyTimes()

	welcome := matchers.NewMessageMatcher(s.T(), protocol.MessageTypeWelcome)
	started := matchers.NewStateMatcher(s.T(), "", func(state protocol.State) bool {
		return state.Turn == 0
	})
	moveRequest := matchers.NewMessageMatcher(s.T(), protocol.MessageTypeMoveRequest)
	moved := matchers.NewStateMatcher(s.T(), "", func(state protocol.State) bool {
		return state.Turn == 1
	})

	player.EXPECT().Send(welcome).Return(nil).Times(1)
	player.EXPECT().Send(started).Return(nil).Times(1)
	player.EXPECT().Send(moveRequest).Return(nil).Times(1)
	player.EXPECT().Send(moved).Return(nil).Times(1)
	player.EXPECT().Send(gomock.Any()).Return(nil).AnyTimes()

	room, err := s.manager.CreateAndJoinGame(player, minimal.GameType)
	s.Require().NoError(err)
	s.Require().NoError(room.Join(newRecordingClient(s.T())))

	s.Require().Equal(protocol.TeamOne, welcome.WaitMessage().(*protocol.WelcomeMessage).Team)
	s.Require().Equal(protocol.TeamOne, started.WaitState().CurrentTeam)
	s.Require().NotNil(moveRequest.WaitMessage())

	err = room.OnMove(player, &protocol.Move{Data: minimal.NewMove(2)})
	s.Require().NoError(err)

	state := moved.WaitState()
	s.Require().Equal(protocol.TeamTwo, state.CurrentTeam)
	s.Require().JSONEq(`{"counter":2,"sums":{"ONE":2},"last":2}`, string(state.Data))
}
