package testcommon

import (
	"encoding/json"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/pkg/protocol"
)

type Suite struct {
	suite.Suite
	Logger *zap.Logger
}

func (s *Suite) SetupSuite() {
	s.Logger = SetupConfigLogger(s.T())
}

func (s *Suite) TearDownSuite() {
	_ = config.Logger.Sync()
}

func (s *Suite) FakeState(turn int) protocol.State {
	return protocol.State{
		GameType:    gofakeit.Word(),
		Turn:        turn,
		CurrentTeam: protocol.TeamOne,
		Data:        json.RawMessage(fmt.Sprintf(`{"counter":%d}`, gofakeit.IntRange(0, 100))),
	}
}

func (s *Suite) FakeReservationCode() protocol.ReservationCode {
	code, err := protocol.NewReservationCode()
	s.Require().NoError(err)
	return code
}
