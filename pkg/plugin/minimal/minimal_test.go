package minimal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/protocol"
)

func newStartedGame(t *testing.T) *Game {
	game := New().CreateGame().(*Game)

	team, err := game.AddPlayer()
	require.NoError(t, err)
	require.Equal(t, protocol.TeamOne, team)
	require.False(t, game.Ready())

	team, err = game.AddPlayer()
	require.NoError(t, err)
	require.Equal(t, protocol.TeamTwo, team)
	require.True(t, game.Ready())

	update, err := game.Start()
	require.NoError(t, err)
	require.False(t, update.GameOver())
	require.Equal(t, protocol.TeamOne, update.State.CurrentTeam)
	require.Equal(t, 0, update.State.Turn)

	return game
}

func TestTooManyPlayers(t *testing.T) {
	game := newStartedGame(t)
	_, err := game.AddPlayer()
	require.ErrorIs(t, err, plugin.ErrTooManyPlayers)
}

func TestStartRequiresPlayers(t *testing.T) {
	game := New().CreateGame()
	_, err := game.Start()
	require.Error(t, err)
}

func TestFullGame(t *testing.T) {
	game := newStartedGame(t)

	var update *plugin.Update
	var err error
	for turn := 0; turn < MaxTurns; turn++ {
		team := protocol.TeamOne
		pick := 3
		if turn%2 == 1 {
			team = protocol.TeamTwo
			pick = 1
		}
		update, err = game.Apply(team, NewMove(pick))
		require.NoError(t, err)
		require.Equal(t, turn+1, update.State.Turn)
		if turn < MaxTurns-1 {
			require.False(t, update.GameOver())
		}
	}

	require.True(t, update.GameOver())
	require.Equal(t, []protocol.Team{protocol.TeamOne}, update.Result.Winners)

	one, ok := update.Result.ScoreOf(protocol.TeamOne)
	require.True(t, ok)
	require.Equal(t, []int{winnerPoints, 15}, one.Values)

	two, ok := update.Result.ScoreOf(protocol.TeamTwo)
	require.True(t, ok)
	require.Equal(t, []int{0, 5}, two.Values)

	var data Data
	require.NoError(t, json.Unmarshal(update.State.Data, &data))
	require.Equal(t, 20, data.Counter)

	_, err = game.Apply(protocol.TeamOne, NewMove(1))
	require.Error(t, err)
}

func TestDraw(t *testing.T) {
	game := newStartedGame(t)

	var update *plugin.Update
	var err error
	team := protocol.TeamOne
	for turn := 0; turn < MaxTurns; turn++ {
		update, err = game.Apply(team, NewMove(2))
		require.NoError(t, err)
		team = team.Opponent()
	}

	require.True(t, update.GameOver())
	require.True(t, update.Result.IsDraw())
	for _, score := range update.Result.Scores {
		require.Equal(t, drawPoints, score.Values[0])
	}
}

func TestRuleViolations(t *testing.T) {
	game := newStartedGame(t)

	_, err := game.Apply(protocol.TeamTwo, NewMove(1))
	_, ok := plugin.IsRuleViolation(err)
	require.True(t, ok)

	_, err = game.Apply(protocol.TeamOne, NewMove(4))
	_, ok = plugin.IsRuleViolation(err)
	require.True(t, ok)

	_, err = game.Apply(protocol.TeamOne, json.RawMessage(`"nope"`))
	_, ok = plugin.IsRuleViolation(err)
	require.True(t, ok)

	require.Equal(t, 0, game.Snapshot().Turn)
}

func TestAbort(t *testing.T) {
	game := newStartedGame(t)

	_, err := game.Apply(protocol.TeamOne, NewMove(3))
	require.NoError(t, err)

	update := game.Abort(protocol.TeamOne, protocol.ScoreCauseLeft, "")
	require.True(t, update.GameOver())
	require.Equal(t, []protocol.Team{protocol.TeamTwo}, update.Result.Winners)

	one, ok := update.Result.ScoreOf(protocol.TeamOne)
	require.True(t, ok)
	require.Equal(t, protocol.ScoreCauseLeft, one.Cause)
	require.Equal(t, []int{0, 3}, one.Values)

	two, ok := update.Result.ScoreOf(protocol.TeamTwo)
	require.True(t, ok)
	require.Equal(t, protocol.ScoreCauseRegular, two.Cause)
	require.Equal(t, winnerPoints, two.Values[0])
}

func TestLoadState(t *testing.T) {
	source := newStartedGame(t)
	_, err := source.Apply(protocol.TeamOne, NewMove(2))
	require.NoError(t, err)
	_, err = source.Apply(protocol.TeamTwo, NewMove(3))
	require.NoError(t, err)
	_, err = source.Apply(protocol.TeamOne, NewMove(1))
	require.NoError(t, err)

	snapshot := source.Snapshot()

	target := New().CreateGame()
	require.NoError(t, target.LoadState(snapshot))
	require.Equal(t, snapshot, target.Snapshot())

	err = target.LoadState(protocol.State{GameType: "other"})
	require.Error(t, err)
}
