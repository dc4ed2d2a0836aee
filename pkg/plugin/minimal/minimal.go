// Package minimal is the smallest game the lobby can host.
// Two teams take turns adding 1, 2 or 3 to a shared counter.
// After MaxTurns moves the team with the higher sum wins.
package minimal

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/protocol"
)

const (
	GameType    = "minimal"
	MaxPlayers  = 2
	MaxTurns    = 10
	MinPick     = 1
	MaxPick     = 3
	turnTimeout = 10 * time.Second
)

const (
	winnerPoints = 2
	drawPoints   = 1
)

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return GameType
}

func (p *Plugin) Name() string {
	return "Minimal"
}

func (p *Plugin) MaxPlayers() int {
	return MaxPlayers
}

func (p *Plugin) ScoreDefinition() protocol.ScoreDefinition {
	return protocol.ScoreDefinition{
		{Name: "winner", Aggregation: protocol.ScoreAggregationSum, RelevantForRanking: true},
		{Name: "sum", Aggregation: protocol.ScoreAggregationAverage, RelevantForRanking: true},
	}
}

func (p *Plugin) TurnTimeout() time.Duration {
	return turnTimeout
}

func (p *Plugin) CreateGame() plugin.Game {
	return &Game{
		sums: map[protocol.Team]int{},
	}
}

// Data is the plugin specific part of protocol.State.
type Data struct {
	Counter int                   `json:"counter"`
	Sums    map[protocol.Team]int `json:"sums"`
	Last    int                   `json:"last,omitempty"`
}

// Move is the payload of protocol.Move for this game.
type Move struct {
	Pick int `json:"pick"`
}

func NewMove(pick int) json.RawMessage {
	payload, _ := json.Marshal(Move{Pick: pick})
	return payload
}

type Game struct {
	players []protocol.Team
	started bool
	over    bool
	turn    int
	current protocol.Team
	counter int
	last    int
	sums    map[protocol.Team]int
}

var teams = []protocol.Team{protocol.TeamOne, protocol.TeamTwo}

func (g *Game) AddPlayer() (protocol.Team, error) {
	if len(g.players) >= MaxPlayers {
		return "", plugin.ErrTooManyPlayers
	}
	team := teams[len(g.players)]
	g.players = append(g.players, team)
	return team, nil
}

func (g *Game) Ready() bool {
	return len(g.players) == MaxPlayers
}

func (g *Game) Start() (*plugin.Update, error) {
	if !g.Ready() {
		return nil, errors.New("not enough players")
	}
	if g.started {
		return nil, errors.New("game already started")
	}
	g.started = true
	if g.current == "" {
		g.current = protocol.TeamOne
	}
	return g.update(), nil
}

func (g *Game) Apply(team protocol.Team, payload json.RawMessage) (*plugin.Update, error) {
	if !g.started || g.over {
		return nil, errors.New("game is not running")
	}
	if team != g.current {
		return nil, plugin.NewRuleViolation("it is not %s's turn", team)
	}

	var move Move
	err := json.Unmarshal(payload, &move)
	if err != nil {
		return nil, plugin.NewRuleViolation("malformed move: %s", err)
	}
	if move.Pick < MinPick || move.Pick > MaxPick {
		return nil, plugin.NewRuleViolation("pick %d is out of range %d..%d", move.Pick, MinPick, MaxPick)
	}

	g.counter += move.Pick
	g.sums[team] += move.Pick
	g.last = move.Pick
	g.turn++
	g.current = team.Opponent()

	if g.turn >= MaxTurns {
		g.over = true
		update := g.update()
		update.Result = g.regularResult()
		return update, nil
	}

	return g.update(), nil
}

// Abort ends the game because of the given team.
// The other team wins regardless of the sums.
func (g *Game) Abort(team protocol.Team, cause protocol.ScoreCause, reason string) *plugin.Update {
	g.over = true
	update := g.update()
	update.Result = &protocol.GameResult{
		Definition: New().ScoreDefinition(),
		Winners:    []protocol.Team{team.Opponent()},
	}
	for _, t := range teams {
		score := protocol.PlayerScore{
			Team:   t,
			Cause:  protocol.ScoreCauseRegular,
			Values: []int{winnerPoints, g.sums[t]},
		}
		if t == team {
			score.Cause = cause
			score.Reason = reason
			score.Values[0] = 0
		}
		update.Result.Scores = append(update.Result.Scores, score)
	}
	return update
}

func (g *Game) Snapshot() protocol.State {
	data, _ := json.Marshal(Data{
		Counter: g.counter,
		Sums:    g.sums,
		Last:    g.last,
	})
	return protocol.State{
		GameType:    GameType,
		Turn:        g.turn,
		CurrentTeam: g.current,
		Data:        data,
	}
}

func (g *Game) LoadState(state protocol.State) error {
	if state.GameType != GameType {
		return errors.Errorf("state of %s can't be loaded into %s", state.GameType, GameType)
	}
	if g.started {
		return errors.New("game already started")
	}

	var data Data
	err := json.Unmarshal(state.Data, &data)
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal state data")
	}

	g.turn = state.Turn
	g.current = state.CurrentTeam
	g.counter = data.Counter
	g.last = data.Last
	g.sums = map[protocol.Team]int{}
	for team, sum := range data.Sums {
		g.sums[team] = sum
	}
	return nil
}

func (g *Game) update() *plugin.Update {
	return &plugin.Update{
		State: g.Snapshot(),
	}
}

func (g *Game) regularResult() *protocol.GameResult {
	one, two := g.sums[protocol.TeamOne], g.sums[protocol.TeamTwo]

	result := &protocol.GameResult{
		Definition: New().ScoreDefinition(),
	}

	points := map[protocol.Team]int{
		protocol.TeamOne: drawPoints,
		protocol.TeamTwo: drawPoints,
	}
	switch {
	case one > two:
		result.Winners = []protocol.Team{protocol.TeamOne}
	case two > one:
		result.Winners = []protocol.Team{protocol.TeamTwo}
	}
	for _, winner := range result.Winners {
		points[winner] = winnerPoints
		points[winner.Opponent()] = 0
	}

	for _, t := range teams {
		result.Scores = append(result.Scores, protocol.PlayerScore{
			Team:   t,
			Cause:  protocol.ScoreCauseRegular,
			Values: []int{points[t], g.sums[t]},
		})
	}
	return result
}
