package plugin

import (
	"encoding/json"
	"time"

	"github.com/six78/gamelobby/pkg/protocol"
)

// Plugin describes one game type the lobby can host.
type Plugin interface {
	ID() string
	Name() string
	MaxPlayers() int
	ScoreDefinition() protocol.ScoreDefinition
	// TurnTimeout of zero disables turn timeouts.
	TurnTimeout() time.Duration
	CreateGame() Game
}

// Game is a single running instance of a plugin.
// Calls are serialized by the owning room.
type Game interface {
	AddPlayer() (protocol.Team, error)
	Ready() bool
	Start() (*Update, error)
	Apply(team protocol.Team, move json.RawMessage) (*Update, error)
	Abort(team protocol.Team, cause protocol.ScoreCause, reason string) *Update
	Snapshot() protocol.State
	LoadState(state protocol.State) error
}

// Update is produced by every state transition.
// Result is set once the game is over.
type Update struct {
	State  protocol.State
	Result *protocol.GameResult
}

func (u *Update) GameOver() bool {
	return u != nil && u.Result != nil
}
