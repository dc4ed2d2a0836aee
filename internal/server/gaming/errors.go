package gaming

import (
	"github.com/pkg/errors"

	"github.com/six78/gamelobby/pkg/plugin"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrTooManyPlayers      = plugin.ErrTooManyPlayers
	ErrGameNotRunning      = errors.New("game is not running")
	ErrGameStarted         = errors.New("game already started")
	ErrNotAPlayer          = errors.New("client is not a player in this room")
	ErrNotPaused           = errors.New("game is not paused")
)
