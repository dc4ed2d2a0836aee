package observer

import (
	"context"

	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/protocol"
)

//go:generate mockgen -source=lobby.go -destination=mock/lobby.go

// Lobby is the part of client.LobbyClient used to observe and control rooms.
type Lobby interface {
	ObserveAndWait(ctx context.Context, roomID protocol.RoomID) (*protocol.ObservationResponse, error)
	PauseGame(roomID protocol.RoomID, pause bool) error
	Step(roomID protocol.RoomID, forced bool) error
	AddHistoryListener(l client.HistoryListener)
	RemoveHistoryListener(l client.HistoryListener)
	AddAdministrativeListener(l client.AdministrativeListener)
	RemoveAdministrativeListener(l client.AdministrativeListener)
}

var _ Lobby = (*client.LobbyClient)(nil)
