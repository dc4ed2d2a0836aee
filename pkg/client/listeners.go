package client

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/six78/gamelobby/pkg/protocol"
)

type LobbyListener interface {
	OnNewState(roomID protocol.RoomID, state protocol.State)
	OnGameOver(roomID protocol.RoomID, result *protocol.GameResult)
	OnGamePaused(roomID protocol.RoomID, nextTeam protocol.Team)
	OnError(roomID protocol.RoomID, err *protocol.ErrorMessage)
	OnRoomMessage(roomID protocol.RoomID, message protocol.Message)
	OnGamePrepared(response *protocol.GamePreparedResponse)
	OnGameJoined(roomID protocol.RoomID)
	OnGameLeft(roomID protocol.RoomID)
	OnGameObserved(roomID protocol.RoomID)
	OnCustomMessage(message protocol.Message)
}

type HistoryListener interface {
	OnNewState(roomID protocol.RoomID, state protocol.State)
	OnGameOver(roomID protocol.RoomID, result *protocol.GameResult)
	OnGameError(roomID protocol.RoomID, err *protocol.ErrorMessage)
}

type AdministrativeListener interface {
	OnGamePaused(roomID protocol.RoomID, nextTeam protocol.Team)
}

// NopLobbyListener can be embedded to implement only some callbacks.
type NopLobbyListener struct{}

func (NopLobbyListener) OnNewState(protocol.RoomID, protocol.State)       {}
func (NopLobbyListener) OnGameOver(protocol.RoomID, *protocol.GameResult) {}
func (NopLobbyListener) OnGamePaused(protocol.RoomID, protocol.Team)      {}
func (NopLobbyListener) OnError(protocol.RoomID, *protocol.ErrorMessage)  {}
func (NopLobbyListener) OnRoomMessage(protocol.RoomID, protocol.Message)  {}
func (NopLobbyListener) OnGamePrepared(*protocol.GamePreparedResponse)    {}
func (NopLobbyListener) OnGameJoined(protocol.RoomID)                     {}
func (NopLobbyListener) OnGameLeft(protocol.RoomID)                       {}
func (NopLobbyListener) OnGameObserved(protocol.RoomID)                   {}
func (NopLobbyListener) OnCustomMessage(protocol.Message)                 {}

// listeners is copy-on-write: a snapshot taken for delivery
// is never changed by a concurrent add or remove.
type listeners[T comparable] struct {
	mutex sync.RWMutex
	items []T
}

func (l *listeners[T]) add(item T) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if slices.Contains(l.items, item) {
		return false
	}
	items := make([]T, 0, len(l.items)+1)
	items = append(items, l.items...)
	l.items = append(items, item)
	return true
}

func (l *listeners[T]) remove(item T) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	index := slices.Index(l.items, item)
	if index < 0 {
		return false
	}
	items := make([]T, 0, len(l.items)-1)
	items = append(items, l.items[:index]...)
	l.items = append(items, l.items[index+1:]...)
	return true
}

func (l *listeners[T]) snapshot() []T {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.items
}

func (l *listeners[T]) count() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.items)
}
