package observer

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/protocol"
)

// Controller is an Observer that also pauses and steps the game on the server.
type Controller struct {
	*Observer
	lobby Lobby

	// stepping is set while a requested step hasn't produced a state yet
	stepping atomic.Bool
}

var _ client.AdministrativeListener = (*Controller)(nil)
var _ client.HistoryListener = (*Controller)(nil)
var _ Game = (*Controller)(nil)

// NewController registers with the lobby and waits until the server accepts
// the observation. The lobby client must be authenticated as administrator.
func NewController(ctx context.Context, lobby Lobby, roomID protocol.RoomID, paused bool, opts ...Option) (*Controller, error) {
	c := &Controller{
		Observer: New(roomID, paused, opts...),
		lobby:    lobby,
	}
	c.logger = c.logger.Named("controller")

	lobby.AddHistoryListener(c)
	lobby.AddAdministrativeListener(c)

	_, err := lobby.ObserveAndWait(ctx, roomID)
	if err != nil {
		c.Detach()
		return nil, err
	}
	return c, nil
}

func (c *Controller) CanTogglePause() bool {
	return true
}

func (c *Controller) Pause() {
	c.Observer.Pause()
	c.sendPause(true)
}

func (c *Controller) Unpause() {
	c.sendPause(false)
	c.Observer.Unpause()
}

// Next asks the server for one more move when the paused cursor
// is already on the newest entry.
func (c *Controller) Next() {
	if c.IsPaused() && c.IsAtEnd() && !c.IsGameOver() {
		c.stepping.Store(true)
		err := c.lobby.Step(c.roomID, false)
		if err != nil {
			c.stepping.Store(false)
			c.logger.Error("failed to request step", zap.Error(err))
		}
		return
	}
	c.Observer.Next()
}

// OnNewState moves the cursor onto the state produced by a requested step.
func (c *Controller) OnNewState(roomID protocol.RoomID, state protocol.State) {
	c.Observer.OnNewState(roomID, state)
	if roomID == c.roomID && c.stepping.CompareAndSwap(true, false) {
		c.Observer.GoToLast()
	}
}

// OnGamePaused applies a pause announced by the server.
func (c *Controller) OnGamePaused(roomID protocol.RoomID, nextTeam protocol.Team) {
	if roomID != c.roomID {
		return
	}
	c.logger.Debug("game paused", zap.String("nextTeam", string(nextTeam)))
	c.setPaused(true)
}

func (c *Controller) sendPause(pause bool) {
	err := c.lobby.PauseGame(c.roomID, pause)
	if err != nil {
		c.logger.Error("failed to send pause request", zap.Bool("pause", pause), zap.Error(err))
	}
}

// Detach stops receiving room events.
func (c *Controller) Detach() {
	c.lobby.RemoveHistoryListener(c)
	c.lobby.RemoveAdministrativeListener(c)
}
