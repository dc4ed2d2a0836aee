package observer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/six78/gamelobby/pkg/client"
	"github.com/six78/gamelobby/pkg/protocol"
	"github.com/six78/gamelobby/pkg/storage"
)

// Entry is one observed room event: a state or an error.
type Entry struct {
	State *protocol.State
	Error *protocol.ErrorMessage
}

func (e Entry) IsError() bool {
	return e.Error != nil
}

// Game is what a viewer needs to browse and steer an observed game.
type Game interface {
	Next()
	Previous()
	GoToFirst()
	GoToLast()
	Pause()
	Unpause()
	Cancel()
	CanTogglePause() bool
	Snapshot() Update
	Subscribe() *Subscription
}

// Observer records the events of one room and keeps a cursor into them.
// While live the cursor follows the newest entry; while paused it stays put.
type Observer struct {
	roomID   protocol.RoomID
	replay   bool
	paused   bool
	gameOver bool
	history  []Entry
	cursor   cursor
	result   *protocol.GameResult

	events eventManager
	logger *zap.Logger
	mutex  sync.RWMutex
}

var _ client.HistoryListener = (*Observer)(nil)
var _ Game = (*Observer)(nil)

type Option func(*Observer)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Observer) {
		o.logger = logger
	}
}

func New(roomID protocol.RoomID, paused bool, opts ...Option) *Observer {
	o := &Observer{
		roomID: roomID,
		paused: paused,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("observer").With(zap.String("roomID", roomID.String()))
	return o
}

// NewReplay builds a paused observer of a finished game.
func NewReplay(replay *storage.Replay, opts ...Option) *Observer {
	o := New(replay.RoomID, true, opts...)
	o.replay = true
	o.gameOver = true
	o.result = replay.Result

	for _, frame := range replay.Frames {
		switch message := frame.Message.(type) {
		case *protocol.MementoEvent:
			state := message.State
			o.history = append(o.history, Entry{State: &state})
		case *protocol.ErrorMessage:
			o.history = append(o.history, Entry{Error: message})
		}
	}
	o.cursor.setRange(0, len(o.history)-1)
	return o
}

// Attach registers the observer with the lobby client and waits until the
// server accepts the observation. Observing needs an authenticated client.
func Attach(ctx context.Context, lobby Lobby, roomID protocol.RoomID, paused bool, opts ...Option) (*Observer, error) {
	o := New(roomID, paused, opts...)
	lobby.AddHistoryListener(o)
	_, err := lobby.ObserveAndWait(ctx, roomID)
	if err != nil {
		lobby.RemoveHistoryListener(o)
		return nil, err
	}
	return o, nil
}

func (o *Observer) RoomID() protocol.RoomID {
	return o.roomID
}

func (o *Observer) affects(roomID protocol.RoomID) bool {
	return o.replay || o.roomID == roomID
}

func (o *Observer) OnNewState(roomID protocol.RoomID, state protocol.State) {
	if !o.affects(roomID) {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.add(Entry{State: &state})
	o.notify(EventUpdated)
}

func (o *Observer) OnGameError(roomID protocol.RoomID, err *protocol.ErrorMessage) {
	if !o.affects(roomID) {
		return
	}
	o.logger.Debug("game error", zap.String("code", string(err.Code)), zap.String("message", err.Message))

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.add(Entry{Error: err})
	o.notify(EventError)
}

func (o *Observer) OnGameOver(roomID protocol.RoomID, result *protocol.GameResult) {
	if !o.affects(roomID) {
		return
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.result != nil {
		o.logger.Warn("received extra game result")
		return
	}
	o.gameOver = true
	o.result = result
	o.logger.Info("game over", zap.Any("winners", result.Winners))
	o.notify(EventUpdated)
}

func (o *Observer) add(entry Entry) {
	first := len(o.history) == 0
	o.history = append(o.history, entry)
	o.cursor.setRange(0, len(o.history)-1)
	if !o.paused || first {
		o.cursor.setPosition(len(o.history) - 1)
	}
}

func (o *Observer) Next() {
	o.move(func() bool { return o.cursor.increment() })
}

// Previous pauses a live observer before stepping back.
func (o *Observer) Previous() {
	o.move(func() bool {
		wasLive := !o.paused
		o.paused = true
		return o.cursor.decrement() || wasLive
	})
}

func (o *Observer) GoToFirst() {
	o.move(func() bool { return o.cursor.setPosition(0) })
}

func (o *Observer) GoToLast() {
	o.move(func() bool { return o.cursor.setPosition(len(o.history) - 1) })
}

func (o *Observer) Pause() {
	o.move(func() bool {
		o.paused = true
		return true
	})
}

// Unpause resumes following a live game. A replay advances one step instead.
func (o *Observer) Unpause() {
	o.move(func() bool {
		o.paused = false
		if o.replay {
			o.cursor.increment()
		} else {
			o.cursor.setPosition(len(o.history) - 1)
		}
		return true
	})
}

// Cancel stops following the game.
func (o *Observer) Cancel() {
	o.mutex.Lock()
	o.paused = true
	o.mutex.Unlock()
}

func (o *Observer) CanTogglePause() bool {
	return false
}

// move runs f under the lock and publishes when f reports a change.
func (o *Observer) move(f func() bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if f() {
		o.notify(EventUpdated)
	}
}

func (o *Observer) setPaused(paused bool) {
	o.move(func() bool {
		changed := o.paused != paused
		o.paused = paused
		return changed
	})
}

// CurrentState is the state at the cursor, or the closest one before it
// when the cursor is on an error.
func (o *Observer) CurrentState() *protocol.State {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.currentState()
}

func (o *Observer) currentState() *protocol.State {
	if len(o.history) == 0 {
		return nil
	}
	for i := o.cursor.position; i >= 0; i-- {
		if !o.history[i].IsError() {
			return o.history[i].State
		}
	}
	return nil
}

func (o *Observer) CurrentError() *protocol.ErrorMessage {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.currentError()
}

func (o *Observer) currentError() *protocol.ErrorMessage {
	if len(o.history) == 0 {
		return nil
	}
	return o.history[o.cursor.position].Error
}

func (o *Observer) IsAtStart() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.cursor.position == 0
}

func (o *Observer) IsAtEnd() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.cursor.position >= len(o.history)-1
}

func (o *Observer) HasNext() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.cursor.position+1 < len(o.history)
}

func (o *Observer) HasPrevious() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.cursor.position > 0
}

func (o *Observer) IsPaused() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.paused
}

func (o *Observer) IsReplay() bool {
	return o.replay
}

func (o *Observer) IsGameOver() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.replay || o.gameOver
}

func (o *Observer) Result() *protocol.GameResult {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.result
}

// History returns a copy of the recorded entries.
func (o *Observer) History() []Entry {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	history := make([]Entry, len(o.history))
	copy(history, o.history)
	return history
}

func (o *Observer) Position() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.cursor.position
}

func (o *Observer) Len() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.history)
}

func (o *Observer) Snapshot() Update {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.snapshot()
}

func (o *Observer) snapshot() Update {
	return Update{
		RoomID:   o.roomID,
		Position: o.cursor.position,
		Len:      len(o.history),
		Paused:   o.paused,
		Replay:   o.replay,
		GameOver: o.replay || o.gameOver,
		State:    o.currentState(),
		Error:    o.currentError(),
		Result:   o.result,
	}
}

func (o *Observer) Subscribe() *Subscription {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.events.subscribe()
}

// notify expects the mutex to be held.
func (o *Observer) notify(tag EventTag) {
	o.events.send(Event{Tag: tag, Update: o.snapshot()})
}

// Close ends every subscription and drops the history.
func (o *Observer) Close() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.events.close()
	o.history = nil
	o.cursor.setRange(0, 0)
}
