package gaming

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/protocol"
	"github.com/six78/gamelobby/pkg/storage"
)

type Status int

const (
	StatusCreated Status = iota
	StatusActive
	StatusOver
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusActive:
		return "active"
	case StatusOver:
		return "over"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Room binds one game instance to its players and observers.
// All state is guarded by mutex. Frames are sent while holding it,
// so every client sees room events in order.
type Room struct {
	id         protocol.RoomID
	plugin     plugin.Plugin
	game       plugin.Game
	definition protocol.ScoreDefinition

	prepared bool
	paused   bool
	status   Status
	slots    []*Slot
	// observers in subscription order
	observers []Client

	lastState *protocol.State
	result    *protocol.GameResult
	replay    *storage.Replay

	// awaiting is the team a MoveRequest was sent to, empty when no move is expected
	awaiting  protocol.Team
	moveSeq   int
	turnTimer clockwork.Timer
	closed    bool

	clock       clockwork.Clock
	logger      *zap.Logger
	storage     storage.Service
	saveReplays bool
	metrics     *Metrics
	onClose     func(room *Room)
	onRestore   func(room *Room, code protocol.ReservationCode)

	mutex sync.Mutex
}

type RoomInfo struct {
	ID        protocol.RoomID `json:"id"`
	GameType  string          `json:"gameType"`
	Status    Status          `json:"status"`
	Prepared  bool            `json:"prepared"`
	Paused    bool            `json:"paused"`
	Turn      int             `json:"turn"`
	Slots     []SlotInfo      `json:"slots"`
	Observers int             `json:"observers"`
}

func newRoom(id protocol.RoomID, p plugin.Plugin, prepared bool, m *Manager) *Room {
	return &Room{
		id:          id,
		plugin:      p,
		game:        p.CreateGame(),
		definition:  p.ScoreDefinition(),
		prepared:    prepared,
		status:      StatusCreated,
		replay:      storage.NewReplay(id, p.ID()),
		clock:       m.clock,
		logger:      m.logger.With(zap.String("roomID", id.String()), zap.String("gameType", p.ID())),
		storage:     m.storage,
		saveReplays: m.saveReplays,
		metrics:     m.metrics,
		onClose:     m.Remove,
		onRestore:   m.restoreReservation,
	}
}

func (r *Room) ID() protocol.RoomID {
	return r.id
}

func (r *Room) GameType() string {
	return r.plugin.ID()
}

func (r *Room) Prepared() bool {
	return r.prepared
}

func (r *Room) Status() Status {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.status
}

func (r *Room) Paused() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.paused
}

func (r *Room) Result() *protocol.GameResult {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.result
}

// Slots returns a copy of the slot table.
func (r *Room) Slots() []Slot {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	slots := make([]Slot, 0, len(r.slots))
	for _, slot := range r.slots {
		slots = append(slots, *slot)
	}
	return slots
}

func (r *Room) Info() RoomInfo {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	info := RoomInfo{
		ID:        r.id,
		GameType:  r.plugin.ID(),
		Status:    r.status,
		Prepared:  r.prepared,
		Paused:    r.paused,
		Slots:     make([]SlotInfo, 0, len(r.slots)),
		Observers: len(r.observers),
	}
	if r.lastState != nil {
		info.Turn = r.lastState.Turn
	}
	for _, slot := range r.slots {
		info.Slots = append(info.Slots, slot.info())
	}
	return info
}

// withLock runs f under the room mutex. When f finishes the game,
// the room is closed after the mutex is released.
func (r *Room) withLock(f func() error) error {
	r.mutex.Lock()
	err := f()
	closing := r.status == StatusOver && !r.closed
	if closing {
		r.closed = true
	}
	r.mutex.Unlock()

	if closing {
		r.close()
	}
	return err
}

// Join adds a client to an ad-hoc room.
func (r *Room) Join(client Client) error {
	return r.withLock(func() error {
		if r.prepared || r.status != StatusCreated {
			return ErrTooManyPlayers
		}
		if r.slotOf(client) != nil {
			return nil
		}

		for _, slot := range r.slots {
			if !slot.Bound() {
				slot.bind(client)
				r.logger.Info("client joined free slot", zap.String("clientID", client.ID()))
				return r.maybeStart()
			}
		}

		if len(r.slots) >= r.plugin.MaxPlayers() {
			return ErrTooManyPlayers
		}

		team, err := r.game.AddPlayer()
		if err != nil {
			return err
		}

		slot := &Slot{
			Descriptor: protocol.SlotDescriptor{
				DisplayName: fmt.Sprintf("player%d", len(r.slots)+1),
				CanTimeout:  true,
			},
			Team: team,
		}
		slot.bind(client)
		r.slots = append(r.slots, slot)

		r.logger.Info("client joined", zap.String("clientID", client.ID()), zap.String("team", string(team)))
		return r.maybeStart()
	})
}

// OpenSlots creates one slot per descriptor in a prepared room.
func (r *Room) OpenSlots(descriptors []protocol.SlotDescriptor) error {
	return r.withLock(func() error {
		if r.status != StatusCreated {
			return ErrGameStarted
		}
		if len(r.slots)+len(descriptors) > r.plugin.MaxPlayers() {
			return ErrTooManyPlayers
		}
		for _, descriptor := range descriptors {
			team, err := r.game.AddPlayer()
			if err != nil {
				return err
			}
			r.slots = append(r.slots, &Slot{
				Descriptor: descriptor,
				Team:       team,
			})
			if descriptor.ShouldBePaused {
				r.paused = true
			}
		}
		return nil
	})
}

// ReserveAllSlots mints a reservation code for every open slot.
func (r *Room) ReserveAllSlots() ([]protocol.ReservationCode, error) {
	var codes []protocol.ReservationCode
	err := r.withLock(func() error {
		for _, slot := range r.slots {
			if slot.Bound() || slot.Reserved {
				continue
			}
			code, err := protocol.NewReservationCode()
			if err != nil {
				return err
			}
			slot.Reserved = true
			slot.Reservation = code
			codes = append(codes, code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// ClaimSlot binds the client to the slot reserved with code.
func (r *Room) ClaimSlot(code protocol.ReservationCode, client Client) error {
	return r.withLock(func() error {
		slot := r.reservedSlot(code)
		if slot == nil {
			return ErrReservationNotFound
		}
		if r.status != StatusCreated {
			return ErrGameStarted
		}
		slot.bind(client)
		r.logger.Info("reservation redeemed",
			zap.String("clientID", client.ID()),
			zap.String("slot", slot.Descriptor.DisplayName))
		return r.maybeStart()
	})
}

// ReleaseReservation makes code unusable. The game is not affected.
func (r *Room) ReleaseReservation(code protocol.ReservationCode) bool {
	released := false
	_ = r.withLock(func() error {
		slot := r.reservedSlot(code)
		if slot != nil {
			slot.Reserved = false
			released = true
		}
		return nil
	})
	return released
}

// Observe subscribes the client to room events and sends what it missed.
func (r *Room) Observe(client Client) error {
	return r.withLock(func() error {
		if !slices.ContainsFunc(r.observers, func(c Client) bool { return c.ID() == client.ID() }) {
			r.observers = append(r.observers, client)
		}
		if r.lastState != nil {
			r.send(client, &protocol.MementoEvent{State: *r.lastState})
		}
		switch {
		case r.status == StatusOver && r.result != nil:
			r.send(client, r.result)
		case r.status == StatusActive && r.paused && r.awaiting == "":
			r.send(client, &protocol.GamePausedEvent{NextTeam: r.currentTeam()})
		}
		return nil
	})
}

// OnMove applies a move sent by a player.
// A move the rules reject ends the sender's participation.
func (r *Room) OnMove(client Client, move *protocol.Move) error {
	return r.withLock(func() error {
		if r.status != StatusActive {
			return ErrGameNotRunning
		}
		slot := r.slotOf(client)
		if slot == nil {
			return ErrNotAPlayer
		}

		var update *plugin.Update
		var err error
		if r.awaiting != slot.Team {
			err = plugin.NewRuleViolation("no move was requested from %s", slot.Team)
		} else {
			r.stopTurnTimer()
			r.awaiting = ""
			update, err = r.game.Apply(slot.Team, move.Data)
		}

		if violation, ok := plugin.IsRuleViolation(err); ok {
			r.logger.Info("rule violation",
				zap.String("team", string(slot.Team)),
				zap.String("reason", violation.Reason))
			errorMessage := protocol.NewErrorMessage(protocol.ErrorCodeRuleViolation, violation.Reason)
			r.replay.AddError(errorMessage)
			r.broadcast(errorMessage)
			r.handleUpdate(r.game.Abort(slot.Team, protocol.ScoreCauseRuleViolation, violation.Reason))
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to apply move")
		}

		r.handleUpdate(update)
		return nil
	})
}

func (r *Room) Pause(paused bool) error {
	return r.withLock(func() error {
		if r.status == StatusOver {
			return ErrGameNotRunning
		}
		if r.paused == paused {
			return nil
		}
		r.paused = paused
		r.logger.Info("pause changed", zap.Bool("paused", paused))

		if r.status != StatusActive || r.awaiting != "" {
			// takes effect after the pending move
			return nil
		}
		if paused {
			r.broadcastObservers(&protocol.GamePausedEvent{NextTeam: r.currentTeam()})
			return nil
		}
		r.requestMove()
		return nil
	})
}

// Step requests a single move from the current team of a paused game.
func (r *Room) Step(forced bool) error {
	return r.withLock(func() error {
		if r.status != StatusActive {
			return ErrGameNotRunning
		}
		if !r.paused && !forced {
			return ErrNotPaused
		}
		if r.awaiting != "" {
			return nil
		}
		r.sendMoveRequest()
		return nil
	})
}

// Cancel ends the game without a winner.
func (r *Room) Cancel() error {
	return r.withLock(func() error {
		if r.status == StatusOver {
			return ErrGameNotRunning
		}
		result := &protocol.GameResult{
			Definition: r.definition,
		}
		for _, slot := range r.slots {
			result.Scores = append(result.Scores, protocol.PlayerScore{
				Team:   slot.Team,
				Cause:  protocol.ScoreCauseUnknown,
				Reason: "game cancelled",
				Values: make([]int, len(r.definition)),
			})
		}
		r.finish(result)
		return nil
	})
}

// RemoveClient is called when a client disconnects.
// A player leaving a running game loses it.
func (r *Room) RemoveClient(client Client) bool {
	affected := false
	var restored protocol.ReservationCode
	defer func() {
		if restored != "" && r.onRestore != nil {
			r.onRestore(r, restored)
		}
	}()
	_ = r.withLock(func() error {
		index := slices.IndexFunc(r.observers, func(c Client) bool { return c.ID() == client.ID() })
		if index >= 0 {
			r.observers = slices.Delete(r.observers, index, index+1)
			affected = true
		}

		slot := r.slotOf(client)
		if slot == nil {
			return nil
		}
		affected = true
		slot.client = nil

		switch r.status {
		case StatusCreated:
			if r.prepared && slot.Reservation != "" {
				slot.Reserved = true
				restored = slot.Reservation
			}
			r.logger.Info("player left before start", zap.String("clientID", client.ID()))
		case StatusActive:
			r.logger.Info("player left", zap.String("clientID", client.ID()))
			r.stopTurnTimer()
			r.awaiting = ""
			r.handleUpdate(r.game.Abort(slot.Team, protocol.ScoreCauseLeft, "left the game"))
		}
		return nil
	})
	return affected
}

// LoadState seeds the game before it starts.
func (r *Room) LoadState(state protocol.State) error {
	return r.withLock(func() error {
		if r.status != StatusCreated {
			return ErrGameStarted
		}
		err := r.game.LoadState(state)
		if err != nil {
			return errors.Wrap(err, "failed to load state")
		}
		r.logger.Info("state loaded", zap.Int("turn", state.Turn))
		return nil
	})
}

func (r *Room) setPaused(paused bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.paused = paused
}

// Everything below expects the mutex to be held.

func (r *Room) slotOf(client Client) *Slot {
	for _, slot := range r.slots {
		if slot.Bound() && slot.client.ID() == client.ID() {
			return slot
		}
	}
	return nil
}

func (r *Room) slotOfTeam(team protocol.Team) *Slot {
	for _, slot := range r.slots {
		if slot.Team == team {
			return slot
		}
	}
	return nil
}

func (r *Room) reservedSlot(code protocol.ReservationCode) *Slot {
	for _, slot := range r.slots {
		if slot.Reserved && slot.Reservation == code {
			return slot
		}
	}
	return nil
}

func (r *Room) currentTeam() protocol.Team {
	if r.lastState == nil {
		return ""
	}
	return r.lastState.CurrentTeam
}

func (r *Room) maybeStart() error {
	if r.status != StatusCreated || !r.game.Ready() {
		return nil
	}
	for _, slot := range r.slots {
		if !slot.Bound() {
			return nil
		}
	}

	update, err := r.game.Start()
	if err != nil {
		return errors.Wrap(err, "failed to start game")
	}

	r.status = StatusActive
	r.logger.Info("game started", zap.Bool("paused", r.paused))

	for _, slot := range r.slots {
		r.send(slot.client, &protocol.WelcomeMessage{Team: slot.Team})
	}

	r.handleUpdate(update)
	return nil
}

func (r *Room) handleUpdate(update *plugin.Update) {
	if update == nil {
		return
	}

	state := update.State
	r.lastState = &state
	r.replay.AddState(state)
	r.broadcast(&protocol.MementoEvent{State: state})

	if update.GameOver() {
		r.finish(update.Result)
		return
	}

	r.requestMove()
}

func (r *Room) requestMove() {
	if r.paused {
		r.broadcastObservers(&protocol.GamePausedEvent{NextTeam: r.currentTeam()})
		return
	}
	r.sendMoveRequest()
}

func (r *Room) sendMoveRequest() {
	team := r.currentTeam()
	slot := r.slotOfTeam(team)
	if slot == nil || !slot.Bound() {
		r.logger.Error("no player for current team", zap.String("team", string(team)))
		return
	}

	r.awaiting = team
	r.moveSeq++
	r.send(slot.client, &protocol.MoveRequest{})
	r.startTurnTimer(slot)
}

func (r *Room) startTurnTimer(slot *Slot) {
	timeout := r.plugin.TurnTimeout()
	if timeout <= 0 || !slot.Descriptor.CanTimeout {
		return
	}

	seq := r.moveSeq
	team := slot.Team
	r.turnTimer = r.clock.AfterFunc(timeout, func() {
		_ = r.withLock(func() error {
			if r.status != StatusActive || r.moveSeq != seq || r.awaiting != team {
				return nil
			}
			r.logger.Info("turn timeout", zap.String("team", string(team)))
			r.awaiting = ""
			r.turnTimer = nil
			r.handleUpdate(r.game.Abort(team, protocol.ScoreCauseHardTimeout, "no move within "+timeout.String()))
			return nil
		})
	})
}

func (r *Room) stopTurnTimer() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

func (r *Room) finish(result *protocol.GameResult) {
	r.stopTurnTimer()
	r.awaiting = ""
	r.status = StatusOver

	for i := range result.Scores {
		if slot := r.slotOfTeam(result.Scores[i].Team); slot != nil {
			result.Scores[i].DisplayName = slot.Descriptor.DisplayName
		}
	}
	if result.Definition == nil {
		result.Definition = r.definition
	}

	r.result = result
	r.replay.Result = result
	r.broadcast(result)

	for _, slot := range r.slots {
		if slot.Bound() {
			r.sendLobby(slot.client, &protocol.LeftGameEvent{RoomID: r.id})
		}
	}

	r.logger.Info("game over", zap.Any("winners", result.Winners))
}

// close runs once, without the mutex, after the game is over.
func (r *Room) close() {
	if r.metrics != nil {
		r.metrics.GamesFinished.WithLabelValues(r.plugin.ID()).Inc()
	}

	if r.saveReplays && r.storage != nil {
		path, err := r.storage.SaveReplay(r.replay)
		if err != nil {
			r.logger.Error("failed to save replay", zap.Error(err))
		} else {
			r.logger.Info("replay saved", zap.String("path", path))
		}
	}

	if r.onClose != nil {
		r.onClose(r)
	}
}

func (r *Room) send(client Client, message protocol.Message) {
	r.sendLobby(client, protocol.NewRoomPacket(r.id, message))
}

func (r *Room) sendLobby(client Client, message protocol.Message) {
	err := client.Send(protocol.NewFrame(message))
	if err != nil {
		r.logger.Warn("failed to send message",
			zap.String("clientID", client.ID()),
			zap.String("type", string(message.Type())),
			zap.Error(err))
	}
}

// broadcast sends to every bound player and observer, each client once.
func (r *Room) broadcast(message protocol.Message) {
	sent := make(map[string]struct{}, len(r.slots)+len(r.observers))
	for _, slot := range r.slots {
		if !slot.Bound() {
			continue
		}
		sent[slot.client.ID()] = struct{}{}
		r.send(slot.client, message)
	}
	for _, observer := range r.observers {
		if _, ok := sent[observer.ID()]; ok {
			continue
		}
		sent[observer.ID()] = struct{}{}
		r.send(observer, message)
	}
}

func (r *Room) broadcastObservers(message protocol.Message) {
	for _, observer := range r.observers {
		r.send(observer, message)
	}
}

// Replay returns a copy of what was recorded so far.
func (r *Room) Replay() *storage.Replay {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	payload, err := json.Marshal(r.replay)
	if err != nil {
		r.logger.Error("failed to copy replay", zap.Error(err))
		return nil
	}
	var replay storage.Replay
	if err := json.Unmarshal(payload, &replay); err != nil {
		r.logger.Error("failed to copy replay", zap.Error(err))
		return nil
	}
	return &replay
}
