package storage

import (
	"github.com/six78/gamelobby/pkg/protocol"
)

// Replay is the recorded history of one room.
// Frames hold mementos and room errors in the order they were sent.
type Replay struct {
	RoomID   protocol.RoomID      `json:"roomId"`
	GameType string               `json:"gameType"`
	Frames   []protocol.Frame     `json:"frames"`
	Result   *protocol.GameResult `json:"result,omitempty"`
}

func NewReplay(roomID protocol.RoomID, gameType string) *Replay {
	return &Replay{
		RoomID:   roomID,
		GameType: gameType,
		Frames:   make([]protocol.Frame, 0, 16),
	}
}

func (r *Replay) AddState(state protocol.State) {
	r.Frames = append(r.Frames, protocol.NewFrame(&protocol.MementoEvent{State: state}))
}

func (r *Replay) AddError(err *protocol.ErrorMessage) {
	r.Frames = append(r.Frames, protocol.NewFrame(err))
}

// States returns the recorded states, skipping errors.
func (r *Replay) States() []protocol.State {
	states := make([]protocol.State, 0, len(r.Frames))
	for _, frame := range r.Frames {
		if memento, ok := frame.Message.(*protocol.MementoEvent); ok {
			states = append(states, memento.State)
		}
	}
	return states
}
