package gaming

import (
	"github.com/six78/gamelobby/pkg/protocol"
)

type Slot struct {
	Descriptor  protocol.SlotDescriptor
	Team        protocol.Team
	Reserved    bool
	Reservation protocol.ReservationCode
	client      Client
}

func (s *Slot) Bound() bool {
	return s.client != nil
}

func (s *Slot) Client() Client {
	return s.client
}

func (s *Slot) bind(client Client) {
	s.client = client
	s.Reserved = false
}

type SlotInfo struct {
	DisplayName string        `json:"displayName"`
	Team        protocol.Team `json:"team"`
	Reserved    bool          `json:"reserved"`
	Connected   bool          `json:"connected"`
}

func (s *Slot) info() SlotInfo {
	return SlotInfo{
		DisplayName: s.Descriptor.DisplayName,
		Team:        s.Team,
		Reserved:    s.Reserved,
		Connected:   s.Bound(),
	}
}
