package gaming

import (
	"github.com/six78/gamelobby/pkg/protocol"
)

//go:generate mockgen -source=client.go -destination=mock/client.go

// Client is a server side connection as seen by rooms.
// Send must not block.
type Client interface {
	ID() string
	Send(frame protocol.Frame) error
}
