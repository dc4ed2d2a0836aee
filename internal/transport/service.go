package transport

import (
	"github.com/pkg/errors"

	"github.com/six78/gamelobby/pkg/protocol"
)

//go:generate mockgen -source=service.go -destination=mock/service.go

var (
	ErrClosed         = errors.New("connection closed")
	ErrMalformedFrame = errors.New("malformed frame")
)

// decodeFrame reports undecodable payloads as ErrMalformedFrame,
// the connection stays usable after such an error.
func decodeFrame(payload []byte) (protocol.Frame, error) {
	frame, err := protocol.DecodeFrame(payload)
	if err != nil {
		return protocol.Frame{}, errors.Wrap(ErrMalformedFrame, err.Error())
	}
	return frame, nil
}

// Connection carries protocol frames between a client and the server.
// Send may be called from any goroutine.
// Receive must be called from a single goroutine.
type Connection interface {
	Send(frame protocol.Frame) error
	Receive() (protocol.Frame, error)
	Close() error
	RemoteAddr() string
}
