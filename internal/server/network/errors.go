package network

import (
	"github.com/pkg/errors"

	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/protocol"
)

var (
	ErrUnauthorized     = errors.New("administrator rights required")
	ErrWrongPassword    = errors.New("wrong password")
	ErrUnexpectedFrame  = errors.New("unexpected message")
	ErrUnexpectedPacket = errors.New("unexpected room message")
	ErrMissingRoom      = errors.New("room message outside a room packet")
)

// toErrorMessage maps a failed request to what the client is told.
func toErrorMessage(err error) *protocol.ErrorMessage {
	var unknown *plugin.UnknownGameTypeError
	switch {
	case errors.As(err, &unknown):
		return protocol.NewErrorMessage(protocol.ErrorCodeUnknownGameType, unknown.Error())
	case errors.Is(err, gaming.ErrRoomNotFound):
		return protocol.NewErrorMessage(protocol.ErrorCodeRoomNotFound, err.Error())
	case errors.Is(err, gaming.ErrTooManyPlayers):
		return protocol.NewErrorMessage(protocol.ErrorCodeTooManyPlayers, err.Error())
	case errors.Is(err, gaming.ErrReservationNotFound):
		return protocol.NewErrorMessage(protocol.ErrorCodeReservationNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrWrongPassword):
		return protocol.NewErrorMessage(protocol.ErrorCodeUnauthorized, err.Error())
	case errors.Is(err, ErrUnexpectedFrame),
		errors.Is(err, ErrUnexpectedPacket),
		errors.Is(err, ErrMissingRoom),
		errors.Is(err, gaming.ErrNotAPlayer),
		errors.Is(err, gaming.ErrNotPaused),
		errors.Is(err, gaming.ErrGameNotRunning),
		errors.Is(err, gaming.ErrGameStarted):
		return protocol.NewErrorMessage(protocol.ErrorCodeMalformedRequest, err.Error())
	}
	return protocol.NewErrorMessage(protocol.ErrorCodeInternal, err.Error())
}
