package protocol

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const reservationCodeLength = 16

type RoomID string

func NewRoomID() RoomID {
	return RoomID(uuid.NewString())
}

func ParseRoomID(input string) (RoomID, error) {
	id, err := uuid.Parse(input)
	if err != nil {
		return "", errors.Wrap(err, "invalid room id")
	}
	return RoomID(id.String()), nil
}

func (id RoomID) String() string {
	return string(id)
}

func (id RoomID) Empty() bool {
	return id == ""
}

// ReservationCode: base58 encoded random bytes.
// Total expected length: 16 bytes before encoding.
type ReservationCode string

func NewReservationCode() (ReservationCode, error) {
	bytes := make([]byte, reservationCodeLength)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate reservation code")
	}
	return ReservationCode(base58.Encode(bytes)), nil
}

func ParseReservationCode(input string) (ReservationCode, error) {
	decoded, err := base58.Decode(input)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode reservation code")
	}
	if len(decoded) != reservationCodeLength {
		return "", errors.New("reservation code has unexpected length")
	}
	return ReservationCode(input), nil
}

func (c ReservationCode) String() string {
	return string(c)
}

type RequestID string

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (id RequestID) Empty() bool {
	return id == ""
}

type Team string

const (
	TeamOne Team = "ONE"
	TeamTwo Team = "TWO"
)

func (t Team) Opponent() Team {
	switch t {
	case TeamOne:
		return TeamTwo
	case TeamTwo:
		return TeamOne
	}
	return ""
}

func (t Team) Index() int {
	switch t {
	case TeamOne:
		return 0
	case TeamTwo:
		return 1
	}
	return -1
}
