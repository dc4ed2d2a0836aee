package protocol

import "encoding/json"

type MessageType string

const (
	MessageTypeAuthenticate     MessageType = "authenticate"
	MessageTypePrepareGame      MessageType = "prepare"
	MessageTypeGamePrepared     MessageType = "prepared"
	MessageTypeJoinRoom         MessageType = "join"
	MessageTypeJoinPreparedRoom MessageType = "joinPrepared"
	MessageTypeJoinedRoom       MessageType = "joined"
	MessageTypeLeftGame         MessageType = "left"
	MessageTypeFreeReservation  MessageType = "freeReservation"
	MessageTypeObservation      MessageType = "observe"
	MessageTypeObserved         MessageType = "observed"
	MessageTypeRoomPacket       MessageType = "room"
	MessageTypeMemento          MessageType = "memento"
	MessageTypeGamePaused       MessageType = "paused"
	MessageTypeGameResult       MessageType = "result"
	MessageTypeError            MessageType = "error"
	MessageTypeTestMode         MessageType = "testMode"
	MessageTypeTestModeResponse MessageType = "testModeResponse"
	MessageTypePauseGame        MessageType = "pause"
	MessageTypeStep             MessageType = "step"
	MessageTypeCancel           MessageType = "cancel"
	MessageTypeWelcome          MessageType = "welcome"
	MessageTypeMoveRequest      MessageType = "moveRequest"
	MessageTypeMove             MessageType = "move"
)

// Message is implemented by every variant that can travel inside a Frame.
// The set is closed: Unrecognized stands in for tags this build doesn't know.
type Message interface {
	Type() MessageType
	protocolMessage()
}

// Requests

type AuthenticateRequest struct {
	Password string `json:"password"`
}

type PrepareGameRequest struct {
	GameType string           `json:"gameType"`
	Slots    []SlotDescriptor `json:"slots"`
	Pause    bool             `json:"pause"`
}

type JoinRoomRequest struct {
	GameType string `json:"gameType"`
}

type JoinPreparedRoomRequest struct {
	ReservationCode ReservationCode `json:"reservationCode"`
}

type FreeReservationRequest struct {
	ReservationCode ReservationCode `json:"reservationCode"`
}

type ObservationRequest struct {
	RoomID RoomID `json:"roomId"`
}

type PauseGameRequest struct {
	RoomID RoomID `json:"roomId"`
	Pause  bool   `json:"pause"`
}

type StepRequest struct {
	RoomID RoomID `json:"roomId"`
	Forced bool   `json:"forced"`
}

type CancelRequest struct {
	RoomID RoomID `json:"roomId"`
}

type TestModeRequest struct {
	Enabled bool `json:"enabled"`
}

// Lobby-scoped responses and events

type GamePreparedResponse struct {
	RoomID       RoomID            `json:"roomId"`
	Reservations []ReservationCode `json:"reservations"`
}

type JoinedRoomResponse struct {
	RoomID RoomID `json:"roomId"`
	// Existing is true when the client was placed into a room that already existed.
	Existing bool `json:"existing"`
}

type LeftGameEvent struct {
	RoomID RoomID `json:"roomId"`
}

type ObservationResponse struct {
	RoomID RoomID `json:"roomId"`
}

type TestModeResponse struct {
	TestMode bool `json:"testMode"`
}

type ErrorMessage struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Room-scoped payloads, always wrapped in a RoomPacket on the wire.

type RoomPacket struct {
	RoomID RoomID
	Data   Message
}

type MementoEvent struct {
	State State `json:"state"`
}

type GamePausedEvent struct {
	NextTeam Team `json:"nextTeam"`
}

type WelcomeMessage struct {
	Team Team `json:"team"`
}

type MoveRequest struct{}

type Move struct {
	Data json.RawMessage `json:"data"`
}

// Unrecognized carries a frame whose tag is not part of this protocol version.
type Unrecognized struct {
	Tag MessageType
	Raw json.RawMessage
}

func (*AuthenticateRequest) Type() MessageType     { return MessageTypeAuthenticate }
func (*PrepareGameRequest) Type() MessageType      { return MessageTypePrepareGame }
func (*JoinRoomRequest) Type() MessageType         { return MessageTypeJoinRoom }
func (*JoinPreparedRoomRequest) Type() MessageType { return MessageTypeJoinPreparedRoom }
func (*FreeReservationRequest) Type() MessageType  { return MessageTypeFreeReservation }
func (*ObservationRequest) Type() MessageType      { return MessageTypeObservation }
func (*PauseGameRequest) Type() MessageType        { return MessageTypePauseGame }
func (*StepRequest) Type() MessageType             { return MessageTypeStep }
func (*CancelRequest) Type() MessageType           { return MessageTypeCancel }
func (*TestModeRequest) Type() MessageType         { return MessageTypeTestMode }
func (*GamePreparedResponse) Type() MessageType    { return MessageTypeGamePrepared }
func (*JoinedRoomResponse) Type() MessageType      { return MessageTypeJoinedRoom }
func (*LeftGameEvent) Type() MessageType           { return MessageTypeLeftGame }
func (*ObservationResponse) Type() MessageType     { return MessageTypeObserved }
func (*TestModeResponse) Type() MessageType        { return MessageTypeTestModeResponse }
func (*ErrorMessage) Type() MessageType            { return MessageTypeError }
func (*RoomPacket) Type() MessageType              { return MessageTypeRoomPacket }
func (*MementoEvent) Type() MessageType            { return MessageTypeMemento }
func (*GamePausedEvent) Type() MessageType         { return MessageTypeGamePaused }
func (*GameResult) Type() MessageType              { return MessageTypeGameResult }
func (*WelcomeMessage) Type() MessageType          { return MessageTypeWelcome }
func (*MoveRequest) Type() MessageType             { return MessageTypeMoveRequest }
func (*Move) Type() MessageType                    { return MessageTypeMove }
func (m *Unrecognized) Type() MessageType          { return m.Tag }

func (*AuthenticateRequest) protocolMessage()     {}
func (*PrepareGameRequest) protocolMessage()      {}
func (*JoinRoomRequest) protocolMessage()         {}
func (*JoinPreparedRoomRequest) protocolMessage() {}
func (*FreeReservationRequest) protocolMessage()  {}
func (*ObservationRequest) protocolMessage()      {}
func (*PauseGameRequest) protocolMessage()        {}
func (*StepRequest) protocolMessage()             {}
func (*CancelRequest) protocolMessage()           {}
func (*TestModeRequest) protocolMessage()         {}
func (*GamePreparedResponse) protocolMessage()    {}
func (*JoinedRoomResponse) protocolMessage()      {}
func (*LeftGameEvent) protocolMessage()           {}
func (*ObservationResponse) protocolMessage()     {}
func (*TestModeResponse) protocolMessage()        {}
func (*ErrorMessage) protocolMessage()            {}
func (*RoomPacket) protocolMessage()              {}
func (*MementoEvent) protocolMessage()            {}
func (*GamePausedEvent) protocolMessage()         {}
func (*GameResult) protocolMessage()              {}
func (*WelcomeMessage) protocolMessage()          {}
func (*MoveRequest) protocolMessage()             {}
func (*Move) protocolMessage()                    {}
func (*Unrecognized) protocolMessage()            {}

func (e *ErrorMessage) Error() string {
	return string(e.Code) + ": " + e.Message
}

// IsRoomScoped reports whether messages of this type must travel inside a RoomPacket.
func IsRoomScoped(t MessageType) bool {
	switch t {
	case MessageTypeMemento,
		MessageTypeGamePaused,
		MessageTypeGameResult,
		MessageTypeWelcome,
		MessageTypeMoveRequest,
		MessageTypeMove:
		return true
	}
	return false
}

func NewRoomPacket(roomID RoomID, data Message) *RoomPacket {
	return &RoomPacket{
		RoomID: roomID,
		Data:   data,
	}
}
