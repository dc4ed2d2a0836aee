package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrNilMessage = errors.New("nil message")

// Frame is the unit exchanged over a connection.
// RequestID is set on requests that expect an answer and echoed on that answer.
type Frame struct {
	RequestID RequestID
	Message   Message
}

func NewFrame(message Message) Frame {
	return Frame{Message: message}
}

func (f Frame) MarshalJSON() ([]byte, error) {
	return EncodeFrame(f)
}

func (f *Frame) UnmarshalJSON(payload []byte) error {
	frame, err := DecodeFrame(payload)
	if err != nil {
		return err
	}
	*f = frame
	return nil
}

type envelope struct {
	Type      MessageType     `json:"type"`
	RequestID RequestID       `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type roomPacketPayload struct {
	RoomID RoomID          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

var constructors = map[MessageType]func() Message{
	MessageTypeAuthenticate:     func() Message { return &AuthenticateRequest{} },
	MessageTypePrepareGame:      func() Message { return &PrepareGameRequest{} },
	MessageTypeGamePrepared:     func() Message { return &GamePreparedResponse{} },
	MessageTypeJoinRoom:         func() Message { return &JoinRoomRequest{} },
	MessageTypeJoinPreparedRoom: func() Message { return &JoinPreparedRoomRequest{} },
	MessageTypeJoinedRoom:       func() Message { return &JoinedRoomResponse{} },
	MessageTypeLeftGame:         func() Message { return &LeftGameEvent{} },
	MessageTypeFreeReservation:  func() Message { return &FreeReservationRequest{} },
	MessageTypeObservation:      func() Message { return &ObservationRequest{} },
	MessageTypeObserved:         func() Message { return &ObservationResponse{} },
	MessageTypeRoomPacket:       func() Message { return &RoomPacket{} },
	MessageTypeMemento:          func() Message { return &MementoEvent{} },
	MessageTypeGamePaused:       func() Message { return &GamePausedEvent{} },
	MessageTypeGameResult:       func() Message { return &GameResult{} },
	MessageTypeError:            func() Message { return &ErrorMessage{} },
	MessageTypeTestMode:         func() Message { return &TestModeRequest{} },
	MessageTypeTestModeResponse: func() Message { return &TestModeResponse{} },
	MessageTypePauseGame:        func() Message { return &PauseGameRequest{} },
	MessageTypeStep:             func() Message { return &StepRequest{} },
	MessageTypeCancel:           func() Message { return &CancelRequest{} },
	MessageTypeWelcome:          func() Message { return &WelcomeMessage{} },
	MessageTypeMoveRequest:      func() Message { return &MoveRequest{} },
	MessageTypeMove:             func() Message { return &Move{} },
}

// Known reports whether the tag belongs to this protocol version.
func Known(t MessageType) bool {
	_, ok := constructors[t]
	return ok
}

func EncodeFrame(frame Frame) ([]byte, error) {
	env, err := toEnvelope(frame.RequestID, frame.Message)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func DecodeFrame(payload []byte) (Frame, error) {
	var env envelope
	err := json.Unmarshal(payload, &env)
	if err != nil {
		return Frame{}, errors.Wrap(err, "failed to unmarshal envelope")
	}

	message, err := fromEnvelope(&env)
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		RequestID: env.RequestID,
		Message:   message,
	}, nil
}

// MarshalMessage encodes a single message as an envelope without request id.
func MarshalMessage(message Message) ([]byte, error) {
	return EncodeFrame(Frame{Message: message})
}

func UnmarshalMessage(payload []byte) (Message, error) {
	frame, err := DecodeFrame(payload)
	if err != nil {
		return nil, err
	}
	return frame.Message, nil
}

func toEnvelope(requestID RequestID, message Message) (*envelope, error) {
	if message == nil {
		return nil, ErrNilMessage
	}

	if unknown, ok := message.(*Unrecognized); ok {
		return &envelope{
			Type:      unknown.Tag,
			RequestID: requestID,
			Data:      unknown.Raw,
		}, nil
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s message", message.Type())
	}

	return &envelope{
		Type:      message.Type(),
		RequestID: requestID,
		Data:      data,
	}, nil
}

func fromEnvelope(env *envelope) (Message, error) {
	if env.Type == "" {
		return nil, errors.New("envelope has no type")
	}

	constructor, ok := constructors[env.Type]
	if !ok {
		return &Unrecognized{
			Tag: env.Type,
			Raw: env.Data,
		}, nil
	}

	message := constructor()
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return message, nil
	}

	err := json.Unmarshal(env.Data, message)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s message", env.Type)
	}

	return message, nil
}

func (p *RoomPacket) MarshalJSON() ([]byte, error) {
	env, err := toEnvelope("", p.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal room packet data")
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	return json.Marshal(roomPacketPayload{
		RoomID: p.RoomID,
		Data:   data,
	})
}

func (p *RoomPacket) UnmarshalJSON(payload []byte) error {
	var raw roomPacketPayload
	err := json.Unmarshal(payload, &raw)
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal room packet")
	}

	var env envelope
	err = json.Unmarshal(raw.Data, &env)
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal room packet data")
	}

	data, err := fromEnvelope(&env)
	if err != nil {
		return err
	}

	p.RoomID = raw.RoomID
	p.Data = data
	return nil
}
