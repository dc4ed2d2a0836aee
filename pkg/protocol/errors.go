package protocol

type ErrorCode string

const (
	ErrorCodeUnknownGameType     ErrorCode = "unknown_game_type"
	ErrorCodeRoomNotFound        ErrorCode = "room_not_found"
	ErrorCodeTooManyPlayers      ErrorCode = "too_many_players"
	ErrorCodeReservationNotFound ErrorCode = "reservation_not_found"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeMalformedRequest    ErrorCode = "malformed_request"
	ErrorCodeRuleViolation       ErrorCode = "rule_violation"
	ErrorCodeInternal            ErrorCode = "internal"
)

func NewErrorMessage(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{
		Code:    code,
		Message: message,
	}
}
