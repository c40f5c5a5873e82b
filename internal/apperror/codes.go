package apperror

import "errors"

// Code is the machine-readable error discriminator carried by outbound
// error messages.
type Code string

const (
	CodeRoomNotFound     Code = "ROOM_NOT_FOUND"
	CodeRoomFull         Code = "ROOM_FULL"
	CodeInvalidMove      Code = "INVALID_MOVE"
	CodeNotYourTurn      Code = "NOT_YOUR_TURN"
	CodeGameAlreadyEnded Code = "GAME_ALREADY_ENDED"
	CodeGameNotStarted   Code = "GAME_NOT_STARTED"
	CodeSystemBusy       Code = "SYSTEM_BUSY"
	CodeInvalidMessage   Code = "INVALID_MESSAGE"
	CodeInvalidAction    Code = "INVALID_ACTION"
	CodeServerError      Code = "SERVER_ERROR"
	CodeUnknownError     Code = "UNKNOWN_ERROR"
)

// CodeOf maps an error returned across the room boundary to its wire code.
// Unrecognized errors fall back to UNKNOWN_ERROR so internal state never
// leaks to a client.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, ErrInvalidMove):
		return CodeInvalidMove
	case errors.Is(err, ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, ErrGameAlreadyEnded):
		return CodeGameAlreadyEnded
	case errors.Is(err, ErrGameNotStarted):
		return CodeGameNotStarted
	case errors.Is(err, ErrSystemBusy):
		return CodeSystemBusy
	case errors.Is(err, ErrNotInRoom):
		return CodeInvalidMessage
	case errors.Is(err, ErrAlreadyInRoom):
		return CodeInvalidAction
	default:
		return CodeUnknownError
	}
}
