package apperror

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrInvalidMove      = errors.New("invalid move position")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameAlreadyEnded = errors.New("game has already ended")
	ErrGameNotStarted   = errors.New("game has not started")
	ErrSystemBusy       = errors.New("server is processing another move")
	ErrNotInRoom        = errors.New("player has not joined a room")
	ErrAlreadyInRoom    = errors.New("player is already in another room")
)
