// Package protocol defines the wire message taxonomy for the duplex game
// connection: one closed variant set per direction, discriminated by "type".
package protocol

import (
	"github.com/gomokuhub/gomoku-backend/internal/apperror"
	"github.com/gomokuhub/gomoku-backend/internal/entity"
)

type MessageType string

// Inbound message kinds.
const (
	TypeCreateRoom  MessageType = "create_room"
	TypeJoinRoom    MessageType = "join_room"
	TypePlaceStone  MessageType = "place_stone"
	TypeRequestUndo MessageType = "request_undo"
	TypeRespondUndo MessageType = "respond_undo"
	TypePing        MessageType = "ping"
)

// Outbound message kinds.
const (
	TypeWelcome      MessageType = "welcome"
	TypeSystem       MessageType = "system"
	TypeRoomCreated  MessageType = "room_created"
	TypeJoinSuccess  MessageType = "join_success"
	TypeError        MessageType = "error"
	TypeGameStart    MessageType = "game_start"
	TypeStonePlaced  MessageType = "stone_placed"
	TypeGameOver     MessageType = "game_over"
	TypeFullState    MessageType = "full_state"
	TypeOpponentLeft MessageType = "opponent_left"
	TypePong         MessageType = "pong"
)

// WinReason values carried by game_over.
const (
	WinReasonFiveInRow   = "FIVE_IN_ROW"
	WinReasonResignation = "RESIGNATION"
)

// Opponent-left reasons.
const (
	LeftReasonDisconnected = "disconnected"
	LeftReasonLeft         = "left"
)

// ClientMessage is the single decoded shape of every inbound message; the
// dispatcher switches exhaustively on Type. A message without a type is
// invalid before any field is looked at.
type ClientMessage struct {
	Type       MessageType      `json:"type"`
	RoomID     string           `json:"room_id,omitempty"`
	PlayerID   string           `json:"player_id,omitempty"`
	PlayerName string           `json:"player_name,omitempty"`
	Position   *entity.Position `json:"position,omitempty"`
	Accept     bool             `json:"accept,omitempty"`
}

// ServerMessage is the closed set of outbound messages. Only types in this
// package satisfy it.
type ServerMessage interface {
	serverMessage()
}

type Welcome struct {
	Type      MessageType `json:"type"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
}

type System struct {
	Type      MessageType `json:"type"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
}

type RoomCreated struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"room_id"`
	PlayerID string      `json:"player_id"`
	Role     entity.Role `json:"role"`
}

type JoinSuccess struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"room_id"`
	PlayerID string      `json:"player_id"`
	Role     entity.Role `json:"role"`
}

type Error struct {
	Type    MessageType   `json:"type"`
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
}

type GameStart struct {
	Type        MessageType `json:"type"`
	BlackPlayer string      `json:"black_player"`
	WhitePlayer string      `json:"white_player"`
	CurrentTurn string      `json:"current_turn"`
}

type StonePlaced struct {
	Type     MessageType     `json:"type"`
	PlayerID string          `json:"player_id"`
	Position entity.Position `json:"position"`
	// NextTurn is null when the placement ended the game.
	NextTurn   *string `json:"next_turn"`
	BoardState string  `json:"board_state"`
}

type GameOver struct {
	Type         MessageType       `json:"type"`
	Winner       *string           `json:"winner"`
	WinReason    string            `json:"win_reason"`
	WinPositions []entity.Position `json:"win_positions,omitempty"`
}

type FullState struct {
	Type        MessageType     `json:"type"`
	CurrentTurn string          `json:"current_turn"`
	Board       [][]entity.Cell `json:"board"`
	MoveHistory []entity.Move   `json:"move_history"`
}

type OpponentLeft struct {
	Type   MessageType `json:"type"`
	Reason string      `json:"reason"`
}

type Pong struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
}

func (Welcome) serverMessage()      {}
func (System) serverMessage()       {}
func (RoomCreated) serverMessage()  {}
func (JoinSuccess) serverMessage()  {}
func (Error) serverMessage()        {}
func (GameStart) serverMessage()    {}
func (StonePlaced) serverMessage()  {}
func (GameOver) serverMessage()     {}
func (FullState) serverMessage()    {}
func (OpponentLeft) serverMessage() {}
func (Pong) serverMessage()         {}
