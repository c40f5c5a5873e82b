package websocket

import (
	"encoding/json"
	"time"

	"github.com/gomokuhub/gomoku-backend/internal/apperror"
	"github.com/gomokuhub/gomoku-backend/internal/pkg"
	"github.com/gomokuhub/gomoku-backend/internal/protocol"
)

// dispatch decodes one inbound message and routes it by type. Every inbound
// kind is matched here; anything else is INVALID_ACTION. This is the only
// layer allowed to catch an unexpected fault, which becomes SERVER_ERROR
// instead of a dropped process.
func (that *Server) dispatch(c *client, raw []byte) {
	log := that.logger.With("method", "dispatch")

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from handler panic", "panic", r)
			that.sendError(c, apperror.CodeServerError, "internal server error")
		}
	}()

	var msg protocol.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		that.sendError(c, apperror.CodeInvalidMessage, "malformed message")
		return
	}

	that.metrics.MessageReceived()

	switch msg.Type {
	case protocol.TypeCreateRoom:
		that.handleCreateRoom(c, &msg)
	case protocol.TypeJoinRoom:
		that.handleJoinRoom(c, &msg)
	case protocol.TypePlaceStone:
		that.handlePlaceStone(c, &msg)
	case protocol.TypeRequestUndo, protocol.TypeRespondUndo:
		// part of the wire contract but not acted upon yet
		playerID, _ := c.roomContext()
		log.Info("undo message ignored", "type", msg.Type, "playerID", playerID)
	case protocol.TypePing:
		if err := c.Send(protocol.Pong{Type: protocol.TypePong, Timestamp: time.Now().UnixMilli()}); err != nil {
			log.Error("failed to send pong", "error", err)
		}
	default:
		that.sendError(c, apperror.CodeInvalidAction, "unrecognized message type")
	}
}

func (that *Server) handleCreateRoom(c *client, msg *protocol.ClientMessage) {
	log := that.logger.With("method", "handleCreateRoom")

	playerID, roomID := c.roomContext()
	if roomID != "" {
		that.sendError(c, apperror.CodeInvalidAction, "already in a room")
		return
	}

	if playerID == "" {
		playerID = pkg.GeneratePlayerID()
	}

	gameRoom := that.manager.CreateRoom()

	role, err := gameRoom.Join(c, playerID, msg.PlayerName)
	if err != nil {
		log.Error("failed to seat creator", "roomID", gameRoom.Code(), "error", err)
		that.sendError(c, apperror.CodeOf(err), err.Error())
		return
	}

	that.manager.RegisterPlayer(playerID, gameRoom.Code())
	c.bindRoom(playerID, gameRoom.Code(), role)

	if err = c.Send(protocol.RoomCreated{
		Type:     protocol.TypeRoomCreated,
		RoomID:   gameRoom.Code(),
		PlayerID: playerID,
		Role:     role,
	}); err != nil {
		log.Error("failed to send room_created", "error", err)
	}

	log.Info("room created for player", "roomID", gameRoom.Code(), "playerID", playerID)
}

func (that *Server) handleJoinRoom(c *client, msg *protocol.ClientMessage) {
	log := that.logger.With("method", "handleJoinRoom")

	_, roomID := c.roomContext()
	if roomID != "" && roomID != msg.RoomID {
		that.sendError(c, apperror.CodeInvalidAction, "already in a room")
		return
	}

	playerID := msg.PlayerID
	if playerID == "" {
		playerID = pkg.GeneratePlayerID()
	}

	gameRoom, role, rejoined, err := that.manager.JoinRoom(msg.RoomID, playerID, msg.PlayerName, c)
	if err != nil {
		log.Error("failed to join room", "roomID", msg.RoomID, "error", err)
		that.sendError(c, apperror.CodeOf(err), err.Error())
		return
	}

	c.bindRoom(playerID, gameRoom.Code(), role)

	if rejoined {
		// a returning identity gets the full room state instead of a seat
		if err = c.Send(gameRoom.FullState()); err != nil {
			log.Error("failed to send full_state", "error", err)
		}
		return
	}

	if err = c.Send(protocol.JoinSuccess{
		Type:     protocol.TypeJoinSuccess,
		RoomID:   gameRoom.Code(),
		PlayerID: playerID,
		Role:     role,
	}); err != nil {
		log.Error("failed to send join_success", "error", err)
	}

	log.Info("player joined room", "roomID", gameRoom.Code(), "playerID", playerID)
}

func (that *Server) handlePlaceStone(c *client, msg *protocol.ClientMessage) {
	log := that.logger.With("method", "handlePlaceStone")

	playerID, roomID := c.roomContext()
	if playerID == "" || roomID == "" {
		that.sendError(c, apperror.CodeInvalidMessage, apperror.ErrNotInRoom.Error())
		return
	}

	if msg.Position == nil {
		that.sendError(c, apperror.CodeInvalidMessage, "position is required")
		return
	}

	gameRoom := that.manager.GetRoom(roomID)
	if gameRoom == nil {
		that.sendError(c, apperror.CodeRoomNotFound, apperror.ErrRoomNotFound.Error())
		return
	}

	if err := gameRoom.HandleMove(playerID, *msg.Position); err != nil {
		that.sendError(c, apperror.CodeOf(err), err.Error())
		return
	}

	log.Info("stone placed", "roomID", roomID, "playerID", playerID, "position", *msg.Position)
}

func (that *Server) sendError(c *client, code apperror.Code, message string) {
	if err := c.Send(protocol.Error{
		Type:    protocol.TypeError,
		Code:    code,
		Message: message,
	}); err != nil {
		that.logger.Error("failed to send error response", "code", code, "error", err)
	}
}
