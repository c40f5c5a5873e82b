package room

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomokuhub/gomoku-backend/internal/apperror"
	"github.com/gomokuhub/gomoku-backend/internal/entity"
	"github.com/gomokuhub/gomoku-backend/internal/gomoku"
	"github.com/gomokuhub/gomoku-backend/internal/monitor"
	"github.com/gomokuhub/gomoku-backend/internal/protocol"
)

// Conn is the outbound half of a player's connection, owned by the room
// once the player is seated.
type Conn interface {
	Send(msg protocol.ServerMessage) error
	Close() error
}

// binding ties a player identity to a seat for the life of the room. The
// connection may be detached and re-attached on reconnect; the identity and
// seat never change.
type binding struct {
	player entity.Player
	conn   Conn
}

// Room is one match: two seats, a board, and an append-only move history.
// It moves through Waiting (0 or 1 seated) -> Active (2 seated) -> Ended and
// never leaves Ended.
type Room struct {
	code    string
	logger  *slog.Logger
	metrics *monitor.Metrics

	mu           sync.RWMutex
	board        *entity.Board
	black        *binding
	white        *binding
	moves        []entity.Move
	started      bool
	ended        bool
	lastActivity time.Time

	// moveBusy serializes HandleMove; a concurrent submission is rejected
	// outright, not queued.
	moveBusy atomic.Bool
}

func NewRoom(code string, boardSize int, logger *slog.Logger, metrics *monitor.Metrics) *Room {
	return &Room{
		code:         code,
		logger:       logger.With("component", "room", "roomID", code),
		metrics:      metrics,
		board:        entity.NewBoard(boardSize),
		lastActivity: time.Now(),
	}
}

func (that *Room) Code() string {
	return that.code
}

// Join assigns the first open seat, Black then White. Seating the second
// player starts the game and broadcasts game_start.
func (that *Room) Join(conn Conn, playerID, playerName string) (entity.Role, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case that.black == nil:
		that.black = &binding{
			player: entity.Player{ID: playerID, Name: playerName, Role: entity.RoleBlack},
			conn:   conn,
		}
		that.touchLocked()

		return entity.RoleBlack, nil
	case that.white == nil:
		that.white = &binding{
			player: entity.Player{ID: playerID, Name: playerName, Role: entity.RoleWhite},
			conn:   conn,
		}
		that.touchLocked()
		that.startGameLocked()

		return entity.RoleWhite, nil
	default:
		return "", apperror.ErrRoomFull
	}
}

// Rebind re-attaches a connection to an existing binding. It reports false
// when playerID holds no seat here.
func (that *Room) Rebind(playerID string, conn Conn) (entity.Role, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	seat := that.bindingOfLocked(playerID)
	if seat == nil {
		return "", false
	}

	seat.conn = conn
	that.touchLocked()
	that.logger.Info("player reconnected", "playerID", playerID)

	return seat.player.Role, true
}

// Detach drops a player's connection without freeing the seat and tells the
// opponent. The seat stays bound so the player can reconnect.
func (that *Room) Detach(playerID, reason string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	seat := that.bindingOfLocked(playerID)
	if seat == nil {
		return
	}

	seat.conn = nil

	if opponent := that.opponentOfLocked(seat); opponent != nil && opponent.conn != nil {
		that.sendTo(opponent, protocol.OpponentLeft{
			Type:   protocol.TypeOpponentLeft,
			Reason: reason,
		})
	}
}

// HandleMove is the room's central operation. At most one invocation is in
// flight per room; the guard is a flag, not a queue.
func (that *Room) HandleMove(playerID string, pos entity.Position) error {
	if !that.moveBusy.CompareAndSwap(false, true) {
		return apperror.ErrSystemBusy
	}
	defer that.moveBusy.Store(false)

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.started {
		return apperror.ErrGameNotStarted
	}

	if that.ended {
		return apperror.ErrGameAlreadyEnded
	}

	mover := that.turnHolderLocked()
	if mover == nil || mover.player.ID != playerID {
		return apperror.ErrNotYourTurn
	}

	if !that.board.PlaceStone(pos, mover.player.Role.Stone()) {
		return apperror.ErrInvalidMove
	}

	that.moves = append(that.moves, entity.Move{
		Player:    playerID,
		Position:  pos,
		Timestamp: time.Now().UnixMilli(),
	})
	that.metrics.MoveApplied()

	win := gomoku.CheckWin(that.board.Snapshot(), pos)

	var nextTurn *string
	if win == nil {
		id := that.opponentOfLocked(mover).player.ID
		nextTurn = &id
	}

	that.broadcastLocked(protocol.StonePlaced{
		Type:       protocol.TypeStonePlaced,
		PlayerID:   playerID,
		Position:   pos,
		NextTurn:   nextTurn,
		BoardState: that.board.CompactState(),
	})

	if win != nil {
		winnerID := mover.player.ID
		that.endGameLocked(protocol.GameOver{
			Type:         protocol.TypeGameOver,
			Winner:       &winnerID,
			WinReason:    protocol.WinReasonFiveInRow,
			WinPositions: win.Positions,
		})
	}

	that.touchLocked()

	return nil
}

// ForfeitIfGone ends an active game in the remaining player's favor when
// playerID is still disconnected. Called by the manager after the
// disconnect grace window. It reports whether the game was forfeited.
func (that *Room) ForfeitIfGone(playerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.started || that.ended {
		return false
	}

	seat := that.bindingOfLocked(playerID)
	if seat == nil || seat.conn != nil {
		return false
	}

	opponent := that.opponentOfLocked(seat)
	if opponent == nil {
		return false
	}

	winnerID := opponent.player.ID
	that.logger.Info("forfeiting game after disconnect grace", "playerID", playerID, "winner", winnerID)
	that.endGameLocked(protocol.GameOver{
		Type:      protocol.TypeGameOver,
		Winner:    &winnerID,
		WinReason: protocol.WinReasonResignation,
	})
	that.touchLocked()

	return true
}

// FullState returns everything a reconnecting participant needs to resync.
func (that *Room) FullState() protocol.FullState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var currentTurn string
	if holder := that.turnHolderLocked(); holder != nil {
		currentTurn = holder.player.ID
	}

	history := make([]entity.Move, len(that.moves))
	copy(history, that.moves)

	return protocol.FullState{
		Type:        protocol.TypeFullState,
		CurrentTurn: currentTurn,
		Board:       that.board.Snapshot(),
		MoveHistory: history,
	}
}

// Broadcast sends a message to both seats' live connections.
func (that *Room) Broadcast(msg protocol.ServerMessage) {
	that.mu.RLock()
	defer that.mu.RUnlock()
	that.broadcastLocked(msg)
}

// Cleanup closes both seats' connections. Idempotent.
func (that *Room) Cleanup() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.cleanupLocked()
}

func (that *Room) Started() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.started
}

func (that *Room) Ended() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.ended
}

// SeatedCount reports taken seats, not live connections.
func (that *Room) SeatedCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	count := 0
	if that.black != nil {
		count++
	}
	if that.white != nil {
		count++
	}

	return count
}

// ConnectedCount reports seats with a live connection.
func (that *Room) ConnectedCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	count := 0
	for _, seat := range []*binding{that.black, that.white} {
		if seat != nil && seat.conn != nil {
			count++
		}
	}

	return count
}

func (that *Room) LastActivity() time.Time {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.lastActivity
}

func (that *Room) startGameLocked() {
	that.started = true
	that.broadcastLocked(protocol.GameStart{
		Type:        protocol.TypeGameStart,
		BlackPlayer: that.black.player.Name,
		WhitePlayer: that.white.player.Name,
		CurrentTurn: that.black.player.ID,
	})
	that.logger.Info("game started", "black", that.black.player.ID, "white", that.white.player.ID)
}

func (that *Room) endGameLocked(msg protocol.GameOver) {
	that.broadcastLocked(msg)
	that.ended = true
	that.metrics.GameFinished()
	that.cleanupLocked()
}

// turnHolderLocked derives the turn from move-history parity: Black moves
// first, then strict alternation. There is no stored "current turn" field
// that could desync from the history.
func (that *Room) turnHolderLocked() *binding {
	if !that.started || that.ended {
		return nil
	}

	if len(that.moves)%2 == 0 {
		return that.black
	}

	return that.white
}

func (that *Room) bindingOfLocked(playerID string) *binding {
	if that.black != nil && that.black.player.ID == playerID {
		return that.black
	}
	if that.white != nil && that.white.player.ID == playerID {
		return that.white
	}

	return nil
}

func (that *Room) opponentOfLocked(seat *binding) *binding {
	if seat == that.black {
		return that.white
	}

	return that.black
}

func (that *Room) broadcastLocked(msg protocol.ServerMessage) {
	for _, seat := range []*binding{that.black, that.white} {
		if seat == nil || seat.conn == nil {
			continue
		}
		that.sendTo(seat, msg)
	}
}

func (that *Room) sendTo(seat *binding, msg protocol.ServerMessage) {
	if err := seat.conn.Send(msg); err != nil {
		that.logger.Error("failed to send message", "playerID", seat.player.ID, "error", err)
	}
}

// cleanupLocked detaches and closes every live connection. Safe to call
// more than once.
func (that *Room) cleanupLocked() {
	for _, seat := range []*binding{that.black, that.white} {
		if seat == nil || seat.conn == nil {
			continue
		}
		if err := seat.conn.Close(); err != nil {
			that.logger.Error("failed to close connection", "playerID", seat.player.ID, "error", err)
		}
		seat.conn = nil
	}
}

func (that *Room) touchLocked() {
	that.lastActivity = time.Now()
}
