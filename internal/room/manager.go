package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gomokuhub/gomoku-backend/internal/apperror"
	"github.com/gomokuhub/gomoku-backend/internal/config"
	"github.com/gomokuhub/gomoku-backend/internal/entity"
	"github.com/gomokuhub/gomoku-backend/internal/monitor"
	"github.com/gomokuhub/gomoku-backend/internal/pkg"
	"github.com/gomokuhub/gomoku-backend/internal/protocol"
)

// Status is the derived view of a room: player count plus a phase computed
// from the started/ended flags, never stored redundantly.
type Status struct {
	Players int    `json:"players"`
	Status  string `json:"status"` // waiting | playing | ended
}

// Manager is the registry and lifecycle authority over all rooms. It is
// constructed once per process and injected into the protocol handler.
type Manager struct {
	logger  *slog.Logger
	conf    config.Game
	metrics *monitor.Metrics

	mu         sync.RWMutex
	rooms      map[string]*Room
	playerRoom map[string]string // identity -> room code, one active room per identity

	done     chan struct{}
	stopOnce sync.Once
}

func NewManager(logger *slog.Logger, conf config.Game, metrics *monitor.Metrics) *Manager {
	manager := &Manager{
		logger:     logger.With("component", "room-manager"),
		conf:       conf,
		metrics:    metrics,
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
		done:       make(chan struct{}),
	}

	go manager.reclaimLoop()

	return manager
}

// CreateRoom registers a new waiting room under a fresh unique code.
func (that *Manager) CreateRoom() *Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	code := that.uniqueCodeLocked()
	room := NewRoom(code, that.conf.BoardSize, that.logger, that.metrics)
	that.rooms[code] = room
	that.metrics.RoomOpened()
	that.logger.Info("room created", "roomID", code)

	return room
}

// JoinRoom seats playerID in the room named by code, or re-attaches the
// connection when the identity already holds a seat there (reconnect).
// The rejoined result tells the two cases apart.
func (that *Manager) JoinRoom(code, playerID, playerName string, conn Conn) (room *Room, role entity.Role, rejoined bool, err error) {
	room = that.GetRoom(code)
	if room == nil {
		return nil, "", false, apperror.ErrRoomNotFound
	}

	// one active room per identity; a seat elsewhere blocks this join
	that.mu.RLock()
	bound, known := that.playerRoom[playerID]
	that.mu.RUnlock()
	if known && bound != code {
		return nil, "", false, apperror.ErrAlreadyInRoom
	}

	if role, ok := room.Rebind(playerID, conn); ok {
		that.mu.Lock()
		that.playerRoom[playerID] = code
		that.mu.Unlock()

		return room, role, true, nil
	}

	role, err = room.Join(conn, playerID, playerName)
	if err != nil {
		return nil, "", false, err
	}

	that.mu.Lock()
	that.playerRoom[playerID] = code
	that.mu.Unlock()

	return room, role, false, nil
}

// RegisterPlayer records the identity->room mapping for a freshly created
// room's first seat.
func (that *Manager) RegisterPlayer(playerID, code string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.playerRoom[playerID] = code
}

func (that *Manager) GetRoom(code string) *Room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.rooms[code]
}

// HandleDisconnect records a player's departure: the room notifies the
// opponent and keeps the seat for a possible reconnect. An emptied room is
// re-checked after a short grace window before reclamation; a half-empty
// active game is forfeited after the longer disconnect grace.
func (that *Manager) HandleDisconnect(playerID string) {
	that.mu.Lock()
	code, ok := that.playerRoom[playerID]
	if !ok {
		that.mu.Unlock()
		return
	}
	delete(that.playerRoom, playerID)
	room := that.rooms[code]
	that.mu.Unlock()

	if room == nil {
		return
	}

	room.Detach(playerID, protocol.LeftReasonDisconnected)
	that.logger.Info("player disconnected", "playerID", playerID, "roomID", code)

	if room.ConnectedCount() == 0 {
		that.scheduleRemoval(code)
		return
	}

	if room.Started() && !room.Ended() {
		time.AfterFunc(that.conf.DisconnectGrace, func() {
			// the room may have been reclaimed while the timer ran
			if that.GetRoom(code) != room {
				return
			}
			room.ForfeitIfGone(playerID)
		})
	}
}

// RoomStatus returns the derived room view, or false for an unknown code.
func (that *Manager) RoomStatus(code string) (Status, bool) {
	room := that.GetRoom(code)
	if room == nil {
		return Status{}, false
	}

	status := "waiting"
	switch {
	case room.Ended():
		status = "ended"
	case room.Started():
		status = "playing"
	}

	return Status{Players: room.SeatedCount(), Status: status}, true
}

// RoomCount reports the number of live rooms.
func (that *Manager) RoomCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Shutdown destroys every room and stops the reclamation loop.
func (that *Manager) Shutdown() {
	that.stopOnce.Do(func() { close(that.done) })

	that.mu.Lock()
	codes := make([]string, 0, len(that.rooms))
	for code := range that.rooms {
		codes = append(codes, code)
	}
	that.mu.Unlock()

	for _, code := range codes {
		that.destroyRoom(code)
	}
}

// reclaimLoop destroys rooms whose last activity exceeds the idle timeout,
// regardless of occupancy, bounding growth from abandoned matches.
func (that *Manager) reclaimLoop() {
	ticker := time.NewTicker(that.conf.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			that.reclaimIdleRooms()
		case <-that.done:
			return
		}
	}
}

func (that *Manager) reclaimIdleRooms() {
	that.mu.RLock()
	var expired []string
	now := time.Now()
	for code, room := range that.rooms {
		if now.Sub(room.LastActivity()) > that.conf.IdleTimeout {
			expired = append(expired, code)
		}
	}
	that.mu.RUnlock()

	for _, code := range expired {
		that.logger.Info("reclaiming idle room", "roomID", code)
		that.destroyRoom(code)
	}
}

// scheduleRemoval re-checks an emptied room after the grace window so a
// reconnect in flight does not lose the room.
func (that *Manager) scheduleRemoval(code string) {
	time.AfterFunc(that.conf.EmptyRoomGrace, func() {
		room := that.GetRoom(code)
		if room == nil || room.ConnectedCount() > 0 {
			return
		}
		that.destroyRoom(code)
	})
}

func (that *Manager) destroyRoom(code string) {
	that.mu.Lock()
	room, exists := that.rooms[code]
	if !exists {
		that.mu.Unlock()
		return
	}
	delete(that.rooms, code)
	for playerID, roomCode := range that.playerRoom {
		if roomCode == code {
			delete(that.playerRoom, playerID)
		}
	}
	that.mu.Unlock()

	room.Cleanup()
	that.metrics.RoomClosed()
	that.logger.Info("room destroyed", "roomID", code)
}

// uniqueCodeLocked regenerates on collision against the live registry.
func (that *Manager) uniqueCodeLocked() string {
	for {
		code := pkg.GenerateRoomCode()
		if _, exists := that.rooms[code]; !exists {
			return code
		}
	}
}
