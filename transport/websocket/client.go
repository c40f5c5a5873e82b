package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gomokuhub/gomoku-backend/internal/entity"
	"github.com/gomokuhub/gomoku-backend/internal/protocol"
)

const writeWait = 10 * time.Second

// client is the per-connection context: the underlying socket plus the
// identity, room and seat assigned by room actions. Everything is cleared
// with the connection.
type client struct {
	conn *websocket.Conn

	// alive is flipped by pong receipt and consumed by the liveness sweep.
	alive atomic.Bool

	sendMu sync.Mutex

	// mu guards the room context: the read loop writes it, the liveness
	// sweep reads it.
	mu       sync.Mutex
	playerID string
	roomID   string
	role     entity.Role
}

func newClient(conn *websocket.Conn) *client {
	c := &client{conn: conn}
	c.alive.Store(true)

	conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	return c
}

// bindRoom records the identity, room and seat assigned by a room action.
func (that *client) bindRoom(playerID, roomID string, role entity.Role) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.playerID = playerID
	that.roomID = roomID
	that.role = role
}

// roomContext reports the bound identity and room, empty until bindRoom.
func (that *client) roomContext() (playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.playerID, that.roomID
}

// Send serializes writes; rooms and the handler may send concurrently.
func (that *client) Send(msg protocol.ServerMessage) error {
	that.sendMu.Lock()
	defer that.sendMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.conn.WriteJSON(msg)
}

func (that *client) Close() error {
	return that.conn.Close()
}

// ping sends a control ping; the sweep terminates clients that never pong.
func (that *client) ping() error {
	that.sendMu.Lock()
	defer that.sendMu.Unlock()

	return that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
