package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomokuhub/gomoku-backend/internal/apperror"
	"github.com/gomokuhub/gomoku-backend/internal/config"
	"github.com/gomokuhub/gomoku-backend/internal/entity"
	"github.com/gomokuhub/gomoku-backend/internal/protocol"
)

func newTestManager(t *testing.T, conf config.Game) *Manager {
	t.Helper()

	if conf.BoardSize == 0 {
		conf.BoardSize = entity.DefaultBoardSize
	}
	if conf.CleanupInterval == 0 {
		conf.CleanupInterval = time.Hour
	}
	if conf.IdleTimeout == 0 {
		conf.IdleTimeout = time.Hour
	}
	if conf.EmptyRoomGrace == 0 {
		conf.EmptyRoomGrace = time.Hour
	}
	if conf.DisconnectGrace == 0 {
		conf.DisconnectGrace = time.Hour
	}

	manager := NewManager(testLogger(), conf, nil)
	t.Cleanup(manager.Shutdown)

	return manager
}

// seatRoom seats two players in a fresh room through the manager.
func seatRoom(t *testing.T, manager *Manager) (r *Room, black, white *fakeConn) {
	t.Helper()

	black, white = &fakeConn{}, &fakeConn{}

	r = manager.CreateRoom()
	role, err := r.Join(black, "alice", "Alice")
	require.NoError(t, err)
	require.Equal(t, entity.RoleBlack, role)
	manager.RegisterPlayer("alice", r.Code())

	_, role, rejoined, err := manager.JoinRoom(r.Code(), "bob", "Bob", white)
	require.NoError(t, err)
	require.False(t, rejoined)
	require.Equal(t, entity.RoleWhite, role)

	return r, black, white
}

func TestManager_CreateRoom(t *testing.T) {
	t.Run("Generated codes are short and unique", func(t *testing.T) {
		// Given: a fresh manager
		manager := newTestManager(t, config.Game{})

		// When: creating many rooms
		codes := make(map[string]struct{})
		for range 50 {
			r := manager.CreateRoom()
			require.Len(t, r.Code(), 4)
			codes[r.Code()] = struct{}{}
		}

		// Then: every code is distinct
		assert.Len(t, codes, 50)
		assert.Equal(t, 50, manager.RoomCount())
	})
}

func TestManager_JoinRoom(t *testing.T) {
	t.Run("Unknown code is rejected", func(t *testing.T) {
		// Given: a manager with no rooms
		manager := newTestManager(t, config.Game{})

		// When: joining a code that was never created
		_, _, _, err := manager.JoinRoom("ZZZZ", "alice", "Alice", &fakeConn{})

		// Then: the join fails with not-found
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("A full room rejects a third identity", func(t *testing.T) {
		// Given: a room with both seats taken
		manager := newTestManager(t, config.Game{})
		r, _, _ := seatRoom(t, manager)

		// When: a third player joins
		_, _, _, err := manager.JoinRoom(r.Code(), "carol", "Carol", &fakeConn{})

		// Then: the room is full
		assert.ErrorIs(t, err, apperror.ErrRoomFull)
	})

	t.Run("An identity seated elsewhere cannot take a second seat", func(t *testing.T) {
		// Given: alice seated in one room and a second room waiting
		manager := newTestManager(t, config.Game{})
		first, _, _ := seatRoom(t, manager)
		second := manager.CreateRoom()

		// When: alice tries to join the second room
		_, _, _, err := manager.JoinRoom(second.Code(), "alice", "Alice", &fakeConn{})

		// Then: the join is rejected and her original seat still re-attaches
		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)

		joined, role, rejoined, err := manager.JoinRoom(first.Code(), "alice", "Alice", &fakeConn{})
		require.NoError(t, err)
		assert.True(t, rejoined)
		assert.Equal(t, entity.RoleBlack, role)
		assert.Same(t, first, joined)
	})

	t.Run("A seated identity re-attaches instead of seating", func(t *testing.T) {
		// Given: a full room
		manager := newTestManager(t, config.Game{})
		r, _, _ := seatRoom(t, manager)

		// When: black joins again on a new connection
		joined, role, rejoined, err := manager.JoinRoom(r.Code(), "alice", "Alice", &fakeConn{})

		// Then: the seat is re-bound, not re-assigned
		require.NoError(t, err)
		assert.True(t, rejoined)
		assert.Equal(t, entity.RoleBlack, role)
		assert.Same(t, r, joined)
	})
}

func TestManager_RoomStatus(t *testing.T) {
	// Given: a manager and a fresh room
	manager := newTestManager(t, config.Game{})
	r := manager.CreateRoom()

	// Then: an unknown code reports nothing
	_, ok := manager.RoomStatus("ZZZZ")
	assert.False(t, ok)

	// Then: an empty room is waiting
	status, ok := manager.RoomStatus(r.Code())
	require.True(t, ok)
	assert.Equal(t, Status{Players: 0, Status: "waiting"}, status)

	// When: both seats fill
	_, err := r.Join(&fakeConn{}, "alice", "Alice")
	require.NoError(t, err)
	_, err = r.Join(&fakeConn{}, "bob", "Bob")
	require.NoError(t, err)

	// Then: the room is playing
	status, _ = manager.RoomStatus(r.Code())
	assert.Equal(t, Status{Players: 2, Status: "playing"}, status)

	// When: the game finishes
	playBlackWin(t, r)

	// Then: the room is ended, derived from the flags
	status, _ = manager.RoomStatus(r.Code())
	assert.Equal(t, Status{Players: 2, Status: "ended"}, status)
}

func TestManager_HandleDisconnect(t *testing.T) {
	t.Run("An emptied room is reclaimed after the grace window", func(t *testing.T) {
		// Given: a room whose only player disconnects
		manager := newTestManager(t, config.Game{EmptyRoomGrace: 20 * time.Millisecond})
		r := manager.CreateRoom()
		_, err := r.Join(&fakeConn{}, "alice", "Alice")
		require.NoError(t, err)
		manager.RegisterPlayer("alice", r.Code())

		// When: the player drops
		manager.HandleDisconnect("alice")

		// Then: the room survives the instant of the disconnect
		assert.NotNil(t, manager.GetRoom(r.Code()))

		// Then: it is destroyed once the grace window passes
		require.Eventually(t, func() bool {
			return manager.GetRoom(r.Code()) == nil
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("A rejoin within the grace window keeps the room", func(t *testing.T) {
		// Given: a room whose only player disconnects
		manager := newTestManager(t, config.Game{EmptyRoomGrace: 30 * time.Millisecond})
		r := manager.CreateRoom()
		_, err := r.Join(&fakeConn{}, "alice", "Alice")
		require.NoError(t, err)
		manager.RegisterPlayer("alice", r.Code())
		manager.HandleDisconnect("alice")

		// When: the player comes back before the re-check
		_, _, rejoined, err := manager.JoinRoom(r.Code(), "alice", "Alice", &fakeConn{})
		require.NoError(t, err)
		require.True(t, rejoined)

		// Then: the room is still there well after the grace window
		time.Sleep(80 * time.Millisecond)
		assert.NotNil(t, manager.GetRoom(r.Code()))
	})

	t.Run("An abandoned active game forfeits to the survivor", func(t *testing.T) {
		// Given: an active game
		manager := newTestManager(t, config.Game{DisconnectGrace: 20 * time.Millisecond})
		r, _, white := seatRoom(t, manager)

		// When: black disconnects and never returns
		manager.HandleDisconnect("alice")

		// Then: white is told immediately
		require.Len(t, white.byType(protocol.TypeOpponentLeft), 1)

		// Then: the game ends in white's favor after the grace window
		require.Eventually(t, r.Ended, time.Second, 5*time.Millisecond)

		overs := white.byType(protocol.TypeGameOver)
		require.Len(t, overs, 1)
		over, ok := overs[0].(protocol.GameOver)
		require.True(t, ok)
		require.NotNil(t, over.Winner)
		assert.Equal(t, "bob", *over.Winner)
		assert.Equal(t, protocol.WinReasonResignation, over.WinReason)
	})

	t.Run("A reconnect before the grace deadline avoids the forfeit", func(t *testing.T) {
		// Given: an active game where black drops
		manager := newTestManager(t, config.Game{DisconnectGrace: 40 * time.Millisecond})
		r, _, _ := seatRoom(t, manager)
		manager.HandleDisconnect("alice")

		// When: black rejoins in time
		_, _, rejoined, err := manager.JoinRoom(r.Code(), "alice", "Alice", &fakeConn{})
		require.NoError(t, err)
		require.True(t, rejoined)

		// Then: the game is still running after the deadline
		time.Sleep(100 * time.Millisecond)
		assert.False(t, r.Ended())
	})

	t.Run("A pending forfeit does not touch a reclaimed room", func(t *testing.T) {
		// Given: an active game where both players drop in turn
		manager := newTestManager(t, config.Game{
			EmptyRoomGrace:  10 * time.Millisecond,
			DisconnectGrace: 50 * time.Millisecond,
		})
		r, _, _ := seatRoom(t, manager)
		manager.HandleDisconnect("alice")
		manager.HandleDisconnect("bob")

		// When: the emptied room is reclaimed before the forfeit deadline
		require.Eventually(t, func() bool {
			return manager.GetRoom(r.Code()) == nil
		}, time.Second, 5*time.Millisecond)

		// Then: the forfeit timer finds no registered room and leaves the
		// orphan untouched
		time.Sleep(100 * time.Millisecond)
		assert.False(t, r.Ended())
	})

	t.Run("An unknown identity is a no-op", func(t *testing.T) {
		manager := newTestManager(t, config.Game{})

		manager.HandleDisconnect("nobody")

		assert.Equal(t, 0, manager.RoomCount())
	})
}

func TestManager_IdleReclamation(t *testing.T) {
	// Given: a manager with a tight idle threshold
	manager := newTestManager(t, config.Game{
		IdleTimeout:     30 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})

	// When: a populated room goes idle
	r, black, white := seatRoom(t, manager)

	// Then: it is destroyed regardless of occupancy
	require.Eventually(t, func() bool {
		return manager.GetRoom(r.Code()) == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, black.closedCount())
	assert.Equal(t, 1, white.closedCount())
}

func TestManager_Shutdown(t *testing.T) {
	// Given: a manager with live rooms
	manager := newTestManager(t, config.Game{})
	r, black, white := seatRoom(t, manager)

	// When: shutting down
	manager.Shutdown()

	// Then: every room is destroyed and connections closed
	assert.Equal(t, 0, manager.RoomCount())
	assert.Nil(t, manager.GetRoom(r.Code()))
	assert.Equal(t, 1, black.closedCount())
	assert.Equal(t, 1, white.closedCount())
}
