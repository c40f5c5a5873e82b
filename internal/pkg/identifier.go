package pkg

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 4
)

// GeneratePlayerID returns an opaque per-connection player identity.
func GeneratePlayerID() string {
	return "player_" + uuid.NewString()[:8]
}

// GenerateRoomCode returns a short, human-enterable room code. Uniqueness
// against the live registry is the caller's job.
func GenerateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}

	return string(code)
}
