package entity

// Move is one accepted placement. Records are append-only; a room's move
// history is never edited or truncated.
type Move struct {
	Player    string   `json:"player"`
	Position  Position `json:"position"`
	Timestamp int64    `json:"timestamp"` // wall clock, milliseconds
}
