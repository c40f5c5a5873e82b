package entity

import "strings"

const DefaultBoardSize = 15

// Cell is the state of a single board intersection.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

// Position is a 0-indexed (row, column) board coordinate. It marshals as a
// two-element JSON array, which is the wire format for stone positions.
type Position [2]int

func (that Position) Row() int { return that[0] }
func (that Position) Col() int { return that[1] }

// Board owns the grid state and the most recent placement. It knows nothing
// about turn order; whose turn it is belongs to the room.
type Board struct {
	size     int
	grid     [][]Cell
	lastMove *Position
}

func NewBoard(size int) *Board {
	if size <= 0 {
		size = DefaultBoardSize
	}

	board := &Board{size: size}
	board.Reset()

	return board
}

func (that *Board) Size() int {
	return that.size
}

// PlaceStone sets pos to stone and records it as the last move. It returns
// false without mutating anything if pos is out of bounds or occupied.
func (that *Board) PlaceStone(pos Position, stone Cell) bool {
	if stone == CellEmpty || !that.InBounds(pos) {
		return false
	}

	if that.grid[pos.Row()][pos.Col()] != CellEmpty {
		return false
	}

	that.grid[pos.Row()][pos.Col()] = stone
	that.lastMove = &pos

	return true
}

func (that *Board) InBounds(pos Position) bool {
	return pos.Row() >= 0 && pos.Row() < that.size && pos.Col() >= 0 && pos.Col() < that.size
}

// Snapshot returns a deep copy of the grid; callers cannot mutate board
// state through it.
func (that *Board) Snapshot() [][]Cell {
	grid := make([][]Cell, that.size)
	for i, row := range that.grid {
		grid[i] = make([]Cell, that.size)
		copy(grid[i], row)
	}

	return grid
}

// LastMove reports the most recent successful placement, if any.
func (that *Board) LastMove() (Position, bool) {
	if that.lastMove == nil {
		return Position{}, false
	}

	return *that.lastMove, true
}

// Reset clears the grid to all-empty. Used only at room destruction or reuse
// boundaries, never mid-game.
func (that *Board) Reset() {
	grid := make([][]Cell, that.size)
	for i := range grid {
		grid[i] = make([]Cell, that.size)
	}

	that.grid = grid
	that.lastMove = nil
}

// CompactState encodes the grid as one digit string per row, rows joined by
// "|". Broadcast payloads carry this instead of the full 2-D structure.
func (that *Board) CompactState() string {
	var sb strings.Builder
	sb.Grow(that.size*that.size + that.size)

	for i, row := range that.grid {
		if i > 0 {
			sb.WriteByte('|')
		}
		for _, cell := range row {
			sb.WriteByte('0' + byte(cell))
		}
	}

	return sb.String()
}
