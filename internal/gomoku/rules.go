// Package gomoku holds the pure win-detection rules. It operates on board
// snapshots and never mutates game state.
package gomoku

import "github.com/gomokuhub/gomoku-backend/internal/entity"

// WinningCount is the run length that ends the game.
const WinningCount = 5

// direction is a unit step along one of the four undirected line axes.
type direction struct {
	dr, dc int
}

var directions = [4]direction{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // main diagonal
	{1, -1}, // anti diagonal
}

// WinResult names the winning stone and the exact five coordinates that
// complete the line, ordered along its axis.
type WinResult struct {
	Winner    entity.Cell
	Positions []entity.Position
}

// CheckWin reports whether the stone just placed at lastMove completes a run
// of at least five. It only scans the four lines through lastMove, so a call
// is O(run length), never a full-board rescan. The caller guarantees
// lastMove was just populated by a successful placement.
func CheckWin(grid [][]entity.Cell, lastMove entity.Position) *WinResult {
	if !inBounds(grid, lastMove) {
		return nil
	}

	stone := grid[lastMove.Row()][lastMove.Col()]
	if stone == entity.CellEmpty {
		return nil
	}

	for _, dir := range directions {
		run := scanRun(grid, lastMove, dir, stone)
		if len(run) < WinningCount {
			continue
		}

		if segment := winningSegment(run); segment != nil {
			return &WinResult{Winner: stone, Positions: segment}
		}
	}

	return nil
}

// scanRun collects the maximal contiguous same-stone run through pivot along
// dir, ordered in the direction of positive step.
func scanRun(grid [][]entity.Cell, pivot entity.Position, dir direction, stone entity.Cell) []entity.Position {
	run := []entity.Position{pivot}

	// walk backwards, prepending
	for r, c := pivot.Row()-dir.dr, pivot.Col()-dir.dc; ; r, c = r-dir.dr, c-dir.dc {
		pos := entity.Position{r, c}
		if !inBounds(grid, pos) || grid[r][c] != stone {
			break
		}
		run = append([]entity.Position{pos}, run...)
	}

	// walk forwards, appending
	for r, c := pivot.Row()+dir.dr, pivot.Col()+dir.dc; ; r, c = r+dir.dr, c+dir.dc {
		pos := entity.Position{r, c}
		if !inBounds(grid, pos) || grid[r][c] != stone {
			break
		}
		run = append(run, pos)
	}

	return run
}

// winningSegment extracts the first five-coordinate sub-segment of run that
// is geometrically continuous. An overline (run longer than five) still
// yields a valid segment.
func winningSegment(run []entity.Position) []entity.Position {
	for i := 0; i+WinningCount <= len(run); i++ {
		segment := run[i : i+WinningCount]
		if isContinuous(segment) {
			out := make([]entity.Position, WinningCount)
			copy(out, segment)
			return out
		}
	}

	return nil
}

// isContinuous verifies a constant unit step in exactly one of the four line
// directions across the whole segment.
func isContinuous(segment []entity.Position) bool {
	for _, dir := range directions {
		matched := true
		for i := 1; i < len(segment); i++ {
			if segment[i].Row() != segment[i-1].Row()+dir.dr ||
				segment[i].Col() != segment[i-1].Col()+dir.dc {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}

	return false
}

func inBounds(grid [][]entity.Cell, pos entity.Position) bool {
	return pos.Row() >= 0 && pos.Row() < len(grid) &&
		pos.Col() >= 0 && pos.Col() < len(grid[pos.Row()])
}
