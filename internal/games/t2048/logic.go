// Package t2048 implements the rules of the 2048 sliding-tile puzzle.
//
// Everything here is a pure function over value types: a Grid is a fixed-size
// array, so passing it around copies it and no operation can mutate a grid
// owned by the caller.
package t2048

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the board dimension.
const Size = 4

// WinTile is the tile value that wins the game.
const WinTile = 2048

// Grid is a Size x Size board. Zero means empty.
type Grid [Size][Size]int

// Line is a single row or column in traversal order.
type Line [Size]int

// Direction represents a move direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists every direction in a stable order.
var Directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

// ErrUnknownDirection is returned by ParseDirection for unrecognised input.
var ErrUnknownDirection = errors.New("t2048: unknown direction")

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection maps "up", "down", "left", "right" (or w/s/a/d) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return DirUp, nil
	case "down", "s":
		return DirDown, nil
	case "left", "a":
		return DirLeft, nil
	case "right", "d":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MoveResult is the outcome of applying a direction to a grid.
type MoveResult struct {
	Grid       Grid
	ScoreDelta int
	Moved      bool
}

// CollapseLine slides non-empty tiles toward index 0 and merges equal
// neighbours. A tile produced by a merge never merges again in the same call.
// Returns the collapsed line and the sum of all merged values.
func CollapseLine(line Line) (result Line, score int) {
	var compact [Size]int
	n := 0
	for _, v := range line {
		if v != 0 {
			compact[n] = v
			n++
		}
	}

	out := 0
	for i := 0; i < n; i++ {
		if i+1 < n && compact[i] == compact[i+1] {
			merged := compact[i] * 2
			result[out] = merged
			score += merged
			i++ // both inputs are consumed
		} else {
			result[out] = compact[i]
		}
		out++
	}

	return result, score
}

// reverse returns the line in opposite order.
func reverse(line Line) Line {
	var result Line
	for i := range Size {
		result[i] = line[Size-1-i]
	}
	return result
}

// extract reads row or column i in the orientation that makes dir collapse
// toward index 0.
func extract(g Grid, dir Direction, i int) Line {
	var line Line
	switch dir {
	case DirLeft, DirRight:
		line = g[i]
	case DirUp, DirDown:
		for r := range Size {
			line[r] = g[r][i]
		}
	}
	if dir == DirRight || dir == DirDown {
		line = reverse(line)
	}
	return line
}

// place writes a collapsed line back into row or column i, undoing the
// orientation applied by extract.
func place(g *Grid, dir Direction, i int, line Line) {
	if dir == DirRight || dir == DirDown {
		line = reverse(line)
	}
	switch dir {
	case DirLeft, DirRight:
		g[i] = line
	case DirUp, DirDown:
		for r := range Size {
			g[r][i] = line[r]
		}
	}
}

// ApplyMove slides the whole grid in the given direction.
// An unknown direction leaves the grid unchanged.
func ApplyMove(g Grid, dir Direction) MoveResult {
	if dir < DirUp || dir > DirRight {
		return MoveResult{Grid: g}
	}

	var next Grid
	total := 0
	for i := range Size {
		collapsed, score := CollapseLine(extract(g, dir, i))
		place(&next, dir, i, collapsed)
		total += score
	}

	return MoveResult{
		Grid:       next,
		ScoreDelta: total,
		Moved:      next != g,
	}
}

// Cell is a board coordinate.
type Cell struct {
	Row, Col int
}

// EmptyCells returns coordinates of all empty cells in row-major order.
func EmptyCells(g Grid) []Cell {
	var cells []Cell
	for r := range Size {
		for c := range Size {
			if g[r][c] == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasEmptyCell returns true if there's at least one empty cell.
func HasEmptyCell(g Grid) bool {
	for r := range Size {
		for c := range Size {
			if g[r][c] == 0 {
				return true
			}
		}
	}
	return false
}

// HasPossibleMerge returns true if any adjacent tiles can merge.
func HasPossibleMerge(g Grid) bool {
	for r := range Size {
		for c := range Size {
			val := g[r][c]
			if val == 0 {
				continue
			}
			if c < Size-1 && g[r][c+1] == val {
				return true
			}
			if r < Size-1 && g[r+1][c] == val {
				return true
			}
		}
	}
	return false
}

// CanMove reports whether at least one direction would change the grid.
func CanMove(g Grid) bool {
	return HasEmptyCell(g) || HasPossibleMerge(g)
}

// HasWon reports whether any tile has reached WinTile.
func HasWon(g Grid) bool {
	return MaxTile(g) >= WinTile
}

// MaxTile returns the maximum tile value on the board.
func MaxTile(g Grid) int {
	maxVal := 0
	for r := range Size {
		for c := range Size {
			if g[r][c] > maxVal {
				maxVal = g[r][c]
			}
		}
	}
	return maxVal
}

// Sum returns the total of all tile values.
func Sum(g Grid) int {
	total := 0
	for r := range Size {
		for c := range Size {
			total += g[r][c]
		}
	}
	return total
}
