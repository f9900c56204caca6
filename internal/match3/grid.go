// Package match3 implements a match-3 puzzle engine: board generation, run
// detection, connected-group scoring, gravity with refill, move validation,
// deadlock reshuffles and an optional single-use wildcard tile.
//
// The package has no dependency on the terminal platform. Games wrap a
// Session and translate player input into ProposeSwap/ActivateSpecial calls.
package match3

import (
	"fmt"
	"strings"
)

// Tile is the value held by a grid cell.
// Ordinary tiles are numbered from 1; 0 is an empty cell.
type Tile uint8

const (
	// Empty marks a cell cleared by a match and not yet refilled.
	Empty Tile = 0

	// Special is the wildcard tile. It never forms runs.
	Special Tile = 0xFF
)

// IsOrdinary reports whether t is a regular matchable tile.
func (t Tile) IsOrdinary() bool {
	return t != Empty && t != Special
}

// Pos addresses a cell. Row 0 is the top row.
type Pos struct {
	Row, Col int
}

// P is a shorthand constructor for Pos.
func P(row, col int) Pos {
	return Pos{Row: row, Col: col}
}

// String returns "(row,col)".
func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a square board of tiles stored in row-major order.
type Grid struct {
	n     int
	cells []Tile
}

// NewGrid creates an empty n×n grid.
func NewGrid(n int) *Grid {
	if n <= 0 {
		panic(fmt.Sprintf("match3: invalid grid size %d", n))
	}
	return &Grid{n: n, cells: make([]Tile, n*n)}
}

// GridFromRows builds a grid from a square matrix of tiles.
func GridFromRows(rows [][]Tile) (*Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("match3: empty grid")
	}
	g := NewGrid(n)
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("match3: row %d has %d cells, want %d", r, len(row), n)
		}
		copy(g.cells[r*n:(r+1)*n], row)
	}
	return g, nil
}

// Size returns the board dimension N.
func (g *Grid) Size() int {
	return g.n
}

// InBounds reports whether p lies on the board.
func (g *Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.n && p.Col >= 0 && p.Col < g.n
}

func (g *Grid) index(p Pos) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("match3: cell %v out of range for %dx%d grid", p, g.n, g.n))
	}
	return p.Row*g.n + p.Col
}

// Get returns the tile at p. Panics if p is off the board.
func (g *Grid) Get(p Pos) Tile {
	return g.cells[g.index(p)]
}

// Set stores t at p. Panics if p is off the board.
func (g *Grid) Set(p Pos, t Tile) {
	g.cells[g.index(p)] = t
}

// Swap exchanges the tiles at a and b.
func (g *Grid) Swap(a, b Pos) {
	ia, ib := g.index(a), g.index(b)
	g.cells[ia], g.cells[ib] = g.cells[ib], g.cells[ia]
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{n: g.n, cells: make([]Tile, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.n != other.n {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns a copy of the board as a matrix.
func (g *Grid) Rows() [][]Tile {
	rows := make([][]Tile, g.n)
	for r := range g.n {
		rows[r] = make([]Tile, g.n)
		copy(rows[r], g.cells[r*g.n:(r+1)*g.n])
	}
	return rows
}

// Count returns how many cells hold t.
func (g *Grid) Count(t Tile) int {
	count := 0
	for _, c := range g.cells {
		if c == t {
			count++
		}
	}
	return count
}

// Filled returns the number of non-empty cells.
func (g *Grid) Filled() int {
	return len(g.cells) - g.Count(Empty)
}

// SpecialPos returns the position of the wildcard, if one is on the board.
func (g *Grid) SpecialPos() (Pos, bool) {
	for i, c := range g.cells {
		if c == Special {
			return Pos{Row: i / g.n, Col: i % g.n}, true
		}
	}
	return Pos{}, false
}

// SpecialCount returns the number of wildcard cells.
func (g *Grid) SpecialCount() int {
	return g.Count(Special)
}

// Positions returns every cell holding t in row-major order.
func (g *Grid) Positions(t Tile) []Pos {
	var out []Pos
	for i, c := range g.cells {
		if c == t {
			out = append(out, Pos{Row: i / g.n, Col: i % g.n})
		}
	}
	return out
}

// String renders the grid for debugging: digits for ordinary tiles,
// '.' for empty cells and '*' for the wildcard.
func (g *Grid) String() string {
	var sb strings.Builder
	for r := range g.n {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := range g.n {
			if c > 0 {
				sb.WriteByte(' ')
			}
			switch t := g.cells[r*g.n+c]; t {
			case Empty:
				sb.WriteByte('.')
			case Special:
				sb.WriteByte('*')
			default:
				sb.WriteString(fmt.Sprintf("%d", t))
			}
		}
	}
	return sb.String()
}
