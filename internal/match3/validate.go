package match3

// Move is a candidate swap of two cells.
type Move struct {
	A, B Pos
}

// Adjacent reports whether a and b are orthogonal neighbours.
func Adjacent(a, b Pos) bool {
	dr := a.Row - b.Row
	dc := a.Col - b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// WouldMatch reports whether swapping a and b creates at least one run.
// The grid itself is not modified.
func WouldMatch(g *Grid, a, b Pos) bool {
	if !g.InBounds(a) || !g.InBounds(b) {
		return false
	}
	trial := g.Clone()
	trial.Swap(a, b)
	return HasMatch(trial)
}

// FindMove returns the first legal swap in row-major order, testing the
// right and bottom neighbour of every cell.
func FindMove(g *Grid) (Move, bool) {
	n := g.n
	for r := range n {
		for c := range n {
			a := Pos{Row: r, Col: c}
			if c+1 < n {
				if b := (Pos{Row: r, Col: c + 1}); WouldMatch(g, a, b) {
					return Move{A: a, B: b}, true
				}
			}
			if r+1 < n {
				if b := (Pos{Row: r + 1, Col: c}); WouldMatch(g, a, b) {
					return Move{A: a, B: b}, true
				}
			}
		}
	}
	return Move{}, false
}

// HasLegalMove reports whether any adjacent swap produces a match.
// A false result means the board is deadlocked and must be reshuffled.
func HasLegalMove(g *Grid) bool {
	_, ok := FindMove(g)
	return ok
}
