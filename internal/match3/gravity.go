package match3

// ApplyGravity drops the surviving tiles of every column to the bottom,
// keeping their order, and fills the vacated cells from the top down with
// tiles produced by draw. It returns the refilled cells, column by column.
//
// Refills are not checked for matches; the session cascade picks them up.
func ApplyGravity(g *Grid, draw func() Tile) []Pos {
	n := g.n
	var refilled []Pos

	for c := range n {
		write := n - 1
		for r := n - 1; r >= 0; r-- {
			t := g.cells[r*n+c]
			if t == Empty {
				continue
			}
			if write != r {
				g.cells[write*n+c] = t
				g.cells[r*n+c] = Empty
			}
			write--
		}

		for r := 0; r <= write; r++ {
			g.cells[r*n+c] = draw()
			refilled = append(refilled, Pos{Row: r, Col: c})
		}
	}

	return refilled
}
