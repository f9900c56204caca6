package match3

// MinRun is the shortest line of equal tiles that counts as a match.
const MinRun = 3

// FindMatches returns every cell that is part of a horizontal or vertical
// run of at least MinRun equal ordinary tiles, in row-major order.
// A cell belonging to both a row run and a column run is reported once.
func FindMatches(g *Grid) []Pos {
	n := g.n
	marked := make([]bool, n*n)
	found := false

	// scanLine walks one row or column; at(i) maps a line offset to a cell index.
	scanLine := func(at func(i int) int) {
		runStart := 0
		for i := 1; i <= n; i++ {
			if i < n {
				cur := g.cells[at(i)]
				if cur.IsOrdinary() && cur == g.cells[at(runStart)] {
					continue
				}
			}
			// Run [runStart, i) just ended.
			if i-runStart >= MinRun && g.cells[at(runStart)].IsOrdinary() {
				for k := runStart; k < i; k++ {
					marked[at(k)] = true
				}
				found = true
			}
			runStart = i
		}
	}

	for r := range n {
		scanLine(func(i int) int { return r*n + i })
	}
	for c := range n {
		scanLine(func(i int) int { return i*n + c })
	}

	if !found {
		return nil
	}

	out := make([]Pos, 0, MinRun*2)
	for i, m := range marked {
		if m {
			out = append(out, Pos{Row: i / n, Col: i % n})
		}
	}
	return out
}

// HasMatch reports whether the grid contains any run of MinRun or more.
func HasMatch(g *Grid) bool {
	return len(FindMatches(g)) > 0
}
