package match3

// Scoring maps a group size to its reward.
// Sizes below MinRun are worth nothing; 5 and above share Match5.
type Scoring struct {
	Match3 int
	Match4 int
	Match5 int
}

// Score returns the reward for a group of the given size.
func (s Scoring) Score(size int) int {
	switch {
	case size < MinRun:
		return 0
	case size == 3:
		return s.Match3
	case size == 4:
		return s.Match4
	default:
		return s.Match5
	}
}

// Group is a connected component of matched cells.
type Group struct {
	Cells []Pos
	Score int
}

// Size returns the number of cells in the group.
func (g Group) Size() int {
	return len(g.Cells)
}

// Resolution is the outcome of clearing one detector pass.
type Resolution struct {
	Groups []Group
	Score  int
}

// Cleared returns every cell removed by the resolution.
func (r Resolution) Cleared() []Pos {
	var out []Pos
	for _, g := range r.Groups {
		out = append(out, g.Cells...)
	}
	return out
}

var neighbours = [4]Pos{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Resolve groups the matched cells into 4-connected components, scores each
// group and clears its cells from the grid.
//
// Connectivity only follows cells present in matched, so two touching runs
// form one group while unrelated equal tiles next to a run do not join it.
func Resolve(g *Grid, matched []Pos, scoring Scoring) Resolution {
	if len(matched) == 0 {
		return Resolution{}
	}

	inSet := make(map[Pos]bool, len(matched))
	for _, p := range matched {
		inSet[p] = true
	}
	visited := make(map[Pos]bool, len(matched))

	var res Resolution
	queue := make([]Pos, 0, len(matched))

	// matched is row-major, so groups come out ordered by their top-left cell.
	for _, start := range matched {
		if visited[start] {
			continue
		}

		visited[start] = true
		queue = append(queue[:0], start)
		var cells []Pos

		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			cells = append(cells, cur)
			for _, d := range neighbours {
				next := Pos{Row: cur.Row + d.Row, Col: cur.Col + d.Col}
				if inSet[next] && !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}

		if len(cells) < MinRun {
			continue
		}

		score := scoring.Score(len(cells))
		res.Groups = append(res.Groups, Group{Cells: cells, Score: score})
		res.Score += score
	}

	for _, grp := range res.Groups {
		for _, p := range grp.Cells {
			g.Set(p, Empty)
		}
	}

	return res
}
