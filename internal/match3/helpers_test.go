package match3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// seqSource replays scripted values, wrapping around, reduced modulo n.
// A tile draw of value v needs the scripted value v-1.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

// deadBoard returns an n×n board with five tile kinds where every cell
// differs from its orthogonal neighbours and no swap creates a run.
func deadBoard(n int) *Grid {
	g := NewGrid(n)
	for r := range n {
		for c := range n {
			g.Set(P(r, c), Tile((c+3*r)%5+1))
		}
	}
	return g
}

func mustGrid(t *testing.T, rows [][]Tile) *Grid {
	t.Helper()
	g, err := GridFromRows(rows)
	require.NoError(t, err)
	return g
}

// requireStable checks the invariants that hold between moves.
func requireStable(t *testing.T, s *Session) {
	t.Helper()
	g := s.Grid()
	require.NotNil(t, g)
	n := s.Config().Size
	require.Equal(t, n, g.Size())
	require.Equal(t, n*n, g.Filled(), "board has holes:\n%s", g)
	require.Empty(t, FindMatches(g), "board has runs:\n%s", g)
	require.LessOrEqual(t, g.SpecialCount(), 1)
	if !s.Config().Special.Enabled {
		require.Zero(t, g.SpecialCount())
	}
}
