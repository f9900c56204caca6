package match3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wildcardConfig(scope SpecialScope) Config {
	cfg := DefaultConfig()
	cfg.Scoring = testScoring
	cfg.Special = SpecialRules{
		Enabled:       true,
		Scope:         scope,
		RewardPerTile: 5,
		SpawnMinGroup: 4,
	}
	return cfg
}

// wildcardBoard holds the wildcard at (0,0) and six isolated 6 tiles,
// one of them next to the wildcard.
func wildcardBoard() *Grid {
	g := deadBoard(8)
	g.Set(P(0, 0), Special)
	for _, p := range []Pos{P(0, 1), P(2, 3), P(4, 5), P(5, 1), P(6, 6), P(7, 3)} {
		g.Set(p, 6)
	}
	return g
}

func TestActivateSpecialClearsEveryMatchingTile(t *testing.T) {
	s, err := NewSession(wildcardConfig(ScopeSession), WithSeed(11))
	require.NoError(t, err)
	_, err = s.StartFrom(wildcardBoard())
	require.NoError(t, err)
	require.True(t, s.SpecialLive())

	res := s.ActivateSpecial(P(0, 1))
	require.True(t, res.Accepted, "reason: %s", res.Reason)
	assert.True(t, res.SpecialUsed)
	assert.Equal(t, 6, res.SpecialCleared)

	require.NotEmpty(t, res.Cascades)
	first := res.Cascades[0]
	assert.True(t, first.Wildcard)
	assert.Equal(t, 6*5, first.Score)
	assert.Len(t, first.Cleared, 7)
	assert.GreaterOrEqual(t, res.RewardDelta, 30)
	assert.Equal(t, res.RewardDelta, res.Total)

	assert.False(t, s.SpecialLive())
	assert.True(t, s.SpecialUsed())
	requireStable(t, s)

	again := s.ActivateSpecial(P(0, 1))
	assert.False(t, again.Accepted)
	assert.Equal(t, ReasonSpecialUsed, again.Reason)
	assert.ErrorIs(t, again.Err(), ErrSpecialTileAlreadyUsed)
}

func TestSwapWithSpecialRoutesToWildcard(t *testing.T) {
	s, err := NewSession(wildcardConfig(ScopeSession), WithSeed(5))
	require.NoError(t, err)
	board := wildcardBoard()
	_, err = s.StartFrom(board)
	require.NoError(t, err)

	target := board.Get(P(1, 0))
	want := board.Count(target)

	// Argument order does not matter.
	res := s.ProposeSwap(P(1, 0), P(0, 0))
	require.True(t, res.Accepted)
	assert.True(t, res.SpecialUsed)
	assert.Equal(t, want, res.SpecialCleared)
	assert.Equal(t, want*5, res.Cascades[0].Score)
	requireStable(t, s)
}

func TestActivateSpecialRejections(t *testing.T) {
	s, err := NewSession(wildcardConfig(ScopeBoard), WithSeed(2))
	require.NoError(t, err)
	_, err = s.StartFrom(wildcardBoard())
	require.NoError(t, err)
	before := s.Grid()

	res := s.ActivateSpecial(P(3, 3))
	assert.Equal(t, ReasonNotAdjacent, res.Reason)
	assert.ErrorIs(t, res.Err(), ErrInvalidSwap)
	assert.True(t, before.Equal(s.Grid()))

	plain, err := NewSession(swapConfig(8), WithSeed(2))
	require.NoError(t, err)
	_, err = plain.StartFrom(singleRunBoard())
	require.NoError(t, err)
	res = plain.ActivateSpecial(P(0, 1))
	assert.Equal(t, ReasonNoSpecial, res.Reason)
	assert.NotErrorIs(t, res.Err(), ErrSpecialTileAlreadyUsed)
}

func TestBoardScopeResetsOnReshuffle(t *testing.T) {
	cfg := wildcardConfig(ScopeBoard)
	cfg.Special.PlaceAtStart = true
	s, err := NewSession(cfg, WithSeed(4))
	require.NoError(t, err)
	_, err = s.StartFrom(wildcardBoard())
	require.NoError(t, err)

	res := s.ActivateSpecial(P(0, 1))
	require.True(t, res.Accepted)
	if !res.Reshuffled {
		assert.True(t, s.SpecialUsed())
		assert.False(t, s.SpecialLive())
	}

	s.mu.Lock()
	s.reshuffle()
	s.mu.Unlock()

	assert.False(t, s.SpecialUsed())
	assert.True(t, s.SpecialLive(), "fresh board should carry a wildcard")
	requireStable(t, s)
}

func TestSessionScopeSurvivesReshuffle(t *testing.T) {
	cfg := wildcardConfig(ScopeSession)
	cfg.Special.PlaceAtStart = true
	s, err := NewSession(cfg, WithSeed(4))
	require.NoError(t, err)
	_, err = s.StartFrom(wildcardBoard())
	require.NoError(t, err)

	require.True(t, s.ActivateSpecial(P(0, 1)).Accepted)

	s.mu.Lock()
	s.reshuffle()
	s.mu.Unlock()

	assert.True(t, s.SpecialUsed())
	assert.False(t, s.SpecialLive())
	assert.Equal(t, ReasonSpecialUsed, s.ActivateSpecial(P(0, 1)).Reason)
}

func TestLargeGroupSpawnsSpecial(t *testing.T) {
	g := deadBoard(8)
	g.Set(P(3, 2), 6)
	g.Set(P(3, 3), 6)
	g.Set(P(3, 5), 6)
	g.Set(P(2, 4), 6)

	cfg := wildcardConfig(ScopeBoard)
	cfg.Tiles = 6
	s, err := NewSession(cfg, WithSeed(8))
	require.NoError(t, err)
	_, err = s.StartFrom(g)
	require.NoError(t, err)
	require.False(t, s.SpecialLive())

	res := s.ProposeSwap(P(2, 4), P(3, 4))
	require.True(t, res.Accepted, "reason: %s", res.Reason)

	first := res.Cascades[0]
	require.Len(t, first.Groups, 1)
	assert.Equal(t, 4, first.Groups[0].Size())
	assert.Equal(t, testScoring.Match4, first.Score)
	assert.True(t, first.SpawnedSpecial)

	assert.True(t, s.SpecialLive())
	requireStable(t, s)
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]SpecialScope{"": ScopeBoard, "board": ScopeBoard, " Session ": ScopeSession} {
		got, err := ParseScope(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseScope("forever")
	assert.Error(t, err)
}
