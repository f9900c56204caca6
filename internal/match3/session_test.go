package match3

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapConfig(tiles int) Config {
	cfg := DefaultConfig()
	cfg.Tiles = tiles
	cfg.Scoring = testScoring
	return cfg
}

// singleRunBoard is deadBoard(8) with a three-run one swap away at
// (3,3)<->(3,4) and a spare legal move at (7,2)<->(7,3).
func singleRunBoard() *Grid {
	g := deadBoard(8)
	g.Set(P(3, 3), 6)
	g.Set(P(3, 4), 7)
	g.Set(P(3, 5), 6)
	g.Set(P(3, 6), 6)
	g.Set(P(7, 0), 8)
	g.Set(P(7, 1), 8)
	g.Set(P(7, 3), 8)
	return g
}

func TestSessionValidSwapSingleRun(t *testing.T) {
	src := &seqSource{vals: []int{5, 6, 5}}
	s, err := NewSession(swapConfig(8), WithSource(src))
	require.NoError(t, err)

	reshuffled, err := s.StartFrom(singleRunBoard())
	require.NoError(t, err)
	require.False(t, reshuffled)

	res := s.ProposeSwap(P(3, 3), P(3, 4))
	require.True(t, res.Accepted, "reason: %s", res.Reason)
	assert.NoError(t, res.Err())
	assert.Equal(t, testScoring.Match3, res.RewardDelta)
	assert.Equal(t, testScoring.Match3, res.Total)
	assert.False(t, res.Reshuffled)
	assert.False(t, res.SpecialUsed)
	require.Len(t, res.Cascades, 1)
	assert.Equal(t, []Pos{P(3, 4), P(3, 5), P(3, 6)}, res.Cascades[0].Cleared)
	assert.Equal(t, []Pos{P(0, 4), P(0, 5), P(0, 6)}, res.Cascades[0].Refilled)

	g := s.Grid()
	assert.Equal(t, Tile(7), g.Get(P(3, 3)))
	assert.Equal(t, Tile(6), g.Get(P(0, 4)))
	assert.Equal(t, Tile(7), g.Get(P(0, 5)))
	assert.Equal(t, Tile(6), g.Get(P(0, 6)))
	// Columns 4..6 shifted down by one.
	assert.Equal(t, Tile(1), g.Get(P(3, 4)))
	assert.Equal(t, Tile(2), g.Get(P(3, 5)))
	assert.Equal(t, Tile(3), g.Get(P(3, 6)))

	requireStable(t, s)
	assert.Equal(t, 1, s.Moves())
	assert.Equal(t, StateRunning, s.State())
}

func TestSessionRejectsInvalidSwaps(t *testing.T) {
	s, err := NewSession(swapConfig(8), WithSeed(1))
	require.NoError(t, err)
	_, err = s.StartFrom(singleRunBoard())
	require.NoError(t, err)
	before := s.Grid()

	tests := []struct {
		name   string
		a, b   Pos
		reason Reason
	}{
		{"far apart", P(0, 0), P(5, 5), ReasonNotAdjacent},
		{"diagonal", P(0, 0), P(1, 1), ReasonNotAdjacent},
		{"same cell", P(2, 2), P(2, 2), ReasonNotAdjacent},
		{"off board", P(7, 7), P(7, 8), ReasonNotAdjacent},
		{"no match", P(0, 0), P(0, 1), ReasonNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.ProposeSwap(tt.a, tt.b)
			assert.False(t, res.Accepted)
			assert.Equal(t, tt.reason, res.Reason)
			assert.ErrorIs(t, res.Err(), ErrInvalidSwap)
			assert.Zero(t, res.RewardDelta)
			assert.True(t, before.Equal(s.Grid()), "board changed after rejected swap")
		})
	}
	assert.Zero(t, s.Total())
	assert.Zero(t, s.Moves())
}

func TestSessionReshufflesDeadlockedBoard(t *testing.T) {
	cfg := swapConfig(5)
	s, err := NewSession(cfg, WithSeed(7))
	require.NoError(t, err)

	dead := deadBoard(cfg.Size)
	require.False(t, HasLegalMove(dead))

	reshuffled, err := s.StartFrom(dead)
	require.NoError(t, err)
	assert.True(t, reshuffled)
	assert.Equal(t, 1, s.Reshuffles())
	assert.Zero(t, s.Total())
	assert.True(t, HasLegalMove(s.Grid()))
	requireStable(t, s)
}

func TestSessionStartFromRejectsBadBoards(t *testing.T) {
	cfg := swapConfig(8)

	withRun := deadBoard(8)
	withRun.Set(P(0, 0), 7)
	withRun.Set(P(0, 1), 7)
	withRun.Set(P(0, 2), 7)

	twoSpecials := singleRunBoard()
	twoSpecials.Set(P(0, 0), Special)
	twoSpecials.Set(P(5, 5), Special)

	oneSpecial := singleRunBoard()
	oneSpecial.Set(P(0, 0), Special)

	holes := singleRunBoard()
	holes.Set(P(4, 4), Empty)

	unknownTile := singleRunBoard()
	unknownTile.Set(P(4, 4), 9)

	tests := []struct {
		name    string
		board   *Grid
		special bool
	}{
		{"nil", nil, false},
		{"wrong size", deadBoard(6), false},
		{"pre-existing run", withRun, false},
		{"two specials", twoSpecials, true},
		{"special while disabled", oneSpecial, false},
		{"empty cell", holes, false},
		{"unknown tile", unknownTile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.Special.Enabled = tt.special
			s, err := NewSession(c, WithSeed(1))
			require.NoError(t, err)
			_, err = s.StartFrom(tt.board)
			assert.Error(t, err)
			assert.Equal(t, StateIdle, s.State())
		})
	}
}

func TestSessionStartGeneratesStableBoard(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		s, err := StartSession(DefaultConfig(), WithSeed(seed))
		require.NoError(t, err)
		requireStable(t, s)
		assert.True(t, HasLegalMove(s.Grid()), "seed %d", seed)
	}
}

func TestSessionSameSeedSameBoard(t *testing.T) {
	a, err := StartSession(DefaultConfig(), WithSeed(99))
	require.NoError(t, err)
	b, err := StartSession(DefaultConfig(), WithSeed(99))
	require.NoError(t, err)
	assert.True(t, a.Grid().Equal(b.Grid()))
}

func TestSessionStartTwice(t *testing.T) {
	s, err := StartSession(DefaultConfig(), WithSeed(1))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Start(), ErrSessionNotRunning)
}

func TestNewSessionValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny board", func(c *Config) { c.Size = 2 }},
		{"two tiles", func(c *Config) { c.Tiles = 2 }},
		{"too many tiles", func(c *Config) { c.Tiles = 255 }},
		{"negative score", func(c *Config) { c.Scoring.Match4 = -1 }},
		{"negative special reward", func(c *Config) { c.Special.RewardPerTile = -1 }},
		{"spawn group too small", func(c *Config) { c.Special.SpawnMinGroup = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewSession(cfg)
			assert.Error(t, err)
		})
	}
}

// Random play keeps every invariant after each move.
func TestSessionRandomPlayInvariants(t *testing.T) {
	configs := map[string]Config{
		"plain": DefaultConfig(),
		"wildcard": func() Config {
			c := DefaultConfig()
			c.Special.Enabled = true
			c.Special.PlaceAtStart = true
			return c
		}(),
		"wildcard per session": func() Config {
			c := DefaultConfig()
			c.Tiles = 4
			c.Special.Enabled = true
			c.Special.Scope = ScopeSession
			return c
		}(),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			for seed := int64(1); seed <= 5; seed++ {
				s, err := StartSession(cfg, WithSeed(seed))
				require.NoError(t, err)

				sum := 0
				last := 0
				for range 60 {
					m, ok := s.Hint()
					require.True(t, ok, "no move on a settled board:\n%s", s.Grid())

					res := s.ProposeSwap(m.A, m.B)
					require.True(t, res.Accepted, "hint %v rejected: %s", m, res.Reason)
					require.GreaterOrEqual(t, res.RewardDelta, 0)

					sum += res.RewardDelta
					require.Equal(t, sum, res.Total)
					require.GreaterOrEqual(t, res.Total, last)
					last = res.Total

					requireStable(t, s)
				}
			}
		})
	}
}

func TestEndSessionFlushesOnce(t *testing.T) {
	var calls []int
	ledger := LedgerFunc(func(_ context.Context, amount int) error {
		calls = append(calls, amount)
		return nil
	})

	s, err := NewSession(swapConfig(8), WithSource(&seqSource{vals: []int{5, 6, 5}}), WithLedger(ledger))
	require.NoError(t, err)
	_, err = s.StartFrom(singleRunBoard())
	require.NoError(t, err)
	require.True(t, s.ProposeSwap(P(3, 3), P(3, 4)).Accepted)

	res, err := s.EndSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testScoring.Match3, res.TotalReward)
	assert.Equal(t, []int{testScoring.Match3}, calls)
	assert.Equal(t, StateEnded, s.State())
	assert.Nil(t, s.Grid())

	// Ending again neither flushes nor fails.
	res, err = s.EndSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testScoring.Match3, res.TotalReward)
	assert.Len(t, calls, 1)

	move := s.ProposeSwap(P(0, 0), P(0, 1))
	assert.Equal(t, ReasonNotRunning, move.Reason)
	assert.ErrorIs(t, move.Err(), ErrSessionNotRunning)
}

func TestEndSessionSkipsZeroTotal(t *testing.T) {
	called := false
	ledger := LedgerFunc(func(context.Context, int) error {
		called = true
		return nil
	})
	s, err := StartSession(DefaultConfig(), WithSeed(3), WithLedger(ledger))
	require.NoError(t, err)

	res, err := s.EndSession(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.TotalReward)
	assert.False(t, called)
}

func TestEndSessionFlushFailureKeepsTotal(t *testing.T) {
	boom := errors.New("ledger offline")
	fail := true
	ledger := LedgerFunc(func(context.Context, int) error {
		if fail {
			return boom
		}
		return nil
	})

	s, err := NewSession(swapConfig(8), WithSource(&seqSource{vals: []int{5, 6, 5}}), WithLedger(ledger))
	require.NoError(t, err)
	_, err = s.StartFrom(singleRunBoard())
	require.NoError(t, err)
	require.True(t, s.ProposeSwap(P(3, 3), P(3, 4)).Accepted)

	res, err := s.EndSession(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRewardFlushFailed)
	assert.ErrorIs(t, err, boom)

	var flushErr *RewardFlushError
	require.ErrorAs(t, err, &flushErr)
	assert.Equal(t, testScoring.Match3, flushErr.Total)
	assert.Equal(t, testScoring.Match3, res.TotalReward)
	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, testScoring.Match3, s.Total())
	assert.NotNil(t, s.Grid())

	fail = false
	res, err = s.EndSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testScoring.Match3, res.TotalReward)
	assert.Equal(t, StateEnded, s.State())
}

func TestSessionBusyDuringFlush(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	ledger := LedgerFunc(func(context.Context, int) error {
		close(entered)
		<-release
		return nil
	})

	s, err := NewSession(swapConfig(8), WithSource(&seqSource{vals: []int{5, 6, 5}}), WithLedger(ledger))
	require.NoError(t, err)
	_, err = s.StartFrom(singleRunBoard())
	require.NoError(t, err)
	require.True(t, s.ProposeSwap(P(3, 3), P(3, 4)).Accepted)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.EndSession(context.Background())
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, s.Busy())
	assert.Equal(t, StateFlushing, s.State())

	move := s.ProposeSwap(P(7, 2), P(7, 3))
	assert.False(t, move.Accepted)
	assert.Equal(t, ReasonBusy, move.Reason)
	assert.ErrorIs(t, move.Err(), ErrSessionBusy)

	_, err = s.EndSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(release)
	wg.Wait()
	assert.False(t, s.Busy())
	assert.Equal(t, StateEnded, s.State())
}

func TestEndIdleSession(t *testing.T) {
	s, err := NewSession(DefaultConfig())
	require.NoError(t, err)
	res, err := s.EndSession(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.TotalReward)
	assert.Equal(t, StateEnded, s.State())
}
