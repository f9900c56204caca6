package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tap-match/internal/match3"
)

func TestRunDeterministic(t *testing.T) {
	cfg := match3.DefaultConfig()
	opts := Options{Sessions: 8, Moves: 10, Seed: 3, Workers: 3}

	a, err := Run(context.Background(), cfg, opts)
	require.NoError(t, err)
	opts.Workers = 1
	b, err := Run(context.Background(), cfg, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Results, b.Results, "results should not depend on the worker count")
	assert.Equal(t, 8, a.Sessions)
	for i, st := range a.Results {
		assert.Equal(t, int64(3+i), st.Seed)
		assert.Equal(t, 10, st.Moves, "a stable board always has a move")
		assert.Positive(t, st.Total)
	}
}

func TestReportStatistics(t *testing.T) {
	r := summarize([]SessionStats{{Total: 10}, {Total: 20}, {Total: 30}, {Total: 40}})

	assert.InDelta(t, 25.0, r.Mean, 1e-9)
	assert.InDelta(t, 12.909944, r.StdDev, 1e-5)
	assert.Equal(t, 10.0, r.Min)
	assert.Equal(t, 40.0, r.Max)
	assert.Equal(t, 20.0, r.Median)
	assert.Equal(t, 40.0, r.P90)
}

func TestRunWithWildcard(t *testing.T) {
	cfg := match3.DefaultConfig()
	cfg.Special = match3.SpecialRules{
		Enabled:       true,
		Scope:         match3.ScopeBoard,
		RewardPerTile: 1,
		SpawnMinGroup: 4,
		PlaceAtStart:  true,
	}

	r, err := Run(context.Background(), cfg, Options{Sessions: 4, Moves: 5, Seed: 11})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.Wildcards, 4, "the bot plays the starting wildcard of each session")
}

func TestRunRejectsBadOptions(t *testing.T) {
	_, err := Run(context.Background(), match3.DefaultConfig(), Options{Sessions: 0, Moves: 5})
	assert.Error(t, err)

	bad := match3.DefaultConfig()
	bad.Size = 1
	_, err = Run(context.Background(), bad, DefaultOptions())
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, match3.DefaultConfig(), Options{Sessions: 2, Moves: 5})
	assert.ErrorIs(t, err, context.Canceled)
}
