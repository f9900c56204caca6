// Package sim plays headless match-3 sessions with a greedy bot and reports
// the reward distribution. It is used to tune scoring tables and presets.
package sim

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/tap-match/internal/match3"
)

// Options controls a simulation run.
type Options struct {
	Sessions int   // Number of sessions to play
	Moves    int   // Moves per session
	Seed     int64 // Session i uses Seed+i
	Workers  int   // Sessions played in parallel; 0 means 1
	Logger   *log.Logger
}

// DefaultOptions returns 200 sessions of 30 moves.
func DefaultOptions() Options {
	return Options{Sessions: 200, Moves: 30, Seed: 1, Workers: 4}
}

// SessionStats is the outcome of one bot session.
type SessionStats struct {
	Seed       int64
	Total      int
	Moves      int
	Cascades   int
	Reshuffles int
	Wildcards  int
}

// Report summarizes a simulation run.
type Report struct {
	Sessions   int
	Moves      int
	Mean       float64
	StdDev     float64
	Min        float64
	Max        float64
	Median     float64
	P90        float64
	Reshuffles int
	Wildcards  int
	Cascades   int // Cascade steps beyond the first of each move

	Results []SessionStats
}

// Run plays opts.Sessions bot sessions with cfg and summarizes their totals.
// Results are ordered by seed regardless of the worker count.
func Run(ctx context.Context, cfg match3.Config, opts Options) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("sim: %w", err)
	}
	if opts.Sessions <= 0 || opts.Moves <= 0 {
		return Report{}, fmt.Errorf("sim: sessions and moves must be positive")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	results := make([]SessionStats, opts.Sessions)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i := range opts.Sessions {
		seed := opts.Seed + int64(i)
		g.Go(func() error {
			st, err := Play(ctx, cfg, seed, opts.Moves)
			if err != nil {
				return err
			}
			results[i] = st
			opts.Logger.Debug("session done", "seed", seed, "total", st.Total, "reshuffles", st.Reshuffles)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return summarize(results), nil
}

// Play runs a single bot session for up to moves moves.
func Play(ctx context.Context, cfg match3.Config, seed int64, moves int) (SessionStats, error) {
	s, err := match3.StartSession(cfg, match3.WithSeed(seed))
	if err != nil {
		return SessionStats{}, fmt.Errorf("sim: seed %d: %w", seed, err)
	}

	st := SessionStats{Seed: seed}
	for range moves {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		res, ok := botMove(s)
		if !ok {
			break
		}
		if !res.Accepted {
			return st, fmt.Errorf("sim: seed %d: bot move rejected: %s", seed, res.Reason)
		}
		st.Moves++
		st.Cascades += max(len(res.Cascades)-1, 0)
		if res.SpecialUsed {
			st.Wildcards++
		}
	}

	if _, err := s.EndSession(ctx); err != nil {
		return st, fmt.Errorf("sim: seed %d: %w", seed, err)
	}
	st.Total = s.Total()
	st.Reshuffles = s.Reshuffles()
	return st, nil
}

// botMove plays the wildcard when it is live and the first legal swap otherwise.
func botMove(s *match3.Session) (match3.MoveResult, bool) {
	grid := s.Grid()
	if grid == nil {
		return match3.MoveResult{}, false
	}
	if sp, ok := grid.SpecialPos(); ok {
		if target, ok := wildcardTarget(grid, sp); ok {
			return s.ActivateSpecial(target), true
		}
	}
	m, ok := s.Hint()
	if !ok {
		return match3.MoveResult{}, false
	}
	return s.ProposeSwap(m.A, m.B), true
}

// wildcardTarget picks the neighbour of sp whose value is most common on the board.
func wildcardTarget(g *match3.Grid, sp match3.Pos) (match3.Pos, bool) {
	var best match3.Pos
	bestCount := 0
	for _, d := range []match3.Pos{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}} {
		p := match3.P(sp.Row+d.Row, sp.Col+d.Col)
		if !g.InBounds(p) || !g.Get(p).IsOrdinary() {
			continue
		}
		if n := g.Count(g.Get(p)); n > bestCount {
			best, bestCount = p, n
		}
	}
	return best, bestCount > 0
}

func summarize(results []SessionStats) Report {
	r := Report{Sessions: len(results), Results: results}
	totals := make([]float64, len(results))
	for i, st := range results {
		totals[i] = float64(st.Total)
		r.Moves += st.Moves
		r.Reshuffles += st.Reshuffles
		r.Wildcards += st.Wildcards
		r.Cascades += st.Cascades
	}

	r.Mean, r.StdDev = stat.MeanStdDev(totals, nil)
	r.Min = floats.Min(totals)
	r.Max = floats.Max(totals)

	sorted := slices.Clone(totals)
	slices.Sort(sorted)
	r.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	r.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return r
}
