package gems

import "github.com/vovakirdan/tap-match/internal/match3"

// StateType names the phase of the game.
type StateType string

const (
	StatePlaying     StateType = "playing"
	StateFlashing    StateType = "flashing"
	StatePaused      StateType = "paused"
	StateGameOver    StateType = "game_over"
	StatePausedSmall StateType = "paused_small_window"
)

// Snapshot captures the game for determinism tests.
type Snapshot struct {
	Tick        uint64
	Score       int
	MovesLeft   int
	Cursor      match3.Pos
	Selected    *match3.Pos
	Board       [][]match3.Tile
	SpecialLive bool
	SpecialUsed bool
	Reshuffles  int
	State       StateType
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.gameOver:
		state = StateGameOver
	case g.paused:
		state = StatePaused
	case g.flashTicks > 0:
		state = StateFlashing
	}

	snap := Snapshot{
		Tick:      g.tick,
		Score:     g.State().Score,
		MovesLeft: g.movesLeft,
		Cursor:    g.cursor,
		State:     state,
	}
	if g.hasSel {
		sel := g.selected
		snap.Selected = &sel
	}
	if g.session != nil {
		if grid := g.session.Grid(); grid != nil {
			snap.Board = grid.Rows()
		}
		snap.SpecialLive = g.session.SpecialLive()
		snap.SpecialUsed = g.session.SpecialUsed()
		snap.Reshuffles = g.session.Reshuffles()
	}
	return snap
}
