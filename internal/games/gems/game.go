// Package gems provides the two match-3 games of tap-match: Gem Rush with
// plain tiles and Crypto Crush with coin tiles and a wildcard. Both wrap a
// match3.Session and translate cursor input into swaps.
package gems

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tap-match/internal/config"
	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/match3"
	"github.com/vovakirdan/tap-match/internal/registry"
)

const (
	IDGems   = "gems"
	IDCrypto = "crypto"

	hintTicks = 45
)

// Package-level settings applied on the next Reset, set by the CLI and menus.
var (
	selectedPreset = config.DifficultyNormal
	configPath     string
	logger         = log.New(io.Discard)
)

// SetDifficulty selects the preset used by the next Reset.
func SetDifficulty(p config.DifficultyPreset) {
	selectedPreset = p
}

// GetDifficulty returns the preset used by the next Reset.
func GetDifficulty() config.DifficultyPreset {
	return selectedPreset
}

// SetConfigPath sets a YAML file that overrides the default search order.
func SetConfigPath(path string) {
	configPath = path
}

// SetLogger sets the logger handed to new sessions.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

type tileLook struct {
	glyph rune
	color core.Color
}

// Game is one of the match-3 variants.
type Game struct {
	id      string
	fixed   *config.GameConfig // Set by NewWithConfig; skips loading
	cfg     config.GameConfig
	palette []tileLook
	wild    tileLook

	session *match3.Session
	ledger  match3.RewardLedger // Target of the next flush
	tick    uint64

	cursor    match3.Pos
	selected  match3.Pos
	hasSel    bool
	hint      match3.Move
	hintTicks int

	flash      []match3.Pos
	flashTicks int

	movesLeft int
	lastDelta int
	message   string

	screenW int
	screenH int

	gameOver bool
	settled  bool
	paused   bool
	tooSmall bool
}

// New creates the game for id, loading its configuration on Reset.
func New(id string) *Game {
	return &Game{id: id}
}

// NewWithConfig creates a game with a fixed configuration.
func NewWithConfig(id string, cfg config.GameConfig) *Game {
	return &Game{id: id, fixed: &cfg}
}

func init() {
	registry.Register(IDGems, func() registry.Game {
		return New(IDGems)
	})
	registry.Register(IDCrypto, func() registry.Game {
		return New(IDCrypto)
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.cfg.Title != "" {
		return g.cfg.Title
	}
	if def, ok := config.DefaultFor(g.id); ok {
		return def.Title
	}
	return g.id
}

// Reset starts a new session.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.cfg = g.loadConfig()
	g.buildPalette()

	g.tick = 0
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH
	g.cursor = match3.Pos{}
	g.hasSel = false
	g.hintTicks = 0
	g.flash = nil
	g.flashTicks = 0
	g.movesLeft = g.cfg.Session.Moves
	g.lastDelta = 0
	g.message = ""
	g.gameOver = false
	g.settled = false
	g.paused = false

	engine, err := g.cfg.Engine()
	if err == nil {
		g.session, err = match3.StartSession(engine,
			match3.WithSeed(rc.Seed),
			match3.WithLogger(logger.With("game", g.id)),
			match3.WithLedger(match3.LedgerFunc(g.flush)),
		)
	}
	if err != nil {
		// Config is validated on load, so this only happens for boards the
		// generator cannot fill.
		logger.Error("cannot start session", "game", g.id, "error", err)
		g.session = nil
		g.gameOver = true
		g.message = "Cannot start: " + err.Error()
	}

	g.checkScreenSize()
}

func (g *Game) loadConfig() config.GameConfig {
	if g.fixed != nil {
		return *g.fixed
	}
	cfg, err := config.LoadWithPreset(g.id, configPath, selectedPreset)
	if err != nil {
		logger.Warn("falling back to default config", "game", g.id, "error", err)
		cfg, _ = config.DefaultFor(g.id)
		config.ApplyPreset(&cfg, selectedPreset)
	}
	return cfg
}

func (g *Game) buildPalette() {
	g.palette = make([]tileLook, len(g.cfg.Board.Tiles))
	for i, t := range g.cfg.Board.Tiles {
		g.palette[i] = look(t.Glyph, t.Color)
	}
	g.wild = look(g.cfg.Special.Glyph, g.cfg.Special.Color)
}

func look(glyph, color string) tileLook {
	r, _ := utf8.DecodeRuneInString(glyph)
	if r == utf8.RuneError {
		r = '?'
	}
	c, _ := core.ParseColor(color)
	return tileLook{glyph: r, color: c}
}

func (g *Game) checkScreenSize() {
	n := g.cfg.Board.Size
	g.tooSmall = g.screenW < n*cellWidth+2 || g.screenH < n+hudHeight+footerHeight+2
}

// Resize adapts the layout to a new screen size and keeps the session.
func (g *Game) Resize(width, height int) {
	g.screenW = width
	g.screenH = height
	g.checkScreenSize()
}

// PointAt moves the cursor to the board cell under screen position x, y.
func (g *Game) PointAt(x, y int) bool {
	if g.tooSmall || g.gameOver || g.paused {
		return false
	}
	box := g.boardRect()
	col := (x - box.X - 1) / cellWidth
	row := y - box.Y - 1
	if x <= box.X || row < 0 || row >= g.cfg.Board.Size || col >= g.cfg.Board.Size {
		return false
	}
	g.cursor = match3.P(row, col)
	return true
}

var _ registry.Resizable = (*Game)(nil)
var _ registry.Pointer = (*Game)(nil)

// flush forwards the session total to the ledger given to SettleRewards.
func (g *Game) flush(ctx context.Context, amount int) error {
	if g.ledger == nil {
		return nil
	}
	return g.ledger.FlushReward(ctx, amount)
}

// SettleRewards ends the session and credits its total to ledger once.
// A failed flush leaves the session open so the call can be retried.
func (g *Game) SettleRewards(ctx context.Context, ledger match3.RewardLedger) (int, error) {
	if g.session == nil || g.settled {
		return 0, nil
	}

	g.ledger = ledger
	res, err := g.session.EndSession(ctx)
	g.ledger = nil
	if err != nil {
		return 0, fmt.Errorf("gems: settle %s: %w", g.id, err)
	}

	g.settled = true
	g.gameOver = true
	return res.TotalReward, nil
}

var _ registry.Rewarder = (*Game)(nil)

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall || g.session == nil {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.gameOver {
		g.paused = !g.paused
	}
	if g.paused || g.gameOver {
		return core.StepResult{State: g.State()}
	}

	if g.hintTicks > 0 {
		g.hintTicks--
	}

	// Input is ignored while the last clear is on screen.
	if g.flashTicks > 0 {
		g.flashTicks--
		if g.flashTicks == 0 {
			g.flash = nil
		}
		return core.StepResult{State: g.State()}
	}

	g.handleCursor(in)

	switch {
	case in.Has(core.ActionBack):
		g.hasSel = false
	case in.Has(core.ActionHint):
		g.showHint()
	case in.Has(core.ActionSelect), in.Has(core.ActionConfirm):
		g.pick()
	}

	return core.StepResult{State: g.State()}
}

func (g *Game) handleCursor(in core.InputFrame) {
	n := g.cfg.Board.Size
	switch {
	case in.Has(core.ActionUp):
		g.cursor.Row--
	case in.Has(core.ActionDown):
		g.cursor.Row++
	case in.Has(core.ActionLeft):
		g.cursor.Col--
	case in.Has(core.ActionRight):
		g.cursor.Col++
	}
	g.cursor.Row = core.Clamp(g.cursor.Row, 0, n-1)
	g.cursor.Col = core.Clamp(g.cursor.Col, 0, n-1)
}

func (g *Game) showHint() {
	m, ok := g.session.Hint()
	if !ok {
		return
	}
	g.hint = m
	g.hintTicks = hintTicks
}

// pick selects the cursor cell or swaps it with the selected neighbour.
func (g *Game) pick() {
	switch {
	case !g.hasSel:
		g.selected = g.cursor
		g.hasSel = true
	case g.selected == g.cursor:
		g.hasSel = false
	case match3.Adjacent(g.selected, g.cursor):
		g.hasSel = false
		g.play(g.selected, g.cursor)
	default:
		g.selected = g.cursor
	}
}

func (g *Game) play(a, b match3.Pos) {
	res := g.session.ProposeSwap(a, b)
	if !res.Accepted {
		g.message = res.Reason.String()
		g.lastDelta = 0
		return
	}

	g.hintTicks = 0
	g.lastDelta = res.RewardDelta
	g.flash = g.flash[:0]
	for _, step := range res.Cascades {
		g.flash = append(g.flash, step.Cleared...)
	}
	g.flashTicks = g.cfg.Session.FlashTicks
	if g.flashTicks == 0 {
		g.flash = nil
	}

	switch {
	case res.SpecialUsed:
		g.message = fmt.Sprintf("Wildcard cleared %d tiles! +%d", res.SpecialCleared, res.RewardDelta)
	case len(res.Cascades) > 1:
		g.message = fmt.Sprintf("Cascade x%d! +%d", len(res.Cascades), res.RewardDelta)
	default:
		g.message = fmt.Sprintf("+%d", res.RewardDelta)
	}
	if res.Reshuffled {
		g.message += "  No moves left, board reshuffled"
	}

	if g.cfg.Session.Moves > 0 {
		g.movesLeft--
		if g.movesLeft <= 0 {
			g.gameOver = true
			g.flashTicks = 0
			g.flash = nil
		}
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	score := 0
	if g.session != nil {
		score = g.session.Total()
	}
	return core.GameState{
		Score:    score,
		GameOver: g.gameOver,
		Paused:   g.paused || g.tooSmall,
	}
}
