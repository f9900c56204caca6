package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/match3"
	"github.com/vovakirdan/tap-match/internal/registry"
	"github.com/vovakirdan/tap-match/internal/storage"
)

// settleTimeout bounds one ledger flush.
const settleTimeout = 5 * time.Second

// ModelOptions configures a game model.
type ModelOptions struct {
	Player   string          // Ledger and scoreboard owner
	Logger   *log.Logger     // Defaults to log.Default()
	Renderer *ScreenRenderer // Defaults to the process output
}

// Model is the Bubble Tea model for running one game.
// It settles the session reward into the player's ledger when the game ends,
// before a restart, and when the player leaves.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	renderer   *ScreenRenderer
	store      *storage.Store
	player     string
	logger     *log.Logger
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	keyMapper  *KeyMapper
	gameState  core.GameState
	standalone bool // Run owns the program; leaving quits it
	quitting   bool
	backToMenu bool
	scoreSaved bool // Whether score has been saved for current game over
	settled    bool // Whether the current session's reward reached the ledger
	autoSettle bool // Settlement attempted on game over
	reward     int
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ModelOptions) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = defaultRenderer()
	}
	if opts.Player == "" {
		opts.Player = storage.DefaultPlayer
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		renderer:   opts.Renderer,
		store:      store,
		player:     opts.Player,
		logger:     opts.Logger,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.finish()
		m.quitting = true
		return m, tea.Quit
	}

	// Back leaves the game once it is over or paused; otherwise it drops the selection.
	if action == core.ActionBack && (m.gameState.GameOver || m.gameState.Paused) {
		m.finish()
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
		return m, nil
	}

	if action == core.ActionRestart && !m.gameState.GameOver {
		return m, nil
	}
	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleMouse turns a left click on a board cell into a select.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if p, ok := m.game.(registry.Pointer); ok && p.PointAt(msg.X, msg.Y) {
		m.inputFrame.Set(core.ActionSelect)
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(registry.Resizable); ok {
		r.Resize(msg.Width, msg.Height)
		return m, nil
	}
	if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.finish()
		m.inputFrame.Clear()
		if !m.settled {
			// The unsettled total stays on screen until the ledger accepts it.
			return m, tickCmd(m.config.TickRate)
		}
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.settled = false
		m.autoSettle = false
		m.reward = 0
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver && !m.autoSettle {
		m.autoSettle = true
		m.finish()
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// finish credits the session reward and records the score, each once.
func (m *Model) finish() {
	m.gameState = m.game.State()
	score := m.gameState.Score

	m.settle()

	if m.scoreSaved || score <= 0 {
		return
	}
	m.scoreSaved = true
	if m.store == nil {
		return
	}
	if _, err := m.store.SaveScore(m.game.ID(), m.player, score); err != nil {
		m.logger.Warn("cannot save score", "game", m.game.ID(), "player", m.player, "error", err)
	}
}

func (m *Model) settle() {
	if m.settled {
		return
	}
	r, ok := m.game.(registry.Rewarder)
	if !ok {
		m.settled = true
		return
	}

	var ledger match3.RewardLedger
	if m.store != nil {
		ledger = m.store.Ledger(m.player, m.game.ID())
	}

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	amount, err := r.SettleRewards(ctx, ledger)
	if err != nil {
		m.logger.Warn("reward not settled", "game", m.game.ID(), "player", m.player, "error", err)
		return
	}
	m.settled = true
	m.reward = amount
	m.logger.Info("reward settled", "game", m.game.ID(), "player", m.player, "amount", amount)
}

// saveScreenshot saves the current screen to ~/.tapmatch/screenshots.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".tapmatch", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "path", path, "error", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return m.renderer.Render(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Settled reports whether the last session's reward reached the ledger,
// and the amount credited.
func (m Model) Settled() (bool, int) {
	return m.settled, m.reward
}

// Run plays game until the player quits or goes back.
// It reports whether the player asked to go back to the menu.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ModelOptions) (backToMenu bool, err error) {
	model := NewModel(game, store, cfg, opts)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if fm, ok := final.(Model); ok {
		return fm.BackToMenu(), nil
	}
	return false, nil
}
