package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/google/uuid"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/registry"
	"github.com/vovakirdan/tap-match/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.tapmatch/host_key.
	HostKeyPath string

	// DBPath is the path to the scores and ledger database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate of remote games.
	TickRate int

	// Logger receives server and session logs; nil logs to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.tapmatch/tapmatch.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    30,
	}
}

// SSHServer wraps a Wish SSH server. Every SSH user name owns its own
// reward ledger and balance.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "tapmatch-ssh",
		})
	}

	// Rewards are not credited without storage, but play goes on.
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database, rewards will not be kept", "error", err)
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".tapmatch", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	// Create Wish server options
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	// Create the server
	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	// Create runtime config from PTY size
	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	player := sshSession.User()
	if player == "" {
		player = storage.DefaultPlayer
	}
	opts := ModelOptions{
		Player:   player,
		Logger:   s.logger.With("user", player),
		Renderer: NewScreenRenderer(bubbletea.MakeRenderer(sshSession)),
	}
	model := NewSessionModel(s.store, cfg, opts)
	if conn, ok := sshSession.Context().Value(connKey{}).(*connection); ok {
		model.conn = conn
	}

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

type connKey struct{}

// connection tracks the game of one SSH connection. A client that
// disconnects mid-game never sends quit, so its reward is settled here.
type connection struct {
	mu   sync.Mutex
	game registry.Game
}

func (c *connection) setGame(g registry.Game) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.game = g
}

func (c *connection) takeGame() registry.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.game
	c.game = nil
	return g
}

// settleAbandoned credits the reward of a game left open by a disconnect.
// Games settle at most once, so a game the player already left is a no-op.
func (s *SSHServer) settleAbandoned(conn *connection, player string) {
	game := conn.takeGame()
	r, ok := game.(registry.Rewarder)
	if !ok || s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	amount, err := r.SettleRewards(ctx, s.store.Ledger(player, game.ID()))
	if err != nil {
		s.logger.Error("reward lost on disconnect", "user", player, "game", game.ID(), "error", err)
		return
	}
	if amount > 0 {
		s.logger.Info("reward settled on disconnect", "user", player, "game", game.ID(), "amount", amount)
	}
}

// loggingMiddleware logs SSH session events and settles abandoned games.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)

		conn := &connection{}
		sshSession.Context().SetValue(connKey{}, conn)
		next(sshSession)

		player := sshSession.User()
		if player == "" {
			player = storage.DefaultPlayer
		}
		s.settleAbandoned(conn, player)

		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages the full flow of one SSH connection:
// menu -> game -> menu, with the scoreboard reachable from the menu.
type SessionModel struct {
	store      *storage.Store
	config     core.RuntimeConfig
	opts       ModelOptions
	sessionID  string
	menu       MenuModel
	scoreboard *ScoreboardModel
	gameModel  *Model
	conn       *connection // Nil outside SSH
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(store *storage.Store, cfg core.RuntimeConfig, opts ModelOptions) SessionModel {
	id := uuid.NewString()
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	opts.Logger = opts.Logger.With("session", id)

	return SessionModel{
		store:     store,
		config:    cfg,
		opts:      opts,
		sessionID: id,
		menu:      NewMenuModel(store, cfg, opts.Player).Embed(),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch {
	case m.gameModel != nil:
		return m.updateGame(msg)
	case m.scoreboard != nil:
		return m.updateScoreboard(msg)
	default:
		return m.updateMenu(msg)
	}
}

// backToMenu rebuilds the menu so the balance is current.
func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.conn.setGame(nil)
	m.gameModel = nil
	m.scoreboard = nil
	m.menu = NewMenuModel(m.store, m.config, m.opts.Player).Embed()
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsScoreboard() {
		sb := NewScoreboardModel(m.store, m.opts.Player, m.config.ScreenW, m.config.ScreenH).Embed()
		m.scoreboard = &sb
		return m, sb.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		game, err := registry.Create(selected.GameID)
		if err != nil {
			// Shouldn't happen since menu only shows registered games
			return m.backToMenu()
		}

		m.config = m.menu.Config()
		m.config.Seed = time.Now().UnixNano()
		m.opts.Logger.Info("game started", "game", game.ID())

		m.conn.setGame(game)
		gameModel := NewModel(game, m.store, m.config, m.opts)
		m.gameModel = &gameModel
		return m, m.gameModel.Init()
	}

	return m, cmd
}

// updateScoreboard handles updates when the scoreboard is open.
func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scoreboard.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scoreboard = &sb
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.gameModel.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.gameModel = &gameModel
	}

	if m.gameModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.gameModel.BackToMenu() {
		return m.backToMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	switch {
	case m.quitting:
		return ""
	case m.gameModel != nil:
		return m.gameModel.View()
	case m.scoreboard != nil:
		return m.scoreboard.View()
	default:
		return m.menu.View()
	}
}
