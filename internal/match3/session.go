package match3

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// maxStabilizePasses bounds the replace-matched-cells loop of board generation.
	maxStabilizePasses = 1000
	// maxGenerateAttempts bounds how many fresh boards are tried before giving up.
	maxGenerateAttempts = 100
	// maxCascadeSteps bounds one move's cascade; hitting it regenerates the board.
	maxCascadeSteps = 512
)

// Source is the random number source used for tile draws and placements.
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// RewardLedger receives the session total when a session ends.
type RewardLedger interface {
	FlushReward(ctx context.Context, amount int) error
}

// LedgerFunc adapts a function to RewardLedger.
type LedgerFunc func(ctx context.Context, amount int) error

// FlushReward calls f.
func (f LedgerFunc) FlushReward(ctx context.Context, amount int) error {
	return f(ctx, amount)
}

// State is the lifecycle stage of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateResolving
	StateFlushing
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateResolving:
		return "resolving"
	case StateFlushing:
		return "flushing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// CascadeStep records one clear-and-refill pass of a move.
type CascadeStep struct {
	Groups   []Group // Empty for a wildcard clear
	Cleared  []Pos
	Refilled []Pos
	Score    int

	Wildcard       bool // The pass was a wildcard clear
	SpawnedSpecial bool // A fresh wildcard was placed during this pass
}

// MoveResult is returned by ProposeSwap and ActivateSpecial.
// Rejected moves have Accepted == false and leave the board unchanged.
type MoveResult struct {
	Accepted       bool
	Reason         Reason
	RewardDelta    int
	Reshuffled     bool
	SpecialUsed    bool
	SpecialCleared int // Tiles removed by the wildcard, excluding the wildcard itself
	Cascades       []CascadeStep
	Total          int
}

// Err returns the sentinel error for a rejected move, or nil.
func (r MoveResult) Err() error {
	return r.Reason.Err()
}

// EndResult is returned by EndSession.
type EndResult struct {
	TotalReward int
}

// Option configures a Session.
type Option func(*Session)

// WithSource sets the random source. Use a seeded source for reproducible boards.
func WithSource(src Source) Option {
	return func(s *Session) {
		s.src = src
	}
}

// WithSeed seeds a math/rand source.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.src = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLedger sets the collaborator that receives the total on EndSession.
func WithLedger(ledger RewardLedger) Option {
	return func(s *Session) {
		s.ledger = ledger
	}
}

// Session owns one board and its reward total.
//
// Every accepted move resolves its whole cascade before returning. Calls made
// while another move or the end-of-session flush is running are rejected with
// ReasonBusy / ErrSessionBusy rather than queued.
type Session struct {
	cfg    Config
	src    Source
	logger *log.Logger
	ledger RewardLedger

	busy atomic.Bool
	mu   sync.Mutex

	state       State
	grid        *Grid
	total       int
	specialUsed bool // Wildcard consumed in the current life
	reshuffles  int
	moves       int
}

// NewSession validates cfg and returns an idle session.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s, nil
}

// StartSession creates a session and generates its first board.
func StartSession(cfg Config, opts ...Option) (*Session, error) {
	s, err := NewSession(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start generates a fresh board without pre-existing matches and enters the
// running state. It may only be called on an idle session.
func (s *Session) Start() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrSessionBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("match3: start in state %s: %w", s.state, ErrSessionNotRunning)
	}

	g, err := s.generate()
	if err != nil {
		return err
	}
	s.grid = g
	if s.cfg.Special.Enabled && s.cfg.Special.PlaceAtStart {
		s.placeSpecial()
	}
	s.state = StateRunning
	s.logger.Debug("session started", "size", s.cfg.Size, "tiles", s.cfg.Tiles, "special", s.cfg.Special.Enabled)
	return nil
}

// StartFrom adopts a prepared board and enters the running state.
// The board must match the configured size, hold only known tiles, contain
// no runs and at most one wildcard. A deadlocked board is reshuffled right
// away; the returned flag reports that.
func (s *Session) StartFrom(g *Grid) (reshuffled bool, err error) {
	if !s.busy.CompareAndSwap(false, true) {
		return false, ErrSessionBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return false, fmt.Errorf("match3: start in state %s: %w", s.state, ErrSessionNotRunning)
	}
	if err := s.checkBoard(g); err != nil {
		return false, err
	}

	s.grid = g.Clone()
	s.state = StateRunning
	return s.settle(), nil
}

func (s *Session) checkBoard(g *Grid) error {
	if g == nil || g.Size() != s.cfg.Size {
		return fmt.Errorf("match3: board must be %dx%d", s.cfg.Size, s.cfg.Size)
	}
	specials := 0
	for _, t := range g.cells {
		switch {
		case t == Special:
			specials++
		case t == Empty:
			return fmt.Errorf("match3: board has empty cells")
		case int(t) > s.cfg.Tiles:
			return fmt.Errorf("match3: tile %d outside 1..%d", t, s.cfg.Tiles)
		}
	}
	if specials > 1 || (specials == 1 && !s.cfg.Special.Enabled) {
		return fmt.Errorf("match3: board has %d special tiles", specials)
	}
	if HasMatch(g) {
		return fmt.Errorf("match3: board has pre-existing matches")
	}
	return nil
}

// ProposeSwap tries to swap a and b. Swaps involving the wildcard are
// resolved as wildcard clears; every other swap must be adjacent and create
// a match. Accepted moves run their full cascade and may reshuffle a
// deadlocked board before returning.
func (s *Session) ProposeSwap(a, b Pos) MoveResult {
	if !s.busy.CompareAndSwap(false, true) {
		return s.reject(ReasonBusy)
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return s.rejectLocked(ReasonNotRunning)
	}
	if !s.grid.InBounds(a) || !s.grid.InBounds(b) || !Adjacent(a, b) {
		return s.rejectLocked(ReasonNotAdjacent)
	}

	ta, tb := s.grid.Get(a), s.grid.Get(b)
	if ta == Special {
		return s.playSpecial(a, b)
	}
	if tb == Special {
		return s.playSpecial(b, a)
	}

	if !WouldMatch(s.grid, a, b) {
		return s.rejectLocked(ReasonNoMatch)
	}

	s.state = StateResolving
	s.grid.Swap(a, b)
	steps, gained := s.cascade()
	return s.finishMove(steps, gained)
}

// finishMove books the reward, checks for deadlock and returns to running.
func (s *Session) finishMove(steps []CascadeStep, gained int) MoveResult {
	s.total += gained
	s.moves++
	res := MoveResult{
		Accepted:    true,
		RewardDelta: gained,
		Cascades:    steps,
	}
	res.Reshuffled = s.settle()
	s.state = StateRunning
	res.Total = s.total
	return res
}

// cascade clears matches and refills until the board is stable.
func (s *Session) cascade() ([]CascadeStep, int) {
	var steps []CascadeStep
	gained := 0

	for range maxCascadeSteps {
		matched := FindMatches(s.grid)
		if len(matched) == 0 {
			return steps, gained
		}

		res := Resolve(s.grid, matched, s.cfg.Scoring)
		if len(res.Groups) == 0 {
			return steps, gained
		}

		step := CascadeStep{
			Groups:  res.Groups,
			Cleared: res.Cleared(),
			Score:   res.Score,
		}
		step.SpawnedSpecial = s.maybeSpawnSpecial(res)
		step.Refilled = ApplyGravity(s.grid, s.drawTile)

		steps = append(steps, step)
		gained += res.Score
	}

	// A cascade that never settles leaves runs on the board; start over on a
	// clean board so the stable-state invariants hold.
	s.logger.Error("cascade did not settle, regenerating board", "steps", maxCascadeSteps)
	s.reshuffle()
	return steps, gained
}

// settle reshuffles the board when no legal move remains.
func (s *Session) settle() bool {
	if HasLegalMove(s.grid) || s.specialPlayable() {
		return false
	}
	s.reshuffle()
	return true
}

// reshuffle replaces the board in place, keeping the reward total.
func (s *Session) reshuffle() {
	_, hadSpecial := s.grid.SpecialPos()

	g, err := s.generate()
	if err != nil {
		s.logger.Error("reshuffle failed, keeping board", "error", err)
		return
	}
	s.grid = g
	s.reshuffles++

	if s.cfg.Special.Scope == ScopeBoard {
		s.specialUsed = false
	}
	if s.cfg.Special.Enabled && (hadSpecial || (s.cfg.Special.PlaceAtStart && !s.specialUsed)) {
		s.placeSpecial()
	}
	s.logger.Debug("board reshuffled", "reshuffles", s.reshuffles, "total", s.total)
}

// generate fills a new board with random tiles, replaces matched cells until
// no run is left and retries until the board has a legal move.
func (s *Session) generate() (*Grid, error) {
	for range maxGenerateAttempts {
		g := NewGrid(s.cfg.Size)
		for i := range g.cells {
			g.cells[i] = s.drawTile()
		}
		if !s.stabilize(g) {
			continue
		}
		if HasLegalMove(g) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("match3: could not generate a playable %dx%d board with %d tiles",
		s.cfg.Size, s.cfg.Size, s.cfg.Tiles)
}

func (s *Session) stabilize(g *Grid) bool {
	for range maxStabilizePasses {
		matched := FindMatches(g)
		if len(matched) == 0 {
			return true
		}
		for _, p := range matched {
			g.Set(p, s.drawTile())
		}
	}
	return false
}

// drawTile returns a random ordinary tile.
func (s *Session) drawTile() Tile {
	return Tile(s.src.Intn(s.cfg.Tiles) + 1)
}

func (s *Session) reject(reason Reason) MoveResult {
	return MoveResult{Reason: reason}
}

// rejectLocked is reject for callers holding mu; it reports the current total.
func (s *Session) rejectLocked(reason Reason) MoveResult {
	return MoveResult{Reason: reason, Total: s.total}
}

// EndSession flushes the total to the ledger once and discards the board.
// If the flush fails the session keeps running with its total intact and a
// *RewardFlushError is returned so the caller can retry.
// Ending an idle or already ended session performs no flush.
func (s *Session) EndSession(ctx context.Context) (EndResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return EndResult{}, ErrSessionBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	total := s.total
	switch s.state {
	case StateEnded:
		s.mu.Unlock()
		return EndResult{TotalReward: total}, nil
	case StateIdle:
		s.state = StateEnded
		s.mu.Unlock()
		return EndResult{TotalReward: total}, nil
	}
	s.state = StateFlushing
	s.mu.Unlock()

	if s.ledger != nil && total > 0 {
		if err := s.ledger.FlushReward(ctx, total); err != nil {
			s.mu.Lock()
			s.state = StateRunning
			s.mu.Unlock()
			s.logger.Warn("reward flush failed", "total", total, "error", err)
			return EndResult{TotalReward: total}, &RewardFlushError{Total: total, Err: err}
		}
	}

	s.mu.Lock()
	s.state = StateEnded
	s.grid = nil
	moves, reshuffles := s.moves, s.reshuffles
	s.mu.Unlock()

	s.logger.Info("session ended", "total", total, "moves", moves, "reshuffles", reshuffles)
	return EndResult{TotalReward: total}, nil
}

// State returns the lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a move, start or flush is in progress.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Total returns the accumulated reward.
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Moves returns the number of accepted moves.
func (s *Session) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}

// Reshuffles returns how many times the board was regenerated after a deadlock.
func (s *Session) Reshuffles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reshuffles
}

// Grid returns a copy of the live board, or nil when there is none.
func (s *Session) Grid() *Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid == nil {
		return nil
	}
	return s.grid.Clone()
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Hint returns a legal move for the current board. When only the wildcard
// can be played the move pairs it with a neighbour.
func (s *Session) Hint() (Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid == nil {
		return Move{}, false
	}
	if m, ok := FindMove(s.grid); ok {
		return m, true
	}
	if sp, ok := s.grid.SpecialPos(); ok {
		if target, ok := s.specialTarget(sp); ok {
			return Move{A: sp, B: target}, true
		}
	}
	return Move{}, false
}
