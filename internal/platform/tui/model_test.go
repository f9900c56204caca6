package tui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/match3"
	"github.com/vovakirdan/tap-match/internal/registry"
	"github.com/vovakirdan/tap-match/internal/storage"
)

const stubID = "tui-stub"

// stubGame scores 10 per select and credits its score once on settle.
type stubGame struct {
	score      int
	over       bool
	settled    bool
	failSettle int // Settles that fail before one succeeds
	resets     int
	resized    bool
}

func (g *stubGame) ID() string    { return stubID }
func (g *stubGame) Title() string { return "Stub" }

func (g *stubGame) Reset(core.RuntimeConfig) {
	g.resets++
	g.score = 0
	g.over = false
	g.settled = false
}

func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionSelect) && !g.over {
		g.score += 10
	}
	return core.StepResult{State: g.State()}
}

func (g *stubGame) Render(dst *core.Screen) { dst.DrawText(0, 0, "stub") }

func (g *stubGame) State() core.GameState {
	return core.GameState{Score: g.score, GameOver: g.over}
}

func (g *stubGame) SettleRewards(ctx context.Context, ledger match3.RewardLedger) (int, error) {
	if g.settled {
		return 0, nil
	}
	if g.failSettle > 0 {
		g.failSettle--
		return 0, errors.New("ledger offline")
	}
	if ledger != nil && g.score > 0 {
		if err := ledger.FlushReward(ctx, g.score); err != nil {
			return 0, err
		}
	}
	g.settled = true
	g.over = true
	return g.score, nil
}

func (g *stubGame) Resize(int, int) { g.resized = true }

func (g *stubGame) PointAt(x, y int) bool { return x == 1 && y == 1 }

func init() {
	registry.Register(stubID, func() registry.Game { return &stubGame{} })
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestModel(g registry.Game, store *storage.Store) Model {
	return NewModel(g, store, core.DefaultConfig(), ModelOptions{
		Player: "alice",
		Logger: log.New(io.Discard),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func balance(t *testing.T, store *storage.Store) int64 {
	t.Helper()
	b, err := store.Balance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	return b
}

func TestModelSettlesOnGameOver(t *testing.T) {
	store := openStore(t)
	g := &stubGame{score: 30, over: true}
	m := newTestModel(g, store)

	m, _ = update(t, m, TickMsg{})
	m, _ = update(t, m, TickMsg{})

	if ok, amount := m.Settled(); !ok || amount != 30 {
		t.Errorf("Settled() = (%v, %d), expected (true, 30)", ok, amount)
	}
	if b := balance(t, store); b != 30 {
		t.Errorf("balance = %d, expected 30", b)
	}
	high, err := store.HighScore(stubID)
	if err != nil || high != 30 {
		t.Errorf("HighScore = (%d, %v), expected 30", high, err)
	}
}

func TestModelRestartWaitsForLedger(t *testing.T) {
	store := openStore(t)
	g := &stubGame{score: 30, over: true, failSettle: 2}
	m := newTestModel(g, store)

	m, _ = update(t, m, TickMsg{}) // Settle on game over fails
	m, _ = update(t, m, runeKey('r'))
	m, _ = update(t, m, TickMsg{}) // Retry fails again
	if g.resets != 0 {
		t.Fatal("restart must wait until the reward is settled")
	}

	m, _ = update(t, m, runeKey('r'))
	m, _ = update(t, m, TickMsg{})
	if g.resets != 1 {
		t.Fatalf("resets = %d, expected a restart after settling", g.resets)
	}
	if b := balance(t, store); b != 30 {
		t.Errorf("balance = %d, expected 30", b)
	}
	if ok, _ := m.Settled(); ok {
		t.Error("a new session starts unsettled")
	}
}

func TestModelQuitSettles(t *testing.T) {
	store := openStore(t)
	g := &stubGame{}
	m := newTestModel(g, store)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = update(t, m, TickMsg{})
	m, cmd := update(t, m, runeKey('q'))

	if cmd == nil || !m.IsQuitting() {
		t.Fatal("q should quit")
	}
	if b := balance(t, store); b != 10 {
		t.Errorf("balance = %d, expected the running total 10", b)
	}
}

func TestModelBack(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(g, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Fatal("back during play should go to the game")
	}
	if !m.inputFrame.Has(core.ActionBack) {
		t.Error("back during play should reach the game")
	}

	g.over = true
	m, _ = update(t, m, TickMsg{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("back after game over should leave the game")
	}
	if cmd != nil {
		t.Error("an embedded model should not quit the program")
	}
}

func TestModelResizeKeepsSession(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(g, nil)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if !g.resized || g.resets != 0 {
		t.Error("resizable games should be resized, not reset")
	}
	if m.screen.Width() != 100 || m.screen.Height() != 40 {
		t.Errorf("screen = %dx%d, expected 100x40", m.screen.Width(), m.screen.Height())
	}
}

func TestModelMouseSelects(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(g, nil)

	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, TickMsg{})
	if g.score != 0 {
		t.Error("a click outside the board should do nothing")
	}

	m, _ = update(t, m, tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	_, _ = update(t, m, TickMsg{})
	if g.score != 10 {
		t.Errorf("score = %d, a click on the board should select", g.score)
	}
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{runeKey('s'), core.ActionDown, false},
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{runeKey('d'), core.ActionRight, false},
		{tea.KeyMsg{Type: tea.KeySpace}, core.ActionSelect, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm, false},
		{runeKey('h'), core.ActionHint, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{runeKey('p'), core.ActionPause, false},
		{runeKey('r'), core.ActionRestart, false},
		{runeKey('q'), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{runeKey('x'), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			if action != tt.action || quit != tt.quit {
				t.Errorf("MapKey(%q) = (%v, %v), expected (%v, %v)", tt.msg.String(), action, quit, tt.action, tt.quit)
			}
		})
	}

	if km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyTab}) != MenuActionScoreboard {
		t.Error("tab should open the scoreboard")
	}
}

func TestMenuSelect(t *testing.T) {
	for _, embedded := range []bool{false, true} {
		m := NewMenuModel(nil, core.DefaultConfig(), "alice")
		if embedded {
			m = m.Embed()
		}
		for i, item := range m.items {
			if item.GameID == stubID {
				m.cursor = i
			}
		}

		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		mm := next.(MenuModel)
		if mm.Selected() == nil || mm.Selected().GameID != stubID {
			t.Fatalf("embedded=%v: expected %s selected", embedded, stubID)
		}
		if embedded != (cmd == nil) {
			t.Errorf("embedded=%v: only standalone menus quit on select", embedded)
		}
	}
}

func TestRenderScreenPlainText(t *testing.T) {
	s := core.NewScreen(4, 2)
	s.DrawText(0, 0, "ab")
	s.DrawText(0, 1, "cd")

	if got := NewScreenRenderer(nil).Render(s); got != "ab  \ncd  " {
		t.Errorf("Render = %q", got)
	}
}
