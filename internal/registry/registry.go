// Package registry keeps the factories of playable games. Game packages
// register themselves from init(), so the CLI and the SSH server can list
// and create games by ID.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/match3"
)

// Game is driven by the platform one tick at a time.
type Game interface {
	// ID is the stable identifier used on the command line and in storage.
	ID() string

	// Title is the display name.
	Title() string

	// Reset starts a new session. Called once at start and after game over.
	Reset(cfg core.RuntimeConfig)

	// Step advances the game by one tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws into a pre-cleared screen.
	Render(dst *core.Screen)

	State() core.GameState
}

// Rewarder is implemented by games whose sessions earn a balance reward.
// The platform calls SettleRewards once the game is over.
type Rewarder interface {
	SettleRewards(ctx context.Context, ledger match3.RewardLedger) (int, error)
}

// Resizable games adapt to a new screen size without losing the session.
// Games without it are Reset on resize.
type Resizable interface {
	Resize(width, height int)
}

// Pointer games accept mouse taps. PointAt moves the cursor to the cell
// under screen coordinates x, y and reports whether there is one.
type Pointer interface {
	PointAt(x, y int) bool
}

// GameInfo describes a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new game instance.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory. Panics on a duplicate ID.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered games sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a game by ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// Exists reports whether a game ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
