package gems

import (
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/tap-match/internal/core"
	"github.com/vovakirdan/tap-match/internal/match3"
)

const (
	cellWidth    = 3 // Bracket, glyph, bracket
	hudHeight    = 3
	footerHeight = 2
)

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		dst.DrawTextCentered(g.screenH/2, "Window too small")
		dst.DrawTextCentered(g.screenH/2+1, "Please resize terminal")
		return
	}

	box := g.boardRect()
	boardX, boardY, boardW, boardH := box.X, box.Y, box.W, box.H

	g.renderHUD(dst, boardX, boardW)
	dst.DrawBox(core.NewRect(boardX, boardY, boardW, boardH), core.ColorGray)
	g.renderBoard(dst, boardX+1, boardY+1)
	g.renderFooter(dst, boardY+boardH)
	g.renderOverlays(dst, boardX+boardW/2, boardY+boardH/2)
}

// boardRect is the board frame; cells start one column and one row inside it.
func (g *Game) boardRect() core.Rect {
	n := g.cfg.Board.Size
	w := n*cellWidth + 2
	return core.NewRect((g.screenW-w)/2, hudHeight, w, n+2)
}

func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	dst.DrawTextCenteredColor(0, g.Title(), core.ColorBrightYellow)

	score := fmt.Sprintf("Score: %d", g.State().Score)
	dst.DrawText(boardX, 1, score)

	moves := "Moves: ∞"
	if g.cfg.Session.Moves > 0 {
		moves = fmt.Sprintf("Moves: %d", g.movesLeft)
	}
	dst.DrawText(boardX+boardW-utf8.RuneCountInString(moves), 1, moves)

	if g.cfg.Special.Enabled && g.session != nil {
		status := "Wildcard: earn one with a group of 4+"
		color := core.ColorGray
		switch {
		case g.session.SpecialLive():
			status = fmt.Sprintf("Wildcard %c ready: swap it with a tile", g.wild.glyph)
			color = g.wild.color
		case g.session.SpecialUsed():
			status = "Wildcard used"
		}
		dst.DrawTextCenteredColor(2, status, color)
	}
}

func (g *Game) renderBoard(dst *core.Screen, originX, originY int) {
	if g.session == nil {
		return
	}
	grid := g.session.Grid()
	if grid == nil {
		return
	}

	flashing := make(map[match3.Pos]bool, len(g.flash))
	for _, p := range g.flash {
		flashing[p] = true
	}
	hinted := g.hintTicks > 0

	n := grid.Size()
	for r := range n {
		for c := range n {
			p := match3.P(r, c)
			x := originX + c*cellWidth
			y := originY + r

			t := g.lookOf(grid.Get(p))
			if flashing[p] {
				t = tileLook{glyph: '✶', color: core.ColorBrightWhite}
			}
			dst.SetCell(x+1, y, t.glyph, t.color)

			switch {
			case p == g.cursor && !g.gameOver:
				dst.SetCell(x, y, '[', core.ColorBrightYellow)
				dst.SetCell(x+2, y, ']', core.ColorBrightYellow)
			case g.hasSel && p == g.selected:
				dst.SetCell(x, y, '>', core.ColorBrightGreen)
				dst.SetCell(x+2, y, '<', core.ColorBrightGreen)
			case hinted && (p == g.hint.A || p == g.hint.B):
				dst.SetCell(x, y, '(', core.ColorCyan)
				dst.SetCell(x+2, y, ')', core.ColorCyan)
			}
		}
	}
}

func (g *Game) lookOf(t match3.Tile) tileLook {
	switch {
	case t == match3.Special:
		return g.wild
	case t.IsOrdinary() && int(t) <= len(g.palette):
		return g.palette[t-1]
	default:
		return tileLook{glyph: ' '}
	}
}

func (g *Game) renderFooter(dst *core.Screen, y int) {
	if g.message != "" {
		color := core.ColorBrightGreen
		if g.lastDelta == 0 {
			color = core.ColorGray
		}
		dst.DrawTextCenteredColor(y, g.message, color)
	}
	dst.DrawTextCenteredColor(y+1, g.Controls(), core.ColorGray)
}

func (g *Game) renderOverlays(dst *core.Screen, centerX, centerY int) {
	switch {
	case g.paused:
		g.drawOverlay(dst, centerX, centerY, "PAUSED", "Press P to resume")
	case g.gameOver:
		total := fmt.Sprintf("Total reward: %d", g.State().Score)
		credit := "Press R to play again"
		if g.settled {
			credit = "Reward credited  R: play again"
		}
		g.drawOverlay(dst, centerX, centerY, "GAME OVER", total, credit)
	}
}

func (g *Game) drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, utf8.RuneCountInString(line))
	}

	boxW := maxLen + 4
	boxH := len(lines) + 2
	boxX := centerX - boxW/2
	boxY := centerY - boxH/2

	for y := boxY; y < boxY+boxH; y++ {
		for x := boxX; x < boxX+boxW; x++ {
			dst.Set(x, y, ' ')
		}
	}
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorBrightWhite)

	for i, line := range lines {
		x := centerX - utf8.RuneCountInString(line)/2
		dst.DrawText(x, boxY+1+i, line)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows/WASD: Move | Space: Select/Swap | H: Hint | P: Pause | Q: Quit"
}
