// Package snake implements the game state machine: the snake body, heading,
// apple, score, and the per-tick transition that moves them. It is pure
// logic; the platform layer owns timing, input capture, and display.
package snake

import (
	"fmt"
	"math/rand"

	"github.com/termarcade/snake/internal/config"
	"github.com/termarcade/snake/internal/core"
)

// Outcome tags the result of a single tick.
type Outcome int

const (
	OutcomeContinued Outcome = iota
	OutcomeAte
	OutcomeTerminated
	OutcomeBoardFull
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeContinued:
		return "continued"
	case OutcomeAte:
		return "ate"
	case OutcomeTerminated:
		return "terminated"
	case OutcomeBoardFull:
		return "board_full"
	default:
		return "unknown"
	}
}

const (
	spawnLength = 3

	// neckExemption is the number of body cells nearest the head that are
	// never counted as self-collision: they are geometrically unreachable
	// as real collisions at current length. Capped at the body length so
	// short snakes keep real collisions.
	neckExemption = 3

	// placeAppleAttempts bounds rejection sampling before falling back to
	// enumerating free cells.
	placeAppleAttempts = 128
)

// Game owns the complete game state. It is mutated only by Tick (via Step)
// and Reset, and has exactly one owner at a time: the loop driving it.
type Game struct {
	cfg  config.Config
	rng  *rand.Rand
	tick uint64

	// Snake state
	body     []core.Point        // Head at index 0, tail last
	occupied map[core.Point]bool // Cell set of body, for O(1) membership
	heading  core.Direction

	apple core.Point
	score int

	// Terminal state. Once terminated the body, apple, and score are frozen.
	terminated bool
	boardFull  bool

	paused   bool
	tooSmall bool

	// Screen layout
	screenW    int
	screenH    int
	hudHeight  int
	mapOffsetX int
	mapOffsetY int
}

// New creates a game for the given board configuration.
// Call Reset before the first Step.
func New(cfg config.Config) *Game {
	return &Game{cfg: cfg}
}

// Title returns the display name shown in the HUD.
func (g *Game) Title() string {
	return "Snake"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.tick = 0
	g.score = 0
	g.terminated = false
	g.boardFull = false
	g.paused = false
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH
	g.hudHeight = 2

	w := g.cfg.Board.Width
	h := g.cfg.Board.Height

	// Check if screen is too small for the board plus HUD
	g.tooSmall = g.screenW < w || g.screenH < h+g.hudHeight+1

	// Center the board
	g.mapOffsetX = (g.screenW - w) / 2
	g.mapOffsetY = g.hudHeight

	// Initial snake: length 3, horizontal, centered vertically, heading right.
	headX := core.Clamp(5, spawnLength, w-2)
	midY := h / 2
	g.body = make([]core.Point, 0, spawnLength)
	g.occupied = make(map[core.Point]bool, spawnLength)
	for i := 0; i < spawnLength; i++ {
		p := core.Point{X: headX - i, Y: midY}
		g.body = append(g.body, p)
		g.occupied[p] = true
	}
	g.heading = core.DirRight

	// The spawn snake never fills the interior, so placement succeeds.
	g.apple, _ = g.PlaceApple()
}

// Resize updates the screen dimensions without restarting the run. The board
// is re-centered and the too-small pause recomputed; the snake, apple, and
// score are untouched.
func (g *Game) Resize(screenW, screenH int) {
	g.screenW = screenW
	g.screenH = screenH

	w := g.cfg.Board.Width
	h := g.cfg.Board.Height

	g.tooSmall = g.screenW < w || g.screenH < h+g.hudHeight+1
	g.mapOffsetX = (g.screenW - w) / 2
	g.mapOffsetY = g.hudHeight
}

// Tick advances the state machine by one move. req is the direction key
// delivered within this tick's input window, or DirNone when there was none.
// Calling Tick on a terminated game is a caller contract violation: state
// after termination is frozen, so it fails loudly.
func (g *Game) Tick(req core.Direction) Outcome {
	if g.terminated {
		panic("snake: Tick called on a terminated game")
	}
	g.tick++

	// Resolve heading. Self-reversal requests are silently ignored.
	if req != core.DirNone && req != g.heading.Opposite() {
		g.heading = req
	}

	// Candidate head, wrapped per axis.
	dx, dy := g.heading.Vector()
	head := g.body[0]
	cand := core.Point{
		X: core.Wrap(head.X+dx, g.cfg.Board.Width),
		Y: core.Wrap(head.Y+dy, g.cfg.Board.Height),
	}

	// Apple check precedes the collision check. Placement keeps the apple
	// disjoint from the body, so eating and colliding on the same cell
	// cannot both hold.
	ate := cand == g.apple

	if g.collides(cand) {
		// The pre-collision body, apple, and score are preserved for reporting.
		g.terminated = true
		return OutcomeTerminated
	}

	// Advance: push the candidate head; growth skips the tail removal.
	g.body = append([]core.Point{cand}, g.body...)
	g.occupied[cand] = true
	if !ate {
		last := len(g.body) - 1
		tail := g.body[last]
		g.body = g.body[:last]
		// Via wrap a short snake's head can land on the departing tail
		// cell; that cell is still occupied by the new head.
		if tail != g.body[0] {
			delete(g.occupied, tail)
		}
		return OutcomeContinued
	}

	g.score++
	apple, ok := g.PlaceApple()
	if !ok {
		g.boardFull = true
		g.terminated = true
		return OutcomeBoardFull
	}
	g.apple = apple
	return OutcomeAte
}

// collides reports whether the candidate head hits the snake's own body.
// The cells nearest the head are exempt; see neckExemption.
func (g *Game) collides(cand core.Point) bool {
	if !g.occupied[cand] {
		return false
	}
	exempt := core.Min(neckExemption, len(g.body))
	for i := 0; i < exempt; i++ {
		if g.body[i] == cand {
			return false
		}
	}
	return true
}

// PlaceApple draws a position uniformly at random from the playable
// interior, rejecting cells occupied by the snake. Returns false when the
// snake fills the entire interior; callers must treat that as a terminal
// board-full condition rather than retrying.
func (g *Game) PlaceApple() (core.Point, bool) {
	w := g.cfg.Board.Width
	h := g.cfg.Board.Height
	if len(g.body) >= g.cfg.Board.Interior() {
		return core.Point{}, false
	}

	for i := 0; i < placeAppleAttempts; i++ {
		p := core.Point{X: 1 + g.rng.Intn(w-2), Y: 1 + g.rng.Intn(h-2)}
		if !g.occupied[p] {
			return p, true
		}
	}

	// Nearly-full board: enumerate the free cells so placement stays total.
	free := make([]core.Point, 0, g.cfg.Board.Interior()-len(g.body))
	for y := 1; y <= h-2; y++ {
		for x := 1; x <= w-2; x++ {
			p := core.Point{X: x, Y: y}
			if !g.occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return core.Point{}, false
	}
	return free[g.rng.Intn(len(free))], true
}

// Step advances the game by one platform tick. It handles the platform
// concerns (pause, restart, too-small screens) and feeds the directional
// request into Tick. Once the game is terminated Step no longer ticks the
// state machine.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionRestart) && g.terminated {
		g.Reset(core.RuntimeConfig{
			Seed:    g.rng.Int63(),
			ScreenW: g.screenW,
			ScreenH: g.screenH,
		})
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.terminated {
		g.paused = !g.paused
	}

	if g.terminated || g.paused || g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	g.Tick(in.Direction())
	return core.StepResult{State: g.State()}
}

// --- Read-only accessors, consumed by the renderer each tick ---

// Body returns the snake cells in order, head first.
func (g *Game) Body() []core.Point {
	out := make([]core.Point, len(g.body))
	copy(out, g.body)
	return out
}

// Apple returns the current apple position.
func (g *Game) Apple() core.Point {
	return g.apple
}

// Score returns the current score.
func (g *Game) Score() int {
	return g.score
}

// Heading returns the current movement direction.
func (g *Game) Heading() core.Direction {
	return g.heading
}

// Terminated reports whether the game has reached its terminal state.
func (g *Game) Terminated() bool {
	return g.terminated
}

// BoardFull reports whether the game ended with the snake filling the board.
func (g *Game) BoardFull() bool {
	return g.boardFull
}

// Paused reports whether the game is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// State returns the current game state for the platform.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.terminated,
		Paused:   g.paused,
	}
}

// Render draws the game to the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	g.renderHUD(dst)

	if g.tooSmall {
		g.renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}

	g.renderWalls(dst)

	// Apple
	ax := g.mapOffsetX + g.apple.X
	ay := g.mapOffsetY + g.apple.Y
	dst.SetCell(ax, ay, config.Rune(g.cfg.Glyphs.Apple, '○'), core.ColorBrightRed)

	g.renderSnake(dst)

	switch {
	case g.boardFull:
		g.renderOverlay(dst, "You Win!", fmt.Sprintf("Board full! You scored: %d", g.score))
	case g.terminated:
		g.renderOverlay(dst, "Game Over", fmt.Sprintf("You scored: %d. Press R to restart", g.score))
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// renderHUD draws the top status bar.
func (g *Game) renderHUD(dst *core.Screen) {
	hud := fmt.Sprintf(" %s   Score: %d   Q: quit  P: pause", g.Title(), g.score)
	dst.DrawText(0, 0, hud)
	dst.DrawHLine(0, 1, dst.Width(), '─')
}

// renderWalls draws the permanent wall ring.
func (g *Game) renderWalls(dst *core.Screen) {
	w := g.cfg.Board.Width
	h := g.cfg.Board.Height
	wall := config.Rune(g.cfg.Glyphs.Wall, '█')

	for x := 0; x < w; x++ {
		dst.SetCell(g.mapOffsetX+x, g.mapOffsetY, wall, core.ColorBrightCyan)
		dst.SetCell(g.mapOffsetX+x, g.mapOffsetY+h-1, wall, core.ColorBrightCyan)
	}
	for y := 0; y < h; y++ {
		dst.SetCell(g.mapOffsetX, g.mapOffsetY+y, wall, core.ColorBrightCyan)
		dst.SetCell(g.mapOffsetX+w-1, g.mapOffsetY+y, wall, core.ColorBrightCyan)
	}
}

// renderSnake draws the snake, head in a distinct color from the body.
func (g *Game) renderSnake(dst *core.Screen) {
	headRune := config.Rune(g.cfg.Glyphs.Head, '⬤')
	bodyRune := config.Rune(g.cfg.Glyphs.Body, '⬤')

	for i, seg := range g.body {
		sx := g.mapOffsetX + seg.X
		sy := g.mapOffsetY + seg.Y
		if i == 0 {
			dst.SetCell(sx, sy, headRune, core.ColorBlue)
		} else {
			dst.SetCell(sx, sy, bodyRune, core.ColorBrightGreen)
		}
	}
}

// renderOverlay draws a centered boxed message over the board.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len(line1), len(line2)) + 4
	boxH := 5
	box := core.NewRect((w-boxW)/2, (h-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box)
	dst.DrawTextCentered(box.Y+1, line1)
	dst.DrawTextCentered(box.Y+3, line2)
}
