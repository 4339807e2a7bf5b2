package snake

import (
	"strings"
	"testing"

	"github.com/termarcade/snake/internal/config"
	"github.com/termarcade/snake/internal/core"
)

func newTestGame(width, height int, seed int64) *Game {
	cfg := config.Default()
	cfg.Board.Width = width
	cfg.Board.Height = height

	g := New(cfg)
	g.Reset(core.RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		Seed:    seed,
	})
	return g
}

// setBody replaces the snake body (head first) and rebuilds the occupancy set.
func setBody(g *Game, pts ...core.Point) {
	g.body = append([]core.Point(nil), pts...)
	g.occupied = make(map[core.Point]bool, len(pts))
	for _, p := range pts {
		g.occupied[p] = true
	}
}

func TestSpawn(t *testing.T) {
	g := newTestGame(40, 20, 1)

	if len(g.body) != 3 {
		t.Fatalf("Spawn length = %d, expected 3", len(g.body))
	}
	if g.heading != core.DirRight {
		t.Errorf("Spawn heading = %v, expected right", g.heading)
	}
	if g.score != 0 {
		t.Errorf("Spawn score = %d, expected 0", g.score)
	}

	// Horizontal, centered vertically
	for i, seg := range g.body {
		if seg.Y != 10 {
			t.Errorf("Segment %d at y=%d, expected 10", i, seg.Y)
		}
		if seg.X != g.body[0].X-i {
			t.Errorf("Segment %d at x=%d, expected %d", i, seg.X, g.body[0].X-i)
		}
	}

	if g.occupied[g.apple] {
		t.Errorf("Spawn apple at (%d,%d) overlaps the snake", g.apple.X, g.apple.Y)
	}
}

func TestNoReversal(t *testing.T) {
	g := newTestGame(40, 20, 2)

	// Left is the opposite of the initial right heading - silently ignored.
	g.Tick(core.DirLeft)
	if g.heading != core.DirRight {
		t.Errorf("Heading after reversal request = %v, expected right", g.heading)
	}

	// A perpendicular request is honored.
	g.Tick(core.DirDown)
	if g.heading != core.DirDown {
		t.Errorf("Heading after down request = %v, expected down", g.heading)
	}

	// No input keeps the heading.
	g.Tick(core.DirNone)
	if g.heading != core.DirDown {
		t.Errorf("Heading after no input = %v, expected down", g.heading)
	}
}

func TestStraightMove(t *testing.T) {
	g := newTestGame(40, 20, 3)
	setBody(g, core.Point{X: 5, Y: 10}, core.Point{X: 4, Y: 10}, core.Point{X: 3, Y: 10})
	g.heading = core.DirRight
	g.apple = core.Point{X: 20, Y: 5} // Not in the snake's path

	outcome := g.Tick(core.DirNone)

	if outcome != OutcomeContinued {
		t.Errorf("Outcome = %v, expected continued", outcome)
	}
	want := []core.Point{{X: 6, Y: 10}, {X: 5, Y: 10}, {X: 4, Y: 10}}
	for i, p := range want {
		if g.body[i] != p {
			t.Errorf("body[%d] = %v, expected %v", i, g.body[i], p)
		}
	}
	if len(g.body) != 3 {
		t.Errorf("Length = %d, expected 3 (non-growth tick conserves length)", len(g.body))
	}
	if g.score != 0 {
		t.Errorf("Score = %d, expected 0", g.score)
	}
}

func TestGrowthTick(t *testing.T) {
	g := newTestGame(40, 20, 4)
	setBody(g, core.Point{X: 5, Y: 10}, core.Point{X: 4, Y: 10}, core.Point{X: 3, Y: 10})
	g.heading = core.DirRight
	g.apple = core.Point{X: 6, Y: 10}

	outcome := g.Tick(core.DirNone)

	if outcome != OutcomeAte {
		t.Errorf("Outcome = %v, expected ate", outcome)
	}
	want := []core.Point{{X: 6, Y: 10}, {X: 5, Y: 10}, {X: 4, Y: 10}, {X: 3, Y: 10}}
	if len(g.body) != len(want) {
		t.Fatalf("Length = %d, expected %d (growth tick adds one)", len(g.body), len(want))
	}
	for i, p := range want {
		if g.body[i] != p {
			t.Errorf("body[%d] = %v, expected %v", i, g.body[i], p)
		}
	}
	if g.score != 1 {
		t.Errorf("Score = %d, expected 1", g.score)
	}

	// The fresh apple is disjoint from the new snake.
	if g.occupied[g.apple] {
		t.Errorf("New apple at (%d,%d) overlaps the snake", g.apple.X, g.apple.Y)
	}
}

func TestSelfCollision(t *testing.T) {
	g := newTestGame(40, 20, 5)

	// Length 6, curled so that moving right puts the head on body[4].
	setBody(g,
		core.Point{X: 5, Y: 5}, // Head
		core.Point{X: 5, Y: 6},
		core.Point{X: 6, Y: 6},
		core.Point{X: 7, Y: 6},
		core.Point{X: 6, Y: 5}, // Candidate head lands here
		core.Point{X: 6, Y: 4},
	)
	g.heading = core.DirRight
	g.apple = core.Point{X: 20, Y: 15}

	before := g.Body()
	beforeScore := g.score

	outcome := g.Tick(core.DirNone)

	if outcome != OutcomeTerminated {
		t.Fatalf("Outcome = %v, expected terminated", outcome)
	}
	if !g.Terminated() {
		t.Error("Terminated() should report true")
	}

	// Pre-collision body and score are preserved.
	after := g.Body()
	if len(after) != len(before) {
		t.Fatalf("Body length changed on collision: %d vs %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("body[%d] changed on collision: %v vs %v", i, after[i], before[i])
		}
	}
	if g.score != beforeScore {
		t.Errorf("Score changed on collision: %d vs %d", g.score, beforeScore)
	}
}

func TestNeckExemption(t *testing.T) {
	g := newTestGame(40, 20, 6)
	setBody(g,
		core.Point{X: 5, Y: 5},
		core.Point{X: 5, Y: 6},
		core.Point{X: 6, Y: 6},
		core.Point{X: 7, Y: 6},
		core.Point{X: 6, Y: 5},
		core.Point{X: 6, Y: 4},
	)

	// The three cells nearest the head are exempt.
	for i := 0; i < 3; i++ {
		if g.collides(g.body[i]) {
			t.Errorf("body[%d] should be exempt from collision", i)
		}
	}
	for i := 3; i < len(g.body); i++ {
		if !g.collides(g.body[i]) {
			t.Errorf("body[%d] should collide", i)
		}
	}

	// On a length-3 snake the exemption window shrinks to the whole body.
	setBody(g, core.Point{X: 5, Y: 5}, core.Point{X: 4, Y: 5}, core.Point{X: 3, Y: 5})
	for i := range g.body {
		if g.collides(g.body[i]) {
			t.Errorf("length-3 snake: body[%d] should be exempt", i)
		}
	}
}

func TestWrapMovement(t *testing.T) {
	g := newTestGame(40, 20, 7)
	setBody(g, core.Point{X: 38, Y: 10}, core.Point{X: 37, Y: 10}, core.Point{X: 36, Y: 10})
	g.heading = core.DirRight
	g.apple = core.Point{X: 20, Y: 5}

	outcome := g.Tick(core.DirNone)

	if outcome != OutcomeContinued {
		t.Fatalf("Outcome = %v, expected continued", outcome)
	}
	if g.body[0] != (core.Point{X: 1, Y: 10}) {
		t.Errorf("Head = %v, expected wrap to (1,10)", g.body[0])
	}
}

func TestHeadOntoDepartingTail(t *testing.T) {
	g := newTestGame(40, 20, 8)

	// Heading left from x=1 wraps to x=38, which is the tail cell. On a
	// length-3 snake the tail is exempt, and the cell stays occupied by
	// the new head.
	setBody(g, core.Point{X: 1, Y: 10}, core.Point{X: 2, Y: 10}, core.Point{X: 38, Y: 10})
	g.heading = core.DirLeft
	g.apple = core.Point{X: 20, Y: 5}

	outcome := g.Tick(core.DirNone)

	if outcome != OutcomeContinued {
		t.Fatalf("Outcome = %v, expected continued", outcome)
	}
	if g.body[0] != (core.Point{X: 38, Y: 10}) {
		t.Fatalf("Head = %v, expected (38,10)", g.body[0])
	}
	if !g.occupied[g.body[0]] {
		t.Error("Head cell missing from occupancy set after landing on departing tail")
	}
	if len(g.occupied) != len(g.body) {
		t.Errorf("Occupancy set size = %d, expected %d", len(g.occupied), len(g.body))
	}

	// The next move must not be a phantom collision.
	if out := g.Tick(core.DirNone); out != OutcomeContinued {
		t.Errorf("Follow-up outcome = %v, expected continued", out)
	}
}

func TestScoreMonotonicity(t *testing.T) {
	g := newTestGame(40, 20, 9)

	prev := g.Score()
	for i := 0; i < 500 && !g.Terminated(); i++ {
		// Cycle headings to sweep the board without reversing.
		req := core.DirNone
		switch i % 40 {
		case 10:
			req = core.DirDown
		case 20:
			req = core.DirLeft
		case 30:
			req = core.DirUp
		case 0:
			req = core.DirRight
		}

		outcome := g.Tick(req)
		score := g.Score()
		switch outcome {
		case OutcomeAte:
			if score != prev+1 {
				t.Fatalf("tick %d: ate but score went %d -> %d", i, prev, score)
			}
		default:
			if score != prev {
				t.Fatalf("tick %d: outcome %v but score went %d -> %d", i, outcome, prev, score)
			}
		}
		if len(g.occupied) != len(g.body) {
			t.Fatalf("tick %d: occupancy set out of sync: %d vs %d", i, len(g.occupied), len(g.body))
		}
		prev = score
	}
}

func TestLengthConservation(t *testing.T) {
	g := newTestGame(40, 20, 10)

	for i := 0; i < 300 && !g.Terminated(); i++ {
		before := len(g.body)
		outcome := g.Tick(core.DirNone)
		after := len(g.body)

		switch outcome {
		case OutcomeAte:
			if after != before+1 {
				t.Fatalf("growth tick: length %d -> %d, expected +1", before, after)
			}
		case OutcomeContinued:
			if after != before {
				t.Fatalf("non-growth tick: length %d -> %d, expected unchanged", before, after)
			}
		}
	}
}

func TestAppleDisjointness(t *testing.T) {
	g := newTestGame(10, 10, 11)

	for i := 0; i < 200; i++ {
		p, ok := g.PlaceApple()
		if !ok {
			t.Fatal("PlaceApple reported a full board on a fresh game")
		}
		if g.occupied[p] {
			t.Fatalf("Apple placed on snake at (%d,%d)", p.X, p.Y)
		}
		if p.X < 1 || p.X > g.cfg.Board.Width-2 || p.Y < 1 || p.Y > g.cfg.Board.Height-2 {
			t.Fatalf("Apple placed outside the interior at (%d,%d)", p.X, p.Y)
		}
	}
}

func TestBoardFull(t *testing.T) {
	g := newTestGame(5, 5, 12)

	// Fill the 3x3 interior except (3,3), where the apple sits. Eating it
	// leaves no free cell, which ends the game rather than looping forever.
	setBody(g,
		core.Point{X: 2, Y: 3}, // Head, one step left of the apple
		core.Point{X: 1, Y: 3},
		core.Point{X: 1, Y: 2},
		core.Point{X: 1, Y: 1},
		core.Point{X: 2, Y: 1},
		core.Point{X: 3, Y: 1},
		core.Point{X: 3, Y: 2},
		core.Point{X: 2, Y: 2},
	)
	g.heading = core.DirRight
	g.apple = core.Point{X: 3, Y: 3}

	outcome := g.Tick(core.DirNone)

	if outcome != OutcomeBoardFull {
		t.Fatalf("Outcome = %v, expected board_full", outcome)
	}
	if !g.Terminated() || !g.BoardFull() {
		t.Error("Board-full game should be terminated with the board-full flag set")
	}
	if g.score != 1 {
		t.Errorf("Score = %d, expected 1 (the final apple still counts)", g.score)
	}
}

func TestTerminalAbsorption(t *testing.T) {
	g := newTestGame(40, 20, 13)
	setBody(g,
		core.Point{X: 5, Y: 5},
		core.Point{X: 5, Y: 6},
		core.Point{X: 6, Y: 6},
		core.Point{X: 7, Y: 6},
		core.Point{X: 6, Y: 5},
		core.Point{X: 6, Y: 4},
	)
	g.heading = core.DirRight
	g.apple = core.Point{X: 20, Y: 15}

	if out := g.Tick(core.DirNone); out != OutcomeTerminated {
		t.Fatalf("Setup tick outcome = %v, expected terminated", out)
	}

	body := g.Body()
	apple := g.Apple()
	score := g.Score()

	// Step no longer ticks the machine once terminated.
	for i := 0; i < 10; i++ {
		in := core.NewInputFrame()
		in.Set(core.ActionRight)
		g.Step(in)
	}

	after := g.Body()
	for i := range body {
		if after[i] != body[i] {
			t.Errorf("body[%d] changed after termination: %v vs %v", i, after[i], body[i])
		}
	}
	if g.Apple() != apple {
		t.Errorf("Apple changed after termination: %v vs %v", g.Apple(), apple)
	}
	if g.Score() != score {
		t.Errorf("Score changed after termination: %d vs %d", g.Score(), score)
	}
}

func TestTickAfterTerminationPanics(t *testing.T) {
	g := newTestGame(40, 20, 14)
	g.terminated = true

	defer func() {
		if recover() == nil {
			t.Error("Tick on a terminated game should panic")
		}
	}()
	g.Tick(core.DirNone)
}

func TestRestart(t *testing.T) {
	g := newTestGame(40, 20, 15)
	g.score = 7
	g.terminated = true

	in := core.NewInputFrame()
	in.Set(core.ActionRestart)
	res := g.Step(in)

	if res.State.GameOver {
		t.Error("Game should be running after restart")
	}
	if g.Score() != 0 {
		t.Errorf("Score = %d after restart, expected 0", g.Score())
	}
	if len(g.body) != 3 {
		t.Errorf("Length = %d after restart, expected 3", len(g.body))
	}
}

func TestPause(t *testing.T) {
	g := newTestGame(40, 20, 16)
	head := g.body[0]

	in := core.NewInputFrame()
	in.Set(core.ActionPause)
	res := g.Step(in)

	if !res.State.Paused {
		t.Fatal("Game should be paused")
	}
	if g.body[0] != head {
		t.Error("Snake moved on the pause toggle tick")
	}

	in.Clear()
	g.Step(in)
	if g.body[0] != head {
		t.Error("Snake moved while paused")
	}

	in.Set(core.ActionPause)
	g.Step(in)
	in.Clear()
	g.Step(in)
	if g.body[0] == head {
		t.Error("Snake did not move after unpausing")
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		g := newTestGame(40, 20, 12345)
		in := core.NewInputFrame()
		for i := 0; i < 200 && !g.Terminated(); i++ {
			in.Clear()
			if i == 20 {
				in.Set(core.ActionDown)
			}
			if i == 40 {
				in.Set(core.ActionLeft)
			}
			if i == 60 {
				in.Set(core.ActionUp)
			}
			g.Step(in)
		}
		return g.Snapshot()
	}

	snap1 := run()
	snap2 := run()
	if snap1 != snap2 {
		t.Errorf("Snapshots diverged under equal seeds:\n%+v\n%+v", snap1, snap2)
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(40, 20, 17)

	screen := core.NewScreen(80, 24)
	g.Render(screen)

	content := screen.String()
	if !strings.Contains(content, "Snake") {
		t.Error("HUD should contain 'Snake'")
	}
	if !strings.Contains(content, "█") {
		t.Error("Walls should be drawn")
	}

	// Head and apple carry their own colors.
	head := g.body[0]
	cell := screen.GetCell(g.mapOffsetX+head.X, g.mapOffsetY+head.Y)
	if cell.Color != core.ColorBlue {
		t.Errorf("Head color = %v, expected blue", cell.Color)
	}
	apple := screen.GetCell(g.mapOffsetX+g.apple.X, g.mapOffsetY+g.apple.Y)
	if apple.Color != core.ColorBrightRed {
		t.Errorf("Apple color = %v, expected bright red", apple.Color)
	}
}

func TestRenderGameOverOverlay(t *testing.T) {
	g := newTestGame(40, 20, 18)
	g.score = 4
	g.terminated = true

	screen := core.NewScreen(80, 24)
	g.Render(screen)

	content := screen.String()
	if !strings.Contains(content, "Game Over") {
		t.Error("Terminated game should render the game-over overlay")
	}
	if !strings.Contains(content, "You scored: 4") {
		t.Error("Overlay should report the final score")
	}
}

func TestResizePreservesRun(t *testing.T) {
	g := newTestGame(40, 20, 20)
	g.Tick(core.DirNone)
	body := g.Body()
	score := g.Score()

	// Shrinking below the board pauses the game without restarting it.
	g.Resize(10, 5)
	if !g.tooSmall {
		t.Error("Game should pause when the window shrinks below the board")
	}
	head := g.body[0]
	g.Step(core.NewInputFrame())
	if g.body[0] != head {
		t.Error("Snake moved while the window was too small")
	}

	g.Resize(80, 24)
	if g.tooSmall {
		t.Error("Game should resume when the window grows")
	}
	after := g.Body()
	for i := range body {
		if after[i] != body[i] {
			t.Errorf("body[%d] changed across resize: %v vs %v", i, after[i], body[i])
		}
	}
	if g.Score() != score {
		t.Errorf("Score changed across resize: %d vs %d", g.Score(), score)
	}
}

func TestWindowTooSmall(t *testing.T) {
	cfg := config.Default()
	g := New(cfg)
	g.Reset(core.RuntimeConfig{ScreenW: 10, ScreenH: 5, Seed: 19})

	if !g.tooSmall {
		t.Error("Game should detect the window is too small")
	}
	if snap := g.Snapshot(); snap.State != StatePausedSmall {
		t.Errorf("State = %s, expected paused_small_window", snap.State)
	}

	// Step is a no-op until the window grows.
	head := g.body[0]
	g.Step(core.NewInputFrame())
	if g.body[0] != head {
		t.Error("Snake moved while the window was too small")
	}
}
