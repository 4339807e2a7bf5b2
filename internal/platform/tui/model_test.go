package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/termarcade/snake/internal/config"
	"github.com/termarcade/snake/internal/core"
	"github.com/termarcade/snake/internal/snake"
	"github.com/termarcade/snake/internal/storage"
)

func newTestModel(t *testing.T, store *storage.Store) (Model, *snake.Game) {
	t.Helper()
	game := snake.New(config.Default())
	m := NewModel(game, store, core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 5,
		Seed:     42,
	})
	return m, game
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, expected Model", updated)
	}
	return next, cmd
}

func tick(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, TickMsg(time.Now()))
}

func TestModelTickChainSurvivesScoreboard(t *testing.T) {
	m, game := newTestModel(t, nil)
	var cmd tea.Cmd

	// Pause, then let the next tick apply it.
	m, _ = update(t, m, keyMsg("p"))
	m, cmd = tick(t, m)
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if !m.gameState.Paused {
		t.Fatal("game should be paused")
	}

	// Open the scoreboard from the paused game.
	m, _ = update(t, m, keyMsg("tab"))
	if m.scoreboard == nil {
		t.Fatal("scoreboard should be open")
	}

	// A tick arriving while the overlay is open keeps the chain alive.
	m, cmd = tick(t, m)
	if cmd == nil {
		t.Fatal("tick chain died while the scoreboard was open")
	}

	// Back to the game.
	m, _ = update(t, m, keyMsg("esc"))
	if m.scoreboard != nil {
		t.Fatal("scoreboard should be closed")
	}

	// The in-flight tick carries the loop on after the overlay closes.
	m, cmd = tick(t, m)
	if cmd == nil {
		t.Fatal("no tick scheduled after leaving the scoreboard")
	}

	// Unpausing works and the snake moves again.
	before := game.Snapshot()
	m, _ = update(t, m, keyMsg("p"))
	m, cmd = tick(t, m)
	if cmd == nil {
		t.Fatal("no tick scheduled after unpausing")
	}
	if m.gameState.Paused {
		t.Fatal("game should be unpaused")
	}
	after := game.Snapshot()
	if after.HeadX == before.HeadX && after.HeadY == before.HeadY {
		t.Error("snake did not move after unpausing")
	}
}

func TestModelBuffersOneDirectionPerTick(t *testing.T) {
	m, game := newTestModel(t, nil)

	// Two direction keys within one tick window; the first wins.
	m, _ = update(t, m, keyMsg("w"))
	m, _ = update(t, m, keyMsg("a"))
	m, _ = tick(t, m)

	if got := game.Snapshot().Heading; got != "up" {
		t.Errorf("Heading = %q after w then a, expected %q", got, "up")
	}

	// The next tick window accepts a fresh direction.
	m, _ = update(t, m, keyMsg("a"))
	m, _ = tick(t, m)
	if got := game.Snapshot().Heading; got != "left" {
		t.Errorf("Heading = %q, expected %q", got, "left")
	}
}

// scriptedGame lets tests steer the game state the model reacts to.
type scriptedGame struct {
	state  core.GameState
	resets int
}

func (g *scriptedGame) Reset(core.RuntimeConfig) {
	g.resets++
	g.state = core.GameState{}
}

func (g *scriptedGame) Step(core.InputFrame) core.StepResult {
	return core.StepResult{State: g.state}
}

func (g *scriptedGame) State() core.GameState { return g.state }
func (g *scriptedGame) Render(*core.Screen)   {}
func (g *scriptedGame) Resize(int, int)       {}

func TestModelSavesScoreOncePerGameOver(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	game := &scriptedGame{}
	m := NewModel(game, store, core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 5,
		Seed:     1,
	})
	if game.resets != 1 {
		t.Fatalf("NewModel should reset the game once, got %d", game.resets)
	}

	// R mid-run is ignored.
	m, _ = update(t, m, keyMsg("r"))
	m, _ = tick(t, m)
	if game.resets != 1 {
		t.Fatalf("restart mid-run should be ignored, got %d resets", game.resets)
	}

	// The run ends; several ticks arrive before the player reacts, and the
	// score lands in storage exactly once.
	game.state = core.GameState{Score: 7, GameOver: true}
	for i := 0; i < 3; i++ {
		m, _ = tick(t, m)
	}

	scores, err := store.AllScores()
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 7 {
		t.Fatalf("score should be saved exactly once, got %v", scores)
	}
	if m.FinalScore() != 7 {
		t.Errorf("FinalScore() = %d, expected 7", m.FinalScore())
	}

	// Restart resets the game and re-arms the save.
	m, _ = update(t, m, keyMsg("r"))
	m, _ = tick(t, m)
	if game.resets != 2 {
		t.Fatalf("restart should reset the game, got %d resets", game.resets)
	}
	if m.gameState.GameOver {
		t.Fatal("game should be running after restart")
	}

	game.state = core.GameState{Score: 9, GameOver: true}
	m, _ = tick(t, m)

	scores, err = store.AllScores()
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("second run's score should be saved, got %d rows", len(scores))
	}
	if scores[0].Score != 9 {
		t.Errorf("best score = %d, expected 9", scores[0].Score)
	}
}
