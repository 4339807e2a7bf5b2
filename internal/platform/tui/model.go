package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/termarcade/snake/internal/core"
	"github.com/termarcade/snake/internal/storage"
)

// Game is the state machine contract the model drives.
// *snake.Game implements it.
type Game interface {
	Reset(core.RuntimeConfig)
	Step(core.InputFrame) core.StepResult
	State() core.GameState
	Render(*core.Screen)
	Resize(screenW, screenH int)
}

// Model is the Bubble Tea model that drives a snake game in the terminal.
// It owns the tick loop, buffers input between ticks, and persists the score
// when a run ends.
type Model struct {
	game       Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	keys       *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	scoreboard *ScoreboardModel
	quitting   bool
	scoreSaved bool // Whether score has been saved for current game over
	finalScore int
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game Game, store *storage.Store, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	game.Reset(cfg)

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		keys:       NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		gameState:  game.State(),
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The scoreboard owns input while it's open.
	if m.scoreboard != nil {
		return m.updateScoreboard(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		m.finalScore = m.gameState.Score
		return m, tea.Quit
	}

	switch action {
	case core.ActionScores:
		if m.gameState.GameOver || m.gameState.Paused {
			sb := NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
			m.scoreboard = &sb
		}
		return m, nil
	case core.ActionRestart:
		if !m.gameState.GameOver {
			return m, nil
		}
	}

	m.keys.MapKeyToFrame(msg, &m.inputFrame)
	return m, nil
}

// handleResize processes window resize events. The run survives a resize;
// the game re-centers the board and pauses itself if the window no longer
// fits.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.game.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		// Fresh seed for the new run
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	// Save score on game over (once)
	if m.gameState.GameOver && !m.scoreSaved {
		m.finalScore = m.gameState.Score
		if m.store != nil && m.gameState.Score > 0 {
			//nolint:errcheck // Best-effort save, game continues regardless
			m.store.SaveScore(m.gameState.Score)
		}
		m.scoreSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// updateScoreboard routes messages to the scoreboard overlay.
func (m Model) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		// The game is paused or over underneath the overlay, so Step is
		// gated, but the tick chain must stay alive for play to resume
		// once the overlay closes.
		return m, tickCmd(m.config.TickRate)
	}

	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
		m.screen.Resize(wsm.Width, wsm.Height)
		m.game.Resize(wsm.Width, wsm.Height)
	}

	updated, cmd := m.scoreboard.Update(msg)
	if sb, ok := updated.(ScoreboardModel); ok {
		m.scoreboard = &sb
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		m.finalScore = m.gameState.Score
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		// Drop the scoreboard's quit command; the in-flight tick picks
		// the game loop back up.
		m.scoreboard = nil
		return m, nil
	}

	return m, cmd
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.scoreboard != nil {
		return m.scoreboard.View()
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// FinalScore returns the score of the last finished or abandoned run.
func (m Model) FinalScore() int {
	return m.finalScore
}

// Run starts the Bubble Tea program for a local terminal session.
// It returns the player's final score once the session ends.
func Run(game Game, store *storage.Store, cfg core.RuntimeConfig) (int, error) {
	model := NewModel(game, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	finalModel, err := p.Run()
	if err != nil {
		return 0, err
	}

	if m, ok := finalModel.(Model); ok {
		return m.FinalScore(), nil
	}
	return 0, nil
}
