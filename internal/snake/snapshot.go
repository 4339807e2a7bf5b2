package snake

// StateType names the game state for snapshots and overlays.
type StateType string

const (
	StatePlaying     StateType = "playing"
	StatePaused      StateType = "paused"
	StateGameOver    StateType = "game_over"
	StateBoardFull   StateType = "board_full"
	StatePausedSmall StateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick     uint64
	Score    int
	SnakeLen int
	HeadX    int
	HeadY    int
	Heading  string
	AppleX   int
	AppleY   int
	State    StateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.boardFull:
		state = StateBoardFull
	case g.terminated:
		state = StateGameOver
	case g.paused:
		state = StatePaused
	}

	head := g.body[0]
	return Snapshot{
		Tick:     g.tick,
		Score:    g.score,
		SnakeLen: len(g.body),
		HeadX:    head.X,
		HeadY:    head.Y,
		Heading:  g.heading.String(),
		AppleX:   g.apple.X,
		AppleY:   g.apple.Y,
		State:    state,
	}
}
