package core

// Action represents a semantic game action, abstracted from physical key
// presses. The platform maps keys to actions; the game consumes actions.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow
	ActionDown           // S, Down arrow
	ActionLeft           // A, Left arrow
	ActionRight          // D, Right arrow
	ActionPause          // P, Escape - pause/unpause
	ActionRestart        // R - restart after game over
	ActionScores         // Tab - open scoreboard
	ActionQuit           // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionScores:
		return "Scores"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Direction returns the heading an action requests, or DirNone for
// non-directional actions.
func (a Action) Direction() Direction {
	switch a {
	case ActionUp:
		return DirUp
	case ActionDown:
		return DirDown
	case ActionLeft:
		return DirLeft
	case ActionRight:
		return DirRight
	}
	return DirNone
}

// InputFrame represents the input state for a single simulation tick.
// It contains all actions that were triggered during this frame.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Direction returns the directional request in this frame, or DirNone when
// no directional key was pressed within the tick's input window. The input
// collaborator delivers at most one direction per tick; with several set,
// up/down/left/right priority keeps the result deterministic.
func (f InputFrame) Direction() Direction {
	for _, a := range [...]Action{ActionUp, ActionDown, ActionLeft, ActionRight} {
		if f.Has(a) {
			return a.Direction()
		}
	}
	return DirNone
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}
