package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/termarcade/snake/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	case "w", "up":
		return core.ActionUp, false
	case "s", "down":
		return core.ActionDown, false
	case "a", "left":
		return core.ActionLeft, false
	case "d", "right":
		return core.ActionRight, false
	case "p", "esc":
		return core.ActionPause, false
	case "r":
		return core.ActionRestart, false
	case "tab":
		return core.ActionScores, false
	}

	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// At most one directional action is buffered per tick; the first key pressed
// within the tick's window wins and later direction keys are dropped.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action == core.ActionNone {
		return isQuit
	}
	if action.Direction() != core.DirNone && frame.Direction() != core.DirNone {
		return isQuit
	}
	frame.Set(action)
	return isQuit
}
