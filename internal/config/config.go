// Package config provides YAML-based configuration loading for the snake
// game: board geometry, tick cadence, and the glyphs used by the renderer.
package config

import "fmt"

// Config contains all user-tunable settings for the game.
type Config struct {
	Board  BoardConfig `yaml:"board"`
	Speed  SpeedConfig `yaml:"speed"`
	Glyphs GlyphConfig `yaml:"glyphs"`
}

// BoardConfig defines the grid dimensions, walls included. The outermost
// ring of cells is a permanent wall; the playable interior is
// (width-2) x (height-2).
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Interior returns the number of playable cells.
func (b BoardConfig) Interior() int {
	return (b.Width - 2) * (b.Height - 2)
}

// SpeedConfig defines the fixed tick cadence.
type SpeedConfig struct {
	TickMS int `yaml:"tick_ms"` // Wall-clock interval between moves
}

// TickRate returns the cadence as ticks per second.
func (s SpeedConfig) TickRate() int {
	if s.TickMS <= 0 {
		return 1
	}
	rate := 1000 / s.TickMS
	if rate < 1 {
		rate = 1
	}
	return rate
}

// GlyphConfig defines the characters drawn for each board element.
// Each value is a string whose first rune is used.
type GlyphConfig struct {
	Wall  string `yaml:"wall"`
	Head  string `yaml:"head"`
	Body  string `yaml:"body"`
	Apple string `yaml:"apple"`
}

// Rune returns the first rune of s, or fallback when s is empty.
func Rune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}

// minBoard is the smallest board whose interior fits the spawn snake with
// room for an apple.
const minBoard = 5

// Validate checks the configuration for values the game cannot run with.
func (c Config) Validate() error {
	if c.Board.Width < minBoard || c.Board.Height < minBoard {
		return fmt.Errorf("config: board must be at least %dx%d, got %dx%d",
			minBoard, minBoard, c.Board.Width, c.Board.Height)
	}
	if c.Speed.TickMS < 16 {
		return fmt.Errorf("config: tick_ms must be at least 16, got %d", c.Speed.TickMS)
	}
	return nil
}
