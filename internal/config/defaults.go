package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// Default returns the default game configuration: a 40x20 board stepped
// every 200ms with the classic glyph set.
func Default() Config {
	return Config{
		Board: BoardConfig{
			Width:  40,
			Height: 20,
		},
		Speed: SpeedConfig{
			TickMS: 200,
		},
		Glyphs: GlyphConfig{
			Wall:  "█",
			Head:  "⬤",
			Body:  "⬤",
			Apple: "○",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultSnakeYAML
}
