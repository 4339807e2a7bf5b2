package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/termarcade/snake/internal/config"
	"github.com/termarcade/snake/internal/core"
	"github.com/termarcade/snake/internal/platform/tui"
	"github.com/termarcade/snake/internal/snake"
	"github.com/termarcade/snake/internal/storage"
)

var (
	flagConfig string
	flagTickMS int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play snake in the current terminal",
	Long: `Start a game in the current terminal.

Controls:
  W/A/S/D or arrows - Steer the snake
  P/Esc             - Pause
  R                 - Restart (after game over)
  Tab               - High scores (while paused or after game over)
  Q/Ctrl+C          - Quit

Examples:
  snake play
  snake play --tick-ms 100
  snake play --config ./my-board.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().IntVar(&flagTickMS, "tick-ms", 0, "Milliseconds between moves (overrides config)")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameCfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagTickMS > 0 {
		gameCfg.Speed.TickMS = flagTickMS
		if err := gameCfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	rc := core.DefaultConfig()
	rc.TickRate = gameCfg.Speed.TickRate()
	rc.Seed = flagSeed
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	score, runErr := tui.Run(snake.New(gameCfg), store, rc)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}

	fmt.Printf("you scored: %d\n", score)
}
