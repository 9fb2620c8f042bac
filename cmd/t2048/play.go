package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/platform/tui"
)

var flagPlayer string

// Smallest terminal that fits the board, the header and the help line.
const (
	minWidth  = 32
	minHeight = 24
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a local game",
	Long: `Start a game of 2048 in this terminal.

Controls:
  Arrows/WASD - Slide tiles
  R           - Restart
  T           - Toggle high scores
  ?           - More help
  Q/Esc       - Quit

Results are saved to the scores database when a game ends,
or when you restart or quit with a score.

Examples:
  t2048 play
  t2048 play --player alice
  t2048 play --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Player name for the scoreboard (default: $USER)")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger := newLogger(cfg)

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		exitf("play needs an interactive terminal; try 't2048 serve' or 't2048 api'")
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < minWidth || h < minHeight) {
		logger.Warn("terminal is smaller than the board", "width", w, "height", h,
			"min_width", minWidth, "min_height", minHeight)
	}

	store := openStore(cfg)
	defer store.Close()

	player := flagPlayer
	if player == "" {
		player = os.Getenv("USER")
	}
	if player == "" {
		player = "player"
	}

	logger.Debug("starting local game", "player", player, "seed", flagSeed, "board", t2048.Size)

	err := tui.Run(tui.Options{
		Player:   player,
		Seed:     flagSeed,
		Theme:    cfg.Theme,
		Recorder: store,
		Scores:   store,
		Logger:   logger,
	})
	if err != nil {
		store.Close()
		exitf("running game: %v", err)
	}
}
