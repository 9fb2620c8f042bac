// t2048 is the 2048 sliding-tile puzzle for the terminal, SSH, HTTP and MCP.
//
// Usage:
//
//	t2048 play      - Play a local game
//	t2048 serve     - Start SSH server for remote play
//	t2048 api       - Start the HTTP JSON + WebSocket API
//	t2048 mcp       - Serve the game to MCP clients over stdio
//	t2048 scores    - Show high scores
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.t2048/config.yaml)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Override the scores database path
//	--log-level <level> - Override the log level
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "t2048",
	Short:   "2048 - slide and merge tiles in your terminal",
	Version: version,
	Long: `t2048 is the 2048 puzzle for the terminal. Slide the tiles with the
arrow keys; equal tiles merge. Reach 2048 to win, keep going for a high score.

Available commands:
  play     - Play a local game
  serve    - Start SSH server for remote play
  api      - Start the HTTP API
  mcp      - Serve the game to MCP clients over stdio
  scores   - View high scores

Examples:
  t2048 play
  t2048 play --seed 42
  t2048 serve --ssh :2222
  t2048 api --addr :8048
  t2048 scores --limit 20`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(scoresCmd)
}

// exitf prints an error to stderr and exits with status 1.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		exitf("%v", err)
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		exitf("%v", err)
	}
	return cfg
}

// newLogger builds the process logger. Output always goes to stderr so that
// stdout stays free for the TUI and the MCP stdio transport.
func newLogger(cfg config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "t2048",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openStore opens the scores database or exits.
func openStore(cfg config.Config) *storage.Store {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		exitf("opening scores database: %v", err)
	}
	return store
}
