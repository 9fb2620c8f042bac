package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/mcpserver"
	"github.com/vovakirdan/tui-2048/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the game to MCP clients over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout so that agents
can play 2048.

Tools:
  new_game      - Start a game, returns its session id and board
  move          - Slide the tiles of a session (up, down, left, right)
  game_state    - Show a session's board, score and status
  restart_game  - Start a session over
  high_scores   - List the best finished games

Logs are written to stderr.

Example client configuration:
  {"command": "t2048", "args": ["mcp"]}`,
	Args: cobra.NoArgs,
	Run:  runMCP,
}

func runMCP(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger := newLogger(cfg)
	store := openStore(cfg)
	defer store.Close()

	manager := newManager(store, session.WithLogger(logger))
	server := mcpserver.New(version, manager, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		store.Close()
		exitf("mcp server: %v", err)
	}
}
