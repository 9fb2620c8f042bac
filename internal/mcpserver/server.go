// Package mcpserver exposes 2048 sessions as Model Context Protocol tools so
// agents can play through the same session manager as the HTTP API.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/session"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

const defaultScoreLimit = 10

const instructions = `2048 - MCP Interface

The board is 4x4. Each move slides every tile as far as possible in one
direction; two equal tiles that collide merge into their sum, and the sum is
added to the score. A tile merges at most once per move. After every move that
changes the board a new tile (2 or 4) appears in a random empty cell.

Reach a 2048 tile to win; you may keep playing afterwards. The game is over
when no move can change the board.

TOOLS:
- new_game: start a session and get its ID
- move: slide tiles (up/down/left/right) in a session
- game_state: show the board of a session
- restart_game: start over in the same session
- high_scores: best finished games`

// ScoreReader lists stored results. *storage.Store satisfies it.
type ScoreReader interface {
	TopScores(limit int) ([]storage.Result, error)
}

// Server wraps an MCP server bound to a session manager.
type Server struct {
	sessions *session.Manager
	scores   ScoreReader
	logger   *log.Logger
	mcp      *server.MCPServer
}

// New creates the MCP server and registers its tools. scores may be nil.
func New(version string, sessions *session.Manager, scores ScoreReader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		sessions: sessions,
		scores:   scores,
		logger:   logger,
	}
	s.mcp = server.NewMCPServer(
		"t2048",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}))

	s.logger.Info("serving MCP on stdio")
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	sessionID := map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by new_game",
	}

	s.mcp.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new 2048 game and return its session ID and board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Player name recorded with the result (optional)",
				},
			},
		},
	}, s.handleNewGame)

	s.mcp.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to slide",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, s.handleMove)

	s.mcp.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, score and status of a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionID},
			Required:   []string{"session_id"},
		},
	}, s.handleGameState)

	s.mcp.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Replace the game in a session with a fresh one",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionID},
			Required:   []string{"session_id"},
		},
	}, s.handleRestart)

	s.mcp.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "List the best finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results (default 10)",
				},
			},
		},
	}, s.handleHighScores)
}

// arguments returns the tool arguments as a map; missing arguments yield an empty map.
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, _ := arguments(request)["player"].(string)

	snap := s.sessions.Create(player)
	s.logger.Debug("mcp new game", "id", snap.ID, "player", snap.Player)
	return mcp.NewToolResultText("New game started.\n" + formatSnapshot(snap)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, _ := args["session_id"].(string)
	raw, _ := args["direction"].(string)

	dir, err := t2048.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap, moved, err := s.sessions.Move(id, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var header string
	switch {
	case moved && snap.Over:
		header = fmt.Sprintf("Moved %s. Game over!", dir)
	case moved:
		header = fmt.Sprintf("Moved %s.", dir)
	case snap.Over:
		header = "The game is over. Use restart_game to play again."
	default:
		header = fmt.Sprintf("Nothing moves %s; the board is unchanged.", dir)
	}
	return mcp.NewToolResultText(header + "\n" + formatSnapshot(snap)), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["session_id"].(string)

	snap, err := s.sessions.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["session_id"].(string)

	snap, err := s.sessions.Restart(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Game restarted.\n" + formatSnapshot(snap)), nil
}

func (s *Server) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.scores == nil {
		return mcp.NewToolResultError("score storage is not configured"), nil
	}

	limit := defaultScoreLimit
	if v, ok := arguments(request)["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	results, err := s.scores.TopScores(limit)
	if err != nil {
		s.logger.Error("failed to load scores", "err", err)
		return mcp.NewToolResultError("failed to load scores"), nil
	}
	return mcp.NewToolResultText(formatScores(results)), nil
}

func formatSnapshot(snap session.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\n", snap.ID)
	fmt.Fprintf(&sb, "Player: %s\n", snap.Player)
	fmt.Fprintf(&sb, "Score: %d\n", snap.Score)
	fmt.Fprintf(&sb, "Moves: %d\n", snap.Moves)
	fmt.Fprintf(&sb, "Status: %s\n", snap.Status)
	sb.WriteString(t2048.Format(snap.Grid))
	return sb.String()
}

func formatScores(results []storage.Result) string {
	if len(results) == 0 {
		return "No finished games yet."
	}

	var sb strings.Builder
	sb.WriteString("High scores:\n")
	for i, r := range results {
		won := ""
		if r.Won {
			won = " (won)"
		}
		fmt.Fprintf(&sb, "%2d. %-16s %7d  max tile %d%s\n", i+1, r.Player, r.Score, r.MaxTile, won)
	}
	return sb.String()
}
