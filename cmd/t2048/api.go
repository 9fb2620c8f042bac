package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/api"
	"github.com/vovakirdan/tui-2048/internal/session"
)

var flagAPIAddr string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing games as JSON resources.

Endpoints:
  GET    /api/health
  POST   /api/sessions              {"player": "alice"}
  GET    /api/sessions
  GET    /api/sessions/{id}
  POST   /api/sessions/{id}/move    {"direction": "left"}
  POST   /api/sessions/{id}/restart
  DELETE /api/sessions/{id}
  GET    /api/sessions/{id}/ws      (WebSocket stream of updates)
  GET    /api/scores?limit=10&player=alice

Examples:
  t2048 api
  t2048 api --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	Run:  runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagAPIAddr, "addr", "", "HTTP listen address (overrides config)")
}

// newManager builds the session manager shared by the network drivers.
func newManager(recorder session.Recorder, opts ...session.Option) *session.Manager {
	opts = append(opts, session.WithRecorder(recorder))
	if flagSeed != 0 {
		opts = append(opts, session.WithSeed(flagSeed))
	}
	return session.NewManager(opts...)
}

func runAPI(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagAPIAddr != "" {
		cfg.API.Address = flagAPIAddr
	}

	logger := newLogger(cfg)
	store := openStore(cfg)
	defer store.Close()

	manager := newManager(store, session.WithLogger(logger))
	server := api.NewServer(cfg.API.Address, manager, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		store.Close()
		exitf("server: %v", err)
	}
}
