package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/session"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

const (
	defaultScoreLimit = 10
	maxScoreLimit     = 100
	maxBodyBytes      = 1 << 12
	shutdownTimeout   = 5 * time.Second
)

// ScoreReader lists stored results. *storage.Store satisfies it.
type ScoreReader interface {
	TopScores(limit int) ([]storage.Result, error)
	TopScoresFor(player string, limit int) ([]storage.Result, error)
}

// Server exposes a session.Manager over HTTP.
type Server struct {
	addr     string
	sessions *session.Manager
	scores   ScoreReader
	logger   *log.Logger
	router   chi.Router
}

// NewServer creates the API server. scores may be nil, in which case
// /api/scores answers 503.
func NewServer(addr string, sessions *session.Manager, scores ScoreReader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		addr:     addr,
		sessions: sessions,
		scores:   scores,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Post("/move", s.handleMove)
				r.Post("/restart", s.handleRestart)
				r.Get("/ws", s.handleWebSocket)
			})
		})

		r.Get("/scores", s.handleScores)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP API", "address", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("stopping HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown failed: %w", err)
	}
	return nil
}

type createRequest struct {
	Player string `json:"player"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type moveResponse struct {
	Session session.Snapshot `json:"session"`
	Moved   bool             `json:"moved"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap := s.sessions.Create(req.Player)
	respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(list),
		"sessions": list,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dir, err := t2048.ParseDirection(req.Direction)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, moved, err := s.sessions.Move(chi.URLParam(r, "id"), dir)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moveResponse{Session: snap, Moved: moved})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Restart(chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		respondError(w, http.StatusServiceUnavailable, "score storage is not configured")
		return
	}

	limit := parseIntParam(r, "limit", defaultScoreLimit)
	limit = clamp(limit, 1, maxScoreLimit)

	var (
		results []storage.Result
		err     error
	)
	if player := r.URL.Query().Get("player"); player != "" {
		results, err = s.scores.TopScoresFor(player, limit)
	} else {
		results, err = s.scores.TopScores(limit)
	}
	if err != nil {
		s.logger.Error("failed to load scores", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load scores")
		return
	}
	if results == nil {
		results = []storage.Result{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"scores": results})
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseIntParam parses an integer query parameter with a default value
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func clamp(val, lo, hi int) int {
	return max(lo, min(val, hi))
}
