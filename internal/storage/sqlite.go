// Package storage provides SQLite-based persistence for finished 2048 games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	defaultLimit = 10
	timeLayout   = "2006-01-02 15:04:05"
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// Result is the outcome of one finished (or abandoned) game.
type Result struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	MaxTile   int       `json:"max_tile"`
	Won       bool      `json:"won"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats contains aggregated statistics over all stored results.
type Stats struct {
	Games      int       `json:"games"`
	Best       int       `json:"best"`
	Average    float64   `json:"average"`
	Wins       int       `json:"wins"`
	BestTile   int       `json:"best_tile"`
	LastPlayed time.Time `json:"last_played"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL DEFAULT 0,
			won INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_top ON results(score DESC);
		CREATE INDEX IF NOT EXISTS idx_results_player ON results(player, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a finished game and returns the ID of the inserted row.
// A zero CreatedAt is stamped by the database.
func (s *Store) SaveResult(r Result) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if r.CreatedAt.IsZero() {
		res, err = s.db.Exec(
			`INSERT INTO results (session_id, player, score, max_tile, won, moves)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.SessionID, r.Player, r.Score, r.MaxTile, r.Won, r.Moves,
		)
	} else {
		res, err = s.db.Exec(
			`INSERT INTO results (session_id, player, score, max_tile, won, moves, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.SessionID, r.Player, r.Score, r.MaxTile, r.Won, r.Moves,
			r.CreatedAt.UTC().Format(timeLayout),
		)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the best N results across all players.
// Ties keep insertion order.
func (s *Store) TopScores(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.queryResults(
		`SELECT id, session_id, player, score, max_tile, won, moves, created_at
		 FROM results
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
}

// TopScoresFor retrieves the best N results of one player.
func (s *Store) TopScoresFor(player string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.queryResults(
		`SELECT id, session_id, player, score, max_tile, won, moves, created_at
		 FROM results
		 WHERE player = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		player, limit,
	)
}

func (s *Store) queryResults(query string, args ...any) ([]Result, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var createdAt any
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Player, &r.Score, &r.MaxTile, &r.Won, &r.Moves, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// HighScore returns the highest stored score, or 0 if there are none.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(score) FROM results").Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// Stats aggregates all stored results.
func (s *Store) Stats() (Stats, error) {
	var stats Stats

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(won), 0), COALESCE(MAX(max_tile), 0)
		 FROM results`,
	).Scan(&stats.Games, &stats.Best, &stats.Average, &stats.Wins, &stats.BestTile)
	if err != nil {
		return stats, fmt.Errorf("storage: cannot get stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM results ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// Clear deletes all stored results.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM results"); err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string values from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
