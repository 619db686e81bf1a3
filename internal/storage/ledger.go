// Package storage keeps a ledger of the games played during one autopilot run.
// It uses an in-memory database through the pure-Go modernc.org/sqlite driver,
// so nothing outlives the process.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the in-memory ledger database.
type Store struct {
	db *sql.DB
}

// GameRecord is one finished game.
type GameRecord struct {
	ID        int64
	RunID     string
	Game      int // 1-based game number within the run
	Score     int
	Ticks     int
	Moves     int
	Fallbacks int
	Holds     int
	Reason    string
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the game lasted.
func (g GameRecord) Duration() time.Duration {
	return g.EndedAt.Sub(g.StartedAt)
}

// RunSummary contains aggregated statistics for a run.
type RunSummary struct {
	RunID      string
	Driver     string
	StartedAt  time.Time
	Games      int
	Best       int
	Mean       float64
	TotalTicks int64
	Reasons    map[string]int // Games per end reason
}

// Open creates a fresh in-memory ledger and runs migrations.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			driver TEXT NOT NULL,
			started_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			game INTEGER NOT NULL,
			score INTEGER NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			fallbacks INTEGER NOT NULL DEFAULT 0,
			holds INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_games_run_id ON games(run_id);
		CREATE INDEX IF NOT EXISTS idx_games_top ON games(run_id, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection, discarding the ledger.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewRun registers a run for the given driver and returns its ID.
func (s *Store) NewRun(driver string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, driver, started_at) VALUES (?, ?, ?)",
		id, driver, time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot create run: %w", err)
	}
	return id, nil
}

// RecordGame stores a finished game.
// Returns the ID of the inserted record.
func (s *Store) RecordGame(g GameRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO games
		 (run_id, game, score, ticks, moves, fallbacks, holds, reason, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Game, g.Score, g.Ticks, g.Moves, g.Fallbacks, g.Holds, g.Reason,
		g.StartedAt.UnixMilli(), g.EndedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot record game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopGames retrieves the best N games of a run.
// Results are ordered by score descending, earlier games first on ties.
func (s *Store) TopGames(runID string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, game, score, ticks, moves, fallbacks, holds, reason, started_at, ended_at
		 FROM games
		 WHERE run_id = ?
		 ORDER BY score DESC, game ASC
		 LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		var startedAt, endedAt int64
		if err := rows.Scan(&g.ID, &g.RunID, &g.Game, &g.Score, &g.Ticks, &g.Moves,
			&g.Fallbacks, &g.Holds, &g.Reason, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.StartedAt = time.UnixMilli(startedAt)
		g.EndedAt = time.UnixMilli(endedAt)
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return games, nil
}

// Summary retrieves aggregated statistics for a run.
func (s *Store) Summary(runID string) (*RunSummary, error) {
	sum := &RunSummary{RunID: runID, Reasons: make(map[string]int)}

	var startedAt int64
	err := s.db.QueryRow(
		"SELECT driver, started_at FROM runs WHERE id = ?",
		runID,
	).Scan(&sum.Driver, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: unknown run %q", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	sum.StartedAt = time.UnixMilli(startedAt)

	// Get count, best, mean, ticks
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(ticks), 0)
		 FROM games WHERE run_id = ?`,
		runID,
	).Scan(&sum.Games, &sum.Best, &sum.Mean, &sum.TotalTicks)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT reason, COUNT(*) FROM games WHERE run_id = ? GROUP BY reason",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query end reasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan reason row: %w", err)
		}
		sum.Reasons[reason] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sum, nil
}
