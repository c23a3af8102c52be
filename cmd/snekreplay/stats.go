package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// SessionStats summarises one recorded session.
type SessionStats struct {
	ID        string
	Frames    int64
	StartedMs int64
	Turns     int64
	Score     int64
	Cause     string
	Over      bool
}

// openFrames returns an in-memory DuckDB with a frames view over the
// parquet files at path, a single file or a recording directory.
func openFrames(path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	glob := path
	if info.IsDir() {
		glob = filepath.Join(path, "*.parquet")
		matches, err := filepath.Glob(glob)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no .parquet files in %s", path)
		}
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	// Basic pragmas; ignore errors for compatibility across versions.
	_, _ = db.Exec("PRAGMA threads=2")

	sqlText := `CREATE OR REPLACE VIEW frames AS
		SELECT * FROM read_parquet('` + escapeSQLString(glob) + `')`
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create frames view: %w", err)
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// normalizeSort maps a user-facing key to a column alias. Never returns user
// input.
func normalizeSort(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "score":
		return "score"
	case "turns", "turn":
		return "turns"
	case "frames":
		return "frames"
	default:
		return "started_ms"
	}
}

func querySessionStats(ctx context.Context, db *sql.DB, sortKey string, limit int) ([]SessionStats, error) {
	q := `SELECT
			session_id,
			COUNT(*) AS frames,
			MIN(recorded_at_ms) AS started_ms,
			MAX(turn) AS turns,
			MAX(score) AS score,
			arg_max(cause, turn) AS cause,
			bool_or(NOT alive) AS over
		FROM frames
		GROUP BY session_id
		ORDER BY ` + normalizeSort(sortKey) + ` DESC, session_id`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionStats
	for rows.Next() {
		var s SessionStats
		if err := rows.Scan(&s.ID, &s.Frames, &s.StartedMs, &s.Turns, &s.Score, &s.Cause, &s.Over); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func printStats(stats []SessionStats) {
	fmt.Printf("%-36s %6s %6s %6s  %s\n", "SESSION", "FRAMES", "TURNS", "SCORE", "END")
	for _, s := range stats {
		end := "running"
		if s.Over {
			end = s.Cause
		}
		fmt.Printf("%-36s %6d %6d %6d  %s\n", s.ID, s.Frames, s.Turns, s.Score, end)
	}
}
