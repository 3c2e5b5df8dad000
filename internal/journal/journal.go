// Package journal keeps an informational SQLite log of pipeline runs. It is never
// consulted to decide which episodes exist; the episode directory is.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry describes one pipeline run.
type Entry struct {
	RunID               string
	StartedAt           time.Time
	FinishedAt          time.Time
	Episode             string
	Engine              string
	PlaceholderAudio    bool
	PlaceholderSections int
	EpisodeCount        int
	Error               string
}

// Journal wraps the run log database.
type Journal struct {
	db *sql.DB
}

// Open opens (creating when needed) the journal at path and migrates its schema.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close releases the database handle.
func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		episode TEXT NOT NULL,
		engine TEXT NOT NULL,
		placeholder_audio INTEGER NOT NULL,
		placeholder_sections INTEGER NOT NULL,
		episode_count INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

// Record stores a run entry.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `INSERT INTO runs
		(run_id, started_at, finished_at, episode, engine, placeholder_audio, placeholder_sections, episode_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.StartedAt.UTC(), e.FinishedAt.UTC(), e.Episode, e.Engine,
		e.PlaceholderAudio, e.PlaceholderSections, e.EpisodeCount, e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `SELECT run_id, started_at, finished_at, episode, engine,
		placeholder_audio, placeholder_sections, episode_count, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.StartedAt, &e.FinishedAt, &e.Episode, &e.Engine,
			&e.PlaceholderAudio, &e.PlaceholderSections, &e.EpisodeCount, &e.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
