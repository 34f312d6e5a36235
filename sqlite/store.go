// Package sqlite provides a SQLite-backed history of replay runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/undiff"
	"github.com/google/uuid"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Compile-time interface verification.
var _ undiff.RunStore = (*Store)(nil)

// Store records completed runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run. A run without an ID is given a new one.
func (s *Store) Record(ctx context.Context, run undiff.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	st := run.Stats

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, log_path, output_path, format, started_at, duration_ms,
		 lines, irrelevant, unparseable, diffs, actions, redacted, retained,
		 ops_applied, ops_skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.LogPath, run.OutputPath, run.Format,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.Duration.Milliseconds(),
		st.Lines, st.Irrelevant, st.Unparseable, st.Diffs, st.Actions, st.Redacted, st.Retained,
		st.OpsApplied, st.OpsSkipped,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]undiff.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, log_path, output_path, format, started_at, duration_ms,
		lines, irrelevant, unparseable, diffs, actions, redacted, retained,
		ops_applied, ops_skipped
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []undiff.Run
	for rows.Next() {
		var r undiff.Run
		var startedAt string
		var durationMs int64

		err := rows.Scan(
			&r.ID, &r.LogPath, &r.OutputPath, &r.Format, &startedAt, &durationMs,
			&r.Stats.Lines, &r.Stats.Irrelevant, &r.Stats.Unparseable, &r.Stats.Diffs,
			&r.Stats.Actions, &r.Stats.Redacted, &r.Stats.Retained,
			&r.Stats.OpsApplied, &r.Stats.OpsSkipped,
		)
		if err != nil {
			return nil, err
		}

		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
