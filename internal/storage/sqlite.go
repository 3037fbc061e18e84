package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazz-dev/upreport/internal/daterange"
	"github.com/hazz-dev/upreport/internal/uptime"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    range_start TEXT    NOT NULL,
    range_end   TEXT    NOT NULL,
    created_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id           INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position         INTEGER NOT NULL,
    check_name       TEXT    NOT NULL,
    uptime_percent   REAL    NOT NULL,
    downtime_minutes INTEGER NOT NULL,
    error            TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id, position);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

// Run is a stored report run.
type Run struct {
	ID         int64
	RangeStart time.Time
	RangeEnd   time.Time
	CreatedAt  time.Time
}

// DB wraps a SQLite database holding report history.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite at %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveRun persists a report run and its rows atomically, preserving row
// order. Returns the new run id.
func (d *DB) SaveRun(ctx context.Context, window daterange.Range, results []uptime.Result) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (range_start, range_end, created_at) VALUES (?, ?, ?)`,
		window.Start.UTC().Format(time.RFC3339),
		window.End.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, r := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, position, check_name, uptime_percent, downtime_minutes, error) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, i, r.CheckName, r.UptimePercent, r.DowntimeMinutes, r.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting result for %q: %w", r.CheckName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first.
func (d *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, range_start, range_end, created_at FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run, or nil if none exist.
func (d *DB) LatestRun(ctx context.Context) (*Run, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, range_start, range_end, created_at FROM runs ORDER BY id DESC LIMIT 1`,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	return r, nil
}

// RunByID returns the run with the given id, or nil if it does not exist.
func (d *DB) RunByID(ctx context.Context, id int64) (*Run, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, range_start, range_end, created_at FROM runs WHERE id = ?`,
		id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %d: %w", id, err)
	}
	return r, nil
}

// RunResults returns the stored rows of a run in report order.
func (d *DB) RunResults(ctx context.Context, runID int64) ([]uptime.Result, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT check_name, uptime_percent, downtime_minutes, error FROM results WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying results for run %d: %w", runID, err)
	}
	defer rows.Close()

	var results []uptime.Result
	for rows.Next() {
		var r uptime.Result
		if err := rows.Scan(&r.CheckName, &r.UptimePercent, &r.DowntimeMinutes, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var start, end, created string
	if err := row.Scan(&r.ID, &start, &end, &created); err != nil {
		return nil, err
	}
	var err error
	if r.RangeStart, err = time.Parse(time.RFC3339, start); err != nil {
		return nil, fmt.Errorf("parsing range_start %q: %w", start, err)
	}
	if r.RangeEnd, err = time.Parse(time.RFC3339, end); err != nil {
		return nil, fmt.Errorf("parsing range_end %q: %w", end, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	return &r, nil
}
