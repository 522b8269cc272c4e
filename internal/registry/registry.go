// Package registry persists the PIDs of launched sidecar processes so a
// supervisor that crashed before running its teardown cannot leave the
// backend orphaned: the next supervisor run terminates any recorded
// process that is still alive before launching its own sidecar.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// schema holds one row per launched sidecar. PID is the primary key: the
// supervisor launches at most one sidecar per lifetime, and a recycled PID
// simply replaces the stale row.
const schema = `
CREATE TABLE IF NOT EXISTS sidecars (
	pid        INTEGER PRIMARY KEY,
	binary     TEXT NOT NULL,
	started_at TEXT NOT NULL
)`

// Entry is one recorded sidecar process.
type Entry struct {
	PID       int
	Binary    string
	StartedAt time.Time
}

// Registry is a SQLite-backed record of launched sidecar PIDs. The file
// lives in the supervisor's data directory, next to the lock file, so the
// flock that serializes supervisors also serializes registry access.
type Registry struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open opens (creating if necessary) the registry database at path.
// If logger is nil, slog.Default() is used.
func Open(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// WAL mode with a busy timeout covers the window where a previous
	// supervisor's connection has not finished closing. Synchronous NORMAL
	// is enough: losing the last registry write in a power failure means
	// one extra liveness check on the next run, nothing worse.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sidecar registry %s: %w", path, err)
	}

	// Single connection — the registry sees a handful of statements per
	// supervisor lifetime, not concurrent load.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sidecar registry schema: %w", err)
	}

	return &Registry{db: db, path: path, log: logger}, nil
}

// Record stores the PID of a freshly launched sidecar.
func (r *Registry) Record(ctx context.Context, pid int, binary string) error {
	const stmt = `INSERT OR REPLACE INTO sidecars (pid, binary, started_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, stmt, pid, binary, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record sidecar pid %d: %w", pid, err)
	}
	return nil
}

// Remove deletes the row for a sidecar that has been stopped and reaped.
// Removing an absent PID is a no-op.
func (r *Registry) Remove(ctx context.Context, pid int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sidecars WHERE pid = ?`, pid); err != nil {
		return fmt.Errorf("remove sidecar pid %d: %w", pid, err)
	}
	return nil
}

// List returns all recorded sidecar entries.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT pid, binary, started_at FROM sidecars`)
	if err != nil {
		return nil, fmt.Errorf("query sidecar registry: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt string
		if err := rows.Scan(&e.PID, &e.Binary, &startedAt); err != nil {
			return nil, fmt.Errorf("scan sidecar row: %w", err)
		}
		// A malformed timestamp is not worth failing the listing over;
		// the zero time is visible enough in logs.
		e.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sidecar rows: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close sidecar registry: %w", err)
	}
	return nil
}
