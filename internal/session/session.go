// Package session is a supplemental collaborator, not part of the core:
// it appends one row per suspend/resume event to a SQLite-backed log,
// restoring a trace feature original_source (moonshine) had informally
// as console output, which spec.md's distillation dropped. Grounded on
// the teacher's internal/database/database.go manager pattern (a struct
// wrapping *sql.DB behind a small set of methods); the driver choice
// swaps the teacher's cgo/network-backed drivers for modernc.org/sqlite,
// the embedded cgo-free one actually usable inside a demo CLI or test
// binary with no database server available (see DESIGN.md).
package session

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Kind is the event kind recorded for one row.
type Kind string

const (
	KindSuspend Kind = "suspend"
	KindResume  Kind = "resume"
	KindReturn  Kind = "return"
)

// Recorder appends activation lifecycle events to a SQLite database.
type Recorder struct {
	db *sql.DB
}

// Open creates (or reopens) a recorder backed by the database at path.
// Use ":memory:" for an ephemeral, test-only log.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: migrate schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	coroutine_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	source_name TEXT NOT NULL,
	line INTEGER NOT NULL,
	detail TEXT NOT NULL
)`

// Record appends one event row.
func (r *Recorder) Record(ctx context.Context, coroutineID string, kind Kind, sourceName string, line int, detail string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (coroutine_id, kind, source_name, line, detail) VALUES (?, ?, ?, ?, ?)`,
		coroutineID, string(kind), sourceName, line, detail)
	return err
}

// Event is one recorded row, returned by History for inspection.
type Event struct {
	ID          int64
	CoroutineID string
	Kind        Kind
	SourceName  string
	Line        int
	Detail      string
}

// History returns every recorded event for one coroutine ID, oldest first.
func (r *Recorder) History(ctx context.Context, coroutineID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, coroutine_id, kind, source_name, line, detail FROM events WHERE coroutine_id = ? ORDER BY id ASC`,
		coroutineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.CoroutineID, &kind, &e.SourceName, &e.Line, &e.Detail); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (r *Recorder) Close() error { return r.db.Close() }
