// Package history keeps an append-only audit log of installs, removals and
// migrations in SQLite. The flat-text tracking file remains the source of
// truth for what is installed; history only answers "what did the tool do,
// and when".
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Actions recorded in the log.
const (
	ActionInstall = "install"
	ActionRemove  = "remove"
	ActionMigrate = "migrate"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    action TEXT NOT NULL,
    old_source TEXT,
    new_source TEXT,
    at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_package ON events(package);
CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
`

// Event is one audit log entry.
type Event struct {
	ID        int64
	Package   string
	Action    string
	OldSource string
	NewSource string
	At        time.Time
}

// Store provides SQLite operations for the audit log.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the history database at the given path.
// Use ":memory:" for in-memory databases (useful for testing).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends an event to the log and sets e.ID.
func (s *Store) Record(e *Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT INTO events (package, action, old_source, new_source, at) VALUES (?, ?, ?, ?, ?)`,
		e.Package, e.Action, e.OldSource, e.NewSource, e.At.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record event for %s: %w", e.Package, err)
	}

	e.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get event ID: %w", err)
	}
	return nil
}

// List returns events newest first, optionally filtered by action, capped
// at limit entries (0 means no cap).
func (s *Store) List(action string, limit int) ([]*Event, error) {
	query := `SELECT id, package, action, old_source, new_source, at FROM events`
	var args []any
	if action != "" {
		query += ` WHERE action = ?`
		args = append(args, action)
	}
	query += ` ORDER BY at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var at string
		if err := rows.Scan(&e.ID, &e.Package, &e.Action, &e.OldSource, &e.NewSource, &at); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.At, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp for event %d: %w", e.ID, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// CountByAction returns how many events exist per action.
func (s *Store) CountByAction() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT action, COUNT(*) FROM events GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}

	return counts, nil
}
