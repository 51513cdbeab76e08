package events

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists events in the playback_events table
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the sqlite database at path
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping events database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureEventsTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureEventsTable() error {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='playback_events'").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check playback_events table: %w", err)
	}
	if count > 0 {
		return nil
	}

	schema := `
		CREATE TABLE playback_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			session TEXT NOT NULL,
			media_time REAL NOT NULL,
			occurred_at TEXT NOT NULL
		);

		CREATE INDEX playback_events_session_idx ON playback_events (session, occurred_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create playback_events table: %w", err)
	}
	return nil
}

func (s *Store) Insert(event Event) error {
	_, err := s.db.Exec(
		"INSERT INTO playback_events (type, session, media_time, occurred_at) VALUES (?, ?, ?, ?)",
		event.Type, event.Session, event.MediaTime, event.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// List returns up to limit events, newest first. An empty session matches all.
func (s *Store) List(session string, limit int) ([]Event, error) {
	query := "SELECT type, session, media_time, occurred_at FROM playback_events"
	args := []any{}
	if session != "" {
		query += " WHERE session = ?"
		args = append(args, session)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var occurred string
		if err := rows.Scan(&e.Type, &e.Session, &e.MediaTime, &occurred); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, occurred); err != nil {
			return nil, fmt.Errorf("failed to parse event time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
