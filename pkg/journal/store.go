package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists journal entries to SQLite so the event log survives node
// restarts.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle and runs the migration.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal db: %w", err)
	}
	return NewStore(db)
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS journal_entries (
		sequence INTEGER PRIMARY KEY,
		event_type TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		prev_hash TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		who TEXT,
		payload JSON
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Persist writes one entry. Sequence is the primary key, so re-persisting an
// existing entry fails rather than silently rewriting history.
func (s *Store) Persist(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	query := `
	INSERT INTO journal_entries (sequence, event_type, content_hash, prev_hash, timestamp, who, payload)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		e.Sequence, e.EventType, e.ContentHash, e.PrevHash, e.Timestamp, e.Who, string(payload)); err != nil {
		return fmt.Errorf("failed to persist entry %d: %w", e.Sequence, err)
	}
	return nil
}

// Load reads every persisted entry in sequence order.
func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	query := `
	SELECT sequence, event_type, content_hash, prev_hash, timestamp, who, payload
	FROM journal_entries
	ORDER BY sequence ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload sql.NullString
		var who sql.NullString
		if err := rows.Scan(&e.Sequence, &e.EventType, &e.ContentHash, &e.PrevHash, &e.Timestamp, &who, &payload); err != nil {
			return nil, err
		}
		e.Who = who.String
		if payload.Valid && payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &e.Payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload for entry %d: %w", e.Sequence, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
