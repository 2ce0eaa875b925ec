package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200
)

// schema is the playback history table, created on first use.
//
// created_at is stored as UTC RFC3339 text so entries sort and compare
// lexicographically.
const schema = `
CREATE TABLE IF NOT EXISTS playback_history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    player     TEXT NOT NULL,
    field      TEXT NOT NULL,
    value      TEXT NOT NULL,
    source     TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_playback_history_player
    ON playback_history (player, created_at);
`

// Entry is one recorded playback transition.
type Entry struct {
	ID        int64
	Player    string
	Field     string
	Value     string
	Source    string
	CreatedAt time.Time
}

// Store is an append-only log of playback transitions backed by SQLite.
//
// It records what happened and when; it is never read back to restore
// player state, which is always rebuilt from live messages.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store and ensures the history table exists.
//
// Parameters:
//   - ctx: Context for the schema statement
//   - db: Open SQLite connection used for all queries
//
// Returns:
//   - *Store: Store ready for use
//   - error: If creating the schema fails
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordChange appends a playback transition.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - player: Player name the transition belongs to
//   - field: Changed field (state, title)
//   - value: New value
//   - source: Origin of the change (mqtt, command)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (s *Store) RecordChange(ctx context.Context, player, field, value, source string) error {
	if player == "" {
		return fmt.Errorf("player name is required")
	}
	if field == "" {
		return fmt.Errorf("field is required")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO playback_history (player, field, value, source) VALUES (?, ?, ?, ?)",
		player, field, value, source,
	)
	if err != nil {
		return fmt.Errorf("inserting playback history: %w", err)
	}
	return nil
}

// GetHistory returns recent transitions for a player, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - player: Player name to query
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: Entries ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (s *Store) GetHistory(ctx context.Context, player string, limit int) ([]Entry, error) {
	if player == "" {
		return nil, fmt.Errorf("player name is required")
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, field, value, source, created_at
		 FROM playback_history
		 WHERE player = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying playback history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Player, &entry.Field, &entry.Value, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning playback history: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating playback history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Retention window (entries older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM playback_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting playback history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rowsAffected, nil
}
