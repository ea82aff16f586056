// Package sqlite provides a SQLite-backed snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/isoscene/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store persists snapshots in a single SQLite table.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the snapshot row.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("snapshot key cannot be empty")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot row.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// Delete removes the snapshot row.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// List returns all keys in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key FROM snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan snapshot key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
