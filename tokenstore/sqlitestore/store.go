// Package sqlitestore implements token persistence over SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/keystrand/keystrand-go/tokenstore"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_tokens (
	scope      TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store implements tokenstore.Store over a shared SQLite file.
//
// One file can back several scopes, so the SDK on a multi-application host
// keeps every session in a single database with per-scope rows.
type Store struct {
	sqlDB *sql.DB
	scope string
}

// Open opens (or creates) the token database and scopes the store.
func Open(path, scope string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if strings.TrimSpace(scope) == "" {
		return nil, fmt.Errorf("storage scope is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
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
		return nil, fmt.Errorf("apply token schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, scope: scope}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Read implements tokenstore.Store.
func (s *Store) Read(ctx context.Context) (string, error) {
	var token string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT token FROM session_tokens WHERE scope = ?`, s.scope,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", tokenstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return token, nil
}

// Write implements tokenstore.Store.
func (s *Store) Write(ctx context.Context, token string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO session_tokens (scope, token, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at`,
		s.scope, token, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

// Clear implements tokenstore.Store.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE scope = ?`, s.scope,
	); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
