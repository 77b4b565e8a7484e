// ABOUTME: SQLite-backed token store using the pure-Go modernc driver
// ABOUTME: Keeps the token as a row of a small key/value table

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the token in a kv table under TokenKey
type SQLiteStore struct {
	db        *sql.DB
	writeLock sync.Mutex // go-sqlite does not support concurrent writes
}

var _ TokenStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT    PRIMARY KEY,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load implements TokenStore
func (s *SQLiteStore) Load() (string, error) {
	var token string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select token: %w", err)
	}
	return token, nil
}

// Save implements TokenStore
func (s *SQLiteStore) Save(token string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		TokenKey,
		token,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// Clear implements TokenStore
func (s *SQLiteStore) Clear() error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", TokenKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
