// Package kvsync is the self-hosted counterpart of the cloud sync
// endpoint: a tiny key-value service holding one JSON document per
// logical key, with whole-document overwrites and a last-write stamp.
package kvsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Store persists the sync keys in a single SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open sync store %q: %w", path, err)
	}
	// Single writer, single reader: the service is single-user.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize sync store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the stored value and whether the key was ever set.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cannot read key %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores the value, replacing any previous one.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("cannot write key %q: %w", key, err)
	}
	return nil
}
