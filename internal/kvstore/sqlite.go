// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/taibuivan/finboard/internal/platform/database/schema"
	"github.com/taibuivan/finboard/internal/platform/dberr"
	"github.com/taibuivan/finboard/internal/platform/migration"
)

// SQLiteStore keeps entries in a local SQLite file. Expiry is stored as unix seconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore creates the database file if needed and applies the embedded migrations.
func OpenSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore: ping sqlite database: %w", err)
	}

	if err := migration.RunSQLiteUp(dbPath, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	t := schema.SQLiteKVEntry
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND %s > ?`,
		t.Value, t.Table, t.Key, t.ExpiresAt)

	var value string
	if err := s.db.QueryRowContext(ctx, query, key, s.now().Unix()).Scan(&value); err != nil {
		return "", dberr.Wrap(err, "kvstore: sqlite get")
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("kvstore: ttl must be positive, got %s", ttl)
	}

	t := schema.SQLiteKVEntry
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)
		ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s`,
		t.Table, t.Key, t.Value, t.ExpiresAt,
		t.Key, t.Value, t.Value, t.ExpiresAt, t.ExpiresAt,
	)

	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().Add(ttl).Unix()); err != nil {
		return dberr.Wrap(err, "kvstore: sqlite set")
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	t := schema.SQLiteKVEntry
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, t.Table, t.Key)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return dberr.Wrap(err, "kvstore: sqlite delete")
	}
	return nil
}

// DeleteExpired removes every expired row and returns how many were removed.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	t := schema.SQLiteKVEntry
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= ?`, t.Table, t.ExpiresAt)

	result, err := s.db.ExecContext(ctx, query, s.now().Unix())
	if err != nil {
		return 0, dberr.Wrap(err, "kvstore: sqlite sweep")
	}
	return result.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
