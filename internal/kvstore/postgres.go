// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/finboard/internal/platform/database/schema"
	"github.com/taibuivan/finboard/internal/platform/dberr"
	"github.com/taibuivan/finboard/internal/platform/postgres"
)

// PostgresStore keeps entries in the finboard.kv_entry table.
//
// Expired rows are invisible to reads and removed by [PostgresStore.DeleteExpired].
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore wraps an already connected pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	t := schema.KVEntry
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s > $2`,
		t.Value, t.Table, t.Key, t.ExpiresAt)

	var value string
	if err := s.pool.QueryRow(ctx, query, key, s.now()).Scan(&value); err != nil {
		return "", dberr.Wrap(err, "kvstore: postgres get")
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("kvstore: ttl must be positive, got %s", ttl)
	}

	t := schema.KVEntry
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = now()`,
		t.Table, t.Key, t.Value, t.ExpiresAt, t.UpdatedAt,
		t.Key,
		t.Value, t.Value, t.ExpiresAt, t.ExpiresAt, t.UpdatedAt,
	)

	if _, err := s.pool.Exec(ctx, query, key, value, s.now().Add(ttl)); err != nil {
		return dberr.Wrap(err, "kvstore: postgres set")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	t := schema.KVEntry
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.Key)

	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return dberr.Wrap(err, "kvstore: postgres delete")
	}
	return nil
}

// DeleteExpired removes every expired row and returns how many were removed.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	t := schema.KVEntry
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, t.Table, t.ExpiresAt)

	tag, err := s.pool.Exec(ctx, query, s.now())
	if err != nil {
		return 0, dberr.Wrap(err, "kvstore: postgres sweep")
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, s.pool)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
