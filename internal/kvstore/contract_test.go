// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/finboard/pkg/uuid"
)

// runStoreContract checks the behaviour every backend shares. Keys live
// under a fresh namespace so that shared servers need no cleanup between runs.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	namespace := "finboard:kv:" + uuid.New() + ":"

	require.NoError(t, store.Ping(ctx))

	_, err := store.Get(ctx, namespace+"missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, namespace+"finboard_token", "tok-1", time.Hour))
	require.NoError(t, store.Set(ctx, namespace+"finboard_token", "tok-2", time.Hour))

	value, err := store.Get(ctx, namespace+"finboard_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", value)

	assert.Error(t, store.Set(ctx, namespace+"finboard_token", "tok-3", 0))

	require.NoError(t, store.Delete(ctx, namespace+"finboard_token"))
	require.NoError(t, store.Delete(ctx, namespace+"finboard_token"))

	_, err = store.Get(ctx, namespace+"finboard_token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreContract_Memory(t *testing.T) {
	runStoreContract(t, NewMemoryStore(10))
}

func TestStoreContract_SQLite(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "kv.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runStoreContract(t, store)
}
