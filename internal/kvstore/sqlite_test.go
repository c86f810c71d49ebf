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
)

/*
TestSQLiteStore_Lifecycle runs the embedded migrations against a temporary file
and exercises upsert, expiry, and the sweep.
*/
func TestSQLiteStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "kv.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock, advance := frozenClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store.now = clock

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Set(ctx, "finboard:kv:c1:finboard_token", "tok-1", time.Hour))
	require.NoError(t, store.Set(ctx, "finboard:kv:c1:finboard_token", "tok-2", time.Hour))
	require.NoError(t, store.Set(ctx, "finboard:kv:c1:refresh_token", "ref", time.Minute))

	value, err := store.Get(ctx, "finboard:kv:c1:finboard_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", value)

	advance(5 * time.Minute)

	_, err = store.Get(ctx, "finboard:kv:c1:refresh_token")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, store.Delete(ctx, "finboard:kv:c1:finboard_token"))
	_, err = store.Get(ctx, "finboard:kv:c1:finboard_token")
	assert.ErrorIs(t, err, ErrNotFound)
}
