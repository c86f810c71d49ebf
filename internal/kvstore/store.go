// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package kvstore provides the server-side key/value namespace behind the
browser token store.

Every visitor owns the keys prefixed with its client id. Values are short
strings (bearer tokens, refresh tokens, widget state documents) that always
carry a TTL, so none of the backends keeps data forever.

Backends:

  - memory: bounded LRU, lost on restart. Default for development.
  - redis: shared across gateway replicas.
  - postgres: shared and durable, swept periodically.
  - sqlite: durable single-node install.
*/
package kvstore

import (
	"context"
	"time"

	"github.com/taibuivan/finboard/internal/platform/dberr"
)

// ErrNotFound is returned by [Store.Get] when the key is absent or expired.
var ErrNotFound = dberr.ErrNotFound

// Store is the contract every key/value backend fulfills.
type Store interface {
	// Get returns the value stored under key or [ErrNotFound].
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key for ttl. A non-positive ttl is rejected.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
