// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/finboard/internal/platform/dberr"
	redisclient "github.com/taibuivan/finboard/internal/platform/redis"
)

// RedisStore keeps entries as plain Redis strings with an expiry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an already connected client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", dberr.Wrap(err, "kvstore: redis get")
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("kvstore: ttl must be positive, got %s", ttl)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return dberr.Wrap(err, "kvstore: redis set")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return dberr.Wrap(err, "kvstore: redis delete")
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return redisclient.Ping(ctx, s.client)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
