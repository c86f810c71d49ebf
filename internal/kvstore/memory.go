// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the in-process store when no size is given.
const DefaultMemoryCapacity = 10_000

// MemoryStore is an LRU map with per-entry expiry.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List
	now      func() time.Time
}

type memoryItem struct {
	key       string
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an empty store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns the value for key unless it is missing or expired.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.items[key]
	if !exists {
		return "", ErrNotFound
	}

	item := elem.Value.(*memoryItem)
	if !s.now().Before(item.expiresAt) {
		s.removeElement(elem)
		return "", ErrNotFound
	}

	s.lru.MoveToFront(elem)
	return item.value, nil
}

// Set stores value for ttl, evicting the least recently used entry when full.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("kvstore: ttl must be positive, got %s", ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &memoryItem{key: key, value: value, expiresAt: s.now().Add(ttl)}

	if elem, exists := s.items[key]; exists {
		elem.Value = item
		s.lru.MoveToFront(elem)
		return nil
	}

	s.items[key] = s.lru.PushFront(item)

	if s.lru.Len() > s.capacity {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
	return nil
}

// Delete removes key if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.items[key]; exists {
		s.removeElement(elem)
	}
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close drops every entry.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*list.Element)
	s.lru.Init()
	return nil
}

// Len returns the number of entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// CleanExpired removes all expired entries and returns how many were removed.
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for elem := s.lru.Front(); elem != nil; {
		next := elem.Next()
		if !now.Before(elem.Value.(*memoryItem).expiresAt) {
			s.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// StartJanitor sweeps expired entries every interval until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := s.CleanExpired(); removed > 0 {
					logger.Debug("kvstore_memory_swept", slog.Int("removed", removed))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	delete(s.items, elem.Value.(*memoryItem).key)
	s.lru.Remove(elem)
}
