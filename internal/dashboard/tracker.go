// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultViewerIdleTTL is how long an idle viewer's selection is remembered.
const DefaultViewerIdleTTL = 30 * time.Minute

// Ticket identifies one dashboard load of one viewer for one year.
type Ticket struct {
	key  string
	year int
}

type viewerSelection struct {
	year     int
	lastSeen time.Time
}

// Tracker keeps the latest year selection of every viewer. A result whose
// year is no longer the viewer's selection belongs to an abandoned selection;
// loads of the selected year never discard each other.
//
// # Concurrency
//
// Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	viewers map[string]*viewerSelection
	idleTTL time.Duration
	now     func() time.Time
}

// NewTracker creates a tracker forgetting viewers idle for longer than idleTTL.
func NewTracker(idleTTL time.Duration) *Tracker {
	return &Tracker{
		viewers: make(map[string]*viewerSelection),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Begin records year as the selection of key and starts a load for it.
// Earlier tickets of key for other years stop being current.
func (t *Tracker) Begin(key string, year int) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	viewer, ok := t.viewers[key]
	if !ok {
		viewer = &viewerSelection{}
		t.viewers[key] = viewer
	}
	viewer.year = year
	viewer.lastSeen = t.now()

	return Ticket{key: key, year: year}
}

// Current reports whether the year of ticket is still its viewer's selection.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	viewer, ok := t.viewers[ticket.key]
	return ok && viewer.year == ticket.year
}

// Prune forgets idle viewers and returns how many were removed.
func (t *Tracker) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.idleTTL)
	removed := 0
	for key, viewer := range t.viewers {
		if viewer.lastSeen.Before(cutoff) {
			delete(t.viewers, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked viewers.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.viewers)
}

// StartPruner forgets idle viewers every interval until ctx is cancelled.
func (t *Tracker) StartPruner(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := t.Prune(); removed > 0 {
					logger.Debug("dashboard_tracker_pruned", slog.Int("removed", removed))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
