// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package preferences remembers which parts of a collapsible widget a visitor
folded away.

Every widget owns one storage key holding a JSON object that maps item ids to
their collapsed flag. The value lives in the visitor's browser storage through
[session.TokenStore], next to the session tokens.
*/
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/url"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/ctxutil"
	"github.com/taibuivan/finboard/internal/session"
)

const (
	// MaxItems bounds the number of ids one widget remembers.
	MaxItems = 64

	// MaxEncodedState bounds the cookie value of one widget, leaving room for
	// the cookie name and attributes inside the 4 KB browsers accept.
	MaxEncodedState = 3584
)

// CollapseState maps item ids to true when the item is collapsed.
type CollapseState map[string]bool

// Store reads and writes collapse states.
type Store struct {
	tokens  *session.TokenStore
	ttlDays int
}

// NewStore creates a store keeping states for ttlDays.
func NewStore(tokens *session.TokenStore, ttlDays int) *Store {
	return &Store{tokens: tokens, ttlDays: ttlDays}
}

// Get returns the state of widget. A missing or unreadable entry is an empty state.
func (s *Store) Get(ctx context.Context, browser *session.Browser, widget string) CollapseState {
	state := CollapseState{}

	raw, ok := s.tokens.Get(ctx, browser, storageKey(widget))
	if !ok {
		return state
	}

	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "preferences_state_unreadable",
			slog.String("widget", widget),
			slog.Any("error", err),
		)
		return CollapseState{}
	}
	return state
}

// Merge applies changes on top of the stored state and returns the result.
//
// A merged state over [MaxItems] ids or [MaxEncodedState] cookie bytes is
// rejected with a validation error and nothing is written.
func (s *Store) Merge(ctx context.Context, browser *session.Browser, widget string, changes CollapseState) (CollapseState, error) {
	state := s.Get(ctx, browser, widget)
	maps.Copy(state, changes)

	if len(state) > MaxItems {
		return nil, tooLarge(fmt.Sprintf("A widget remembers at most %d items", MaxItems))
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	if len(url.QueryEscape(string(encoded))) > MaxEncodedState {
		return nil, tooLarge("Widget state does not fit into a cookie")
	}

	s.tokens.Set(ctx, browser, storageKey(widget), string(encoded), s.ttlDays)
	return state, nil
}

// Reset forgets the state of widget.
func (s *Store) Reset(ctx context.Context, browser *session.Browser, widget string) {
	s.tokens.Remove(ctx, browser, storageKey(widget))
}

func tooLarge(message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "state", Message: message})
}

func storageKey(widget string) string {
	return constants.WidgetCollapsePrefix + widget
}
