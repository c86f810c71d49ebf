// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/taibuivan/finboard/internal/kvstore"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/ctxutil"
	"github.com/taibuivan/finboard/pkg/uuid"
)

// TokenStore persists small values for one visitor in two places: a cookie
// and the server-side key/value namespace of the visitor's client id.
//
// Absence is never an error. Storage failures are logged and degrade to the
// cookie copy.
type TokenStore struct {
	kv     kvstore.Store
	secure bool
}

// NewTokenStore creates a store writing cookies with the given Secure flag.
func NewTokenStore(kv kvstore.Store, secureCookies bool) *TokenStore {
	return &TokenStore{kv: kv, secure: secureCookies}
}

// Set writes value under name for ttlDays, both as a cookie and as a
// key/value entry.
func (s *TokenStore) Set(ctx context.Context, b *Browser, name, value string, ttlDays int) {
	if !b.Bound() {
		return
	}

	ttl := time.Duration(ttlDays) * 24 * time.Hour
	clientID := s.ensureClientID(b)

	if err := s.kv.Set(ctx, storageKey(clientID, name), value, ttl); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "token_store_write_failed",
			slog.String("name", name),
			slog.Any("error", err),
		)
	}

	b.SetCookie(s.cookie(name, url.QueryEscape(value), int(ttl.Seconds())))
}

// Get reads name from the key/value namespace first, then from the cookie.
func (s *TokenStore) Get(ctx context.Context, b *Browser, name string) (string, bool) {
	if !b.Bound() {
		return "", false
	}

	if clientID, ok := s.clientID(b); ok {
		value, err := s.kv.Get(ctx, storageKey(clientID, name))
		switch {
		case err == nil:
			return value, true
		case !errors.Is(err, kvstore.ErrNotFound):
			ctxutil.GetLogger(ctx).WarnContext(ctx, "token_store_read_failed",
				slog.String("name", name),
				slog.Any("error", err),
			)
		}
	}

	raw, ok := b.Cookie(name)
	if !ok {
		return "", false
	}
	if value, err := url.QueryUnescape(raw); err == nil {
		return value, true
	}
	return raw, true
}

// Remove deletes name from both places.
func (s *TokenStore) Remove(ctx context.Context, b *Browser, name string) {
	if !b.Bound() {
		return
	}

	if clientID, ok := s.clientID(b); ok {
		if err := s.kv.Delete(ctx, storageKey(clientID, name)); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "token_store_delete_failed",
				slog.String("name", name),
				slog.Any("error", err),
			)
		}
	}

	b.SetCookie(s.cookie(name, "", -1))
}

// clientID returns the visitor's namespace id if the cookie holds a valid one.
func (s *TokenStore) clientID(b *Browser) (string, bool) {
	id, ok := b.Cookie(constants.ClientIDCookie)
	if !ok || !uuid.Valid(id) {
		return "", false
	}
	return id, true
}

// ensureClientID issues a client id cookie on the first write.
func (s *TokenStore) ensureClientID(b *Browser) string {
	if id, ok := s.clientID(b); ok {
		return id
	}
	id := uuid.New()
	b.SetCookie(s.cookie(constants.ClientIDCookie, id, int(constants.ClientIDCookieTTL.Seconds())))
	return id
}

func (s *TokenStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// storageKey namespaces name under the visitor's client id.
func storageKey(clientID, name string) string {
	return constants.RedisPrefixKV + clientID + ":" + name
}
