// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"net/http"

	"github.com/taibuivan/finboard/internal/platform/ctxkey"
)

// Browser binds one HTTP exchange: the cookies the visitor sent and the
// response that carries cookie updates back.
//
// Cookies written during the exchange shadow the request's cookies, so a read
// after a write in the same request observes the write.
//
// # Concurrency
//
// A Browser belongs to one request and is not safe for concurrent use.
type Browser struct {
	writer  http.ResponseWriter
	request *http.Request
	written map[string]*http.Cookie
}

// NewBrowser binds writer and request.
func NewBrowser(writer http.ResponseWriter, request *http.Request) *Browser {
	return &Browser{
		writer:  writer,
		request: request,
		written: make(map[string]*http.Cookie),
	}
}

// Bound reports whether b can read and write cookies. A nil Browser is unbound.
func (b *Browser) Bound() bool {
	return b != nil && b.writer != nil && b.request != nil
}

// Cookie returns the current value of the named cookie.
func (b *Browser) Cookie(name string) (string, bool) {
	if !b.Bound() {
		return "", false
	}

	if cookie, ok := b.written[name]; ok {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}

	cookie, err := b.request.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SetCookie writes cookie to the response and records it for later reads.
func (b *Browser) SetCookie(cookie *http.Cookie) {
	if !b.Bound() {
		return
	}
	http.SetCookie(b.writer, cookie)
	b.written[cookie.Name] = cookie
}

// # Context Helpers

// WithBrowser returns a new context carrying b.
func WithBrowser(ctx context.Context, b *Browser) context.Context {
	return context.WithValue(ctx, ctxkey.KeyBrowser, b)
}

// BrowserFrom retrieves the request's Browser, or nil.
func BrowserFrom(ctx context.Context) *Browser {
	b, _ := ctx.Value(ctxkey.KeyBrowser).(*Browser)
	return b
}

// WithSession returns a new context carrying the restored session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, s)
}

// FromContext retrieves the session restored for this request.
// The boolean is false when no restore step ran.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxkey.KeySession).(Session)
	return s, ok
}
