// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines the typed context keys shared by the middleware
// chain, the session package and the handlers.
package ctxkey

// key is unexported so that no other package can collide with these values.
type key string

const (
	// # Request scope (set by the global middleware chain)

	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyLogger carries the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// # Visitor scope (set by the session loader)

	// KeyBrowser carries the cookie and storage binding of the exchange.
	KeyBrowser key = "browser"

	// KeySession carries the restored visitor session.
	KeySession key = "session"

	// KeyUser carries the decoded token claims ([sec.AuthClaims]).
	KeyUser key = "claims"
)
