// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/ctxutil"
	"github.com/taibuivan/finboard/internal/platform/respond"
	"github.com/taibuivan/finboard/internal/platform/sec"
	"github.com/taibuivan/finboard/internal/session"
)

// SessionRestorer rebuilds the visitor session from the browser's storage.
type SessionRestorer interface {
	Restore(ctx context.Context, browser *session.Browser) session.Session
}

// LoadSession restores the visitor session once per request.
//
// # Flow
//  1. Bind a [session.Browser] to the exchange.
//  2. Restore the session (refreshing an expired token when possible).
//  3. Inject browser, session and decoded claims into the request context.
//  4. Tag the request logger with the visitor's user and tenant.
//
// Restoration never fails: a visitor without a usable token proceeds as
// anonymous and the route guard decides what they may see.
func LoadSession(restorer SessionRestorer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			browser := session.NewBrowser(writer, request)
			ctx := session.WithBrowser(request.Context(), browser)

			current := restorer.Restore(ctx, browser)
			ctx = session.WithSession(ctx, current)

			if current.Authenticated() {
				if claims, err := sec.DecodeClaims(current.Token); err == nil {
					ctx = ctxutil.WithAuthUser(ctx, claims)
				}

				ctx = ctxutil.LoggerWith(ctx,
					slog.String("user_id", current.User.ID),
					slog.String("tenant_id", current.User.TenantID),
				)

				if tagger, ok := writer.(userTagger); ok {
					tagger.tagUser(current.User.ID)
				}
			}

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireRole blocks API requests whose session role is below role.
//
// # Usage
//
// Must be registered AFTER [LoadSession]. It implies authentication.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			current, ok := session.FromContext(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if !ok || !current.Authenticated() {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !current.Role().AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
