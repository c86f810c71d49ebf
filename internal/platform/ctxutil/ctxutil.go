// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil reads and writes the per-request values the gateway keeps
// in [context.Context]: the correlation id, the request logger and the
// decoded claims of the visitor's token.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/finboard/internal/platform/ctxkey"
	"github.com/taibuivan/finboard/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context carrying the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// LoggerWith returns a context whose logger carries attrs on every record.
func LoggerWith(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return WithLogger(ctx, GetLogger(ctx).With(args...))
}

// # Identity

// WithAuthUser returns a new context with the decoded session claims attached.
//
// The claims come from an unverified decode and only drive presentation.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, claims)
}

// GetAuthUser returns the decoded claims, or nil for anonymous visitors.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}

// TenantID returns the tenant of the signed-in visitor, or "".
func TenantID(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.TenantID
	}
	return ""
}
