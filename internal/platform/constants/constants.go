// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: Storage keys and cookie names of the browser token store.
  - Upstream: Paths of the REST backend this gateway talks to.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "finboard"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 25 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session Storage

const (
	// TokenKey is the primary storage key of the bearer token.
	TokenKey = "finboard_token"

	// LegacyTokenCookie is the cookie older releases stored the bearer token in.
	LegacyTokenCookie = "auth_token"

	// RefreshTokenKey is the storage key of the refresh token.
	RefreshTokenKey = "refresh_token"

	// ClientIDCookie identifies one browser's key-value namespace.
	ClientIDCookie = "fb_client"

	// ClientIDCookieTTL is the lifetime of the client id cookie.
	ClientIDCookieTTL = 365 * 24 * time.Hour

	// WidgetCollapsePrefix prefixes the per-widget expand/collapse storage key.
	WidgetCollapsePrefix = "ui_collapse_"
)

// # Page Routes

const (
	LoginPath        = "/login"
	SignupPath       = "/signup"
	BusinessUnitPath = "/select-business-unit"
)

// # Upstream Endpoints

const (
	UpstreamLogin              = "/auth/login"
	UpstreamSignup             = "/auth/signup"
	UpstreamRefresh            = "/api/v1/auth/refresh"
	UpstreamNeedsBusinessUnit  = "/api/v1/auth/business-unit/needs-selection"
	UpstreamSelectBusinessUnit = "/api/v1/auth/select-business-unit"

	UpstreamAnnualSummary = "/api/v1/financial/annual-summary"
	UpstreamCashFlow      = "/api/v1/financial/cash-flow"
	UpstreamWallet        = "/api/v1/financial/wallet"
	UpstreamSaldo         = "/api/v1/saldo-disponivel"
	UpstreamTransactions  = "/api/v1/financial/transactions"
	UpstreamLancamentos   = "/api/v1/lancamentos-diarios"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaFinboard = "finboard"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixKV = "finboard:kv:"
)
