// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the visitor session of the finboard gateway.

It stores the backend's bearer token for each visitor, decodes it into a user,
and exposes login, signup, logout, refresh and business unit selection.

Architecture:

  - Browser: one HTTP exchange (request cookies in, response cookies out).
  - TokenStore: cookie plus server-side key/value copy of each stored value.
  - Manager: the single authority that writes tokens. Everything else only
    reads the [Session] published into the request context.

Exactly one Manager exists per process; it is created at startup and passed
to the handlers and middleware that need it.
*/
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/ctxutil"
	"github.com/taibuivan/finboard/internal/platform/sec"
	"github.com/taibuivan/finboard/internal/upstream"
)

// # Errors

var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = apperr.InvalidCredentials()

	// ErrNoSession is returned by operations that need a stored token.
	ErrNoSession = apperr.Unauthorized("Authentication required")
)

// RefreshError describes why a token refresh failed. It is only logged:
// a failed refresh always ends in a logout.
type RefreshError struct {
	Reason string
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session: refresh failed: %s: %v", e.Reason, e.Err)
	}
	return "session: refresh failed: " + e.Reason
}

func (e *RefreshError) Unwrap() error { return e.Err }

// # Manager

// Manager implements the session use cases.
type Manager struct {
	api     AuthAPI
	tokens  *TokenStore
	events  EventPublisher
	ttlDays int
	now     func() time.Time
}

// NewManager constructs the process-wide session manager.
func NewManager(api AuthAPI, tokens *TokenStore, events EventPublisher, ttlDays int) *Manager {
	if events == nil {
		events = NopPublisher{}
	}
	return &Manager{
		api:     api,
		tokens:  tokens,
		events:  events,
		ttlDays: ttlDays,
		now:     time.Now,
	}
}

/*
Restore rebuilds the session from the visitor's storage.

Description: Reads the primary token key, then the legacy cookie. A malformed
token clears storage. An expired token is refreshed when a refresh token exists.

Parameters:
  - ctx: context.Context
  - browser: *Browser (nil means there is nothing to read)

Returns:
  - Session: Authenticated or Unauthenticated, never loading
*/
func (m *Manager) Restore(ctx context.Context, browser *Browser) Session {
	logger := ctxutil.GetLogger(ctx)

	token, found := m.tokens.Get(ctx, browser, constants.TokenKey)
	fromLegacy := false
	if !found {
		token, found = m.tokens.Get(ctx, browser, constants.LegacyTokenCookie)
		fromLegacy = found
	}
	if !found {
		return Anonymous()
	}

	claims, err := sec.DecodeClaims(token)
	if err != nil {
		logger.WarnContext(ctx, "session_token_malformed", slog.Any("error", err))
		m.clearTokens(ctx, browser)
		return Anonymous()
	}

	if claims.Expired(m.now()) {
		logger.InfoContext(ctx, "session_token_expired")
		return m.RefreshToken(ctx, browser)
	}

	// Move tokens of older releases to the primary key.
	if fromLegacy {
		m.tokens.Set(ctx, browser, constants.TokenKey, token, m.ttlDays)
		m.tokens.Remove(ctx, browser, constants.LegacyTokenCookie)
	}

	return Session{
		State:                      StateAuthenticated,
		Token:                      token,
		User:                       UserFromClaims(claims),
		NeedsBusinessUnitSelection: claims.BusinessUnitID == nil,
	}
}

/*
Login authenticates against the backend and publishes the new session.

Parameters:
  - ctx: context.Context
  - browser: *Browser
  - username, password: string

Returns:
  - Session: Authenticated on success, Unauthenticated otherwise
  - error: ErrInvalidCredentials when the backend rejects the credentials,
    a retryable 502 AppError when the backend cannot be reached
*/
func (m *Manager) Login(ctx context.Context, browser *Browser, username, password string) (Session, error) {
	m.clearTokens(ctx, browser)

	grant, err := m.api.Login(ctx, username, password)
	if err != nil {
		switch status := upstream.StatusOf(err); {
		case status == http.StatusBadRequest, status == http.StatusUnauthorized, status == http.StatusForbidden:
			return Anonymous(), ErrInvalidCredentials.WithCause(err)
		case status >= 400 && status < 500:
			return Anonymous(), apperr.UpstreamRejected(status, "Login was rejected", err)
		default:
			return Anonymous(), apperr.BadGateway("", "Login is temporarily unavailable. Please try again.", err)
		}
	}

	current, claims, err := m.publish(ctx, browser, grant)
	if err != nil {
		return Anonymous(), ErrInvalidCredentials.WithCause(err)
	}

	current.NeedsBusinessUnitSelection = m.needsBusinessUnit(ctx, current.Token, claims)
	m.emit(ctx, EventLogin, current.User, "")

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_login_succeeded",
		slog.String("user_id", current.User.ID),
		slog.String("tenant_id", current.User.TenantID),
	)
	return current, nil
}

/*
Signup forwards a signup payload to the backend.

Parameters:
  - ctx: context.Context
  - payload: json.RawMessage (forwarded untouched)
  - token: *string (the caller's bearer token for admin-initiated signups, nil when absent)

Returns:
  - *upstream.Response: The backend's raw answer
  - error: Network failures only
*/
func (m *Manager) Signup(ctx context.Context, payload json.RawMessage, token *string) (*upstream.Response, error) {
	response, err := m.api.Signup(ctx, payload, token)
	if err != nil {
		return nil, apperr.BadGateway("", "Signup is temporarily unavailable. Please try again.", err)
	}
	return response, nil
}

// Logout clears every stored token. It never fails and calling it twice is
// the same as calling it once.
func (m *Manager) Logout(ctx context.Context, browser *Browser) Session {
	token, found := m.tokens.Get(ctx, browser, constants.TokenKey)
	m.clearTokens(ctx, browser)

	if found {
		var user *User
		if claims, err := sec.DecodeClaims(token); err == nil {
			user = UserFromClaims(claims)
		}
		m.emit(ctx, EventLogout, user, "")
	}

	return Anonymous()
}

/*
RefreshToken exchanges the stored refresh token for a new access token.

Description: Every failure (missing refresh token, network, non-2xx, malformed
token) is logged as a RefreshError and ends in [Manager.Logout].

Returns:
  - Session: Authenticated on success, Unauthenticated otherwise
*/
func (m *Manager) RefreshToken(ctx context.Context, browser *Browser) Session {
	refreshToken, found := m.tokens.Get(ctx, browser, constants.RefreshTokenKey)
	if !found {
		return m.refreshFailed(ctx, browser, &RefreshError{Reason: "no refresh token stored"})
	}

	grant, err := m.api.Refresh(ctx, refreshToken)
	if err != nil {
		return m.refreshFailed(ctx, browser, &RefreshError{Reason: "refresh endpoint failed", Err: err})
	}

	// Keep the current refresh token unless the backend rotated it.
	if grant.RefreshToken == "" {
		grant.RefreshToken = refreshToken
	}

	current, claims, err := m.publish(ctx, browser, grant)
	if err != nil {
		return m.refreshFailed(ctx, browser, &RefreshError{Reason: "refreshed token is malformed", Err: err})
	}

	current.NeedsBusinessUnitSelection = m.needsBusinessUnit(ctx, current.Token, claims)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_refreshed", slog.String("user_id", current.User.ID))
	return current
}

/*
SelectBusinessUnit scopes the current session to one business unit.

Returns:
  - Session: The republished session
  - error: ErrNoSession without a stored token, the backend's 4xx status when
    the selection is rejected, 502 when it cannot be reached
*/
func (m *Manager) SelectBusinessUnit(ctx context.Context, browser *Browser, businessUnitID string) (Session, error) {
	token, found := m.tokens.Get(ctx, browser, constants.TokenKey)
	if !found {
		return Anonymous(), ErrNoSession
	}

	grant, err := m.api.SelectBusinessUnit(ctx, token, businessUnitID)
	if err != nil {
		var fetchErr *upstream.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Rejected() {
			return m.Restore(ctx, browser), apperr.UpstreamRejected(fetchErr.StatusCode, "Business unit selection was rejected", err)
		}
		return m.Restore(ctx, browser), apperr.BadGateway("", "Business unit selection is temporarily unavailable. Please try again.", err)
	}

	if grant.RefreshToken == "" {
		grant.RefreshToken, _ = m.tokens.Get(ctx, browser, constants.RefreshTokenKey)
	}

	current, _, err := m.publish(ctx, browser, grant)
	if err != nil {
		return Anonymous(), apperr.BadGateway("", "The backend returned an unusable token", err)
	}

	current.NeedsBusinessUnitSelection = false
	m.emit(ctx, EventBusinessUnitSelected, current.User, "")
	return current, nil
}

// # Internal Helpers

// publish stores the granted tokens and decodes the access token.
// A malformed token is removed again before the error is returned.
func (m *Manager) publish(ctx context.Context, browser *Browser, grant *TokenGrant) (Session, *sec.AuthClaims, error) {
	if grant == nil || grant.AccessToken == "" {
		return Anonymous(), nil, &sec.DecodeError{Reason: "no access token in response"}
	}

	m.tokens.Set(ctx, browser, constants.TokenKey, grant.AccessToken, m.ttlDays)
	if grant.RefreshToken != "" {
		m.tokens.Set(ctx, browser, constants.RefreshTokenKey, grant.RefreshToken, m.ttlDays)
	}

	claims, err := sec.DecodeClaims(grant.AccessToken)
	if err != nil {
		m.clearTokens(ctx, browser)
		return Anonymous(), nil, err
	}

	return Session{
		State:                      StateAuthenticated,
		Token:                      grant.AccessToken,
		User:                       UserFromClaims(claims),
		NeedsBusinessUnitSelection: claims.BusinessUnitID == nil,
	}, claims, nil
}

// needsBusinessUnit asks the backend and falls back to the claims.
func (m *Manager) needsBusinessUnit(ctx context.Context, token string, claims *sec.AuthClaims) bool {
	needs, err := m.api.NeedsBusinessUnitSelection(ctx, token)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_business_unit_check_failed", slog.Any("error", err))
		return claims.BusinessUnitID == nil
	}
	return needs
}

func (m *Manager) refreshFailed(ctx context.Context, browser *Browser, refreshErr *RefreshError) Session {
	ctxutil.GetLogger(ctx).WarnContext(ctx, "session_refresh_failed", slog.Any("error", refreshErr))
	m.emit(ctx, EventRefreshFailed, nil, refreshErr.Reason)
	return m.Logout(ctx, browser)
}

func (m *Manager) clearTokens(ctx context.Context, browser *Browser) {
	m.tokens.Remove(ctx, browser, constants.TokenKey)
	m.tokens.Remove(ctx, browser, constants.LegacyTokenCookie)
	m.tokens.Remove(ctx, browser, constants.RefreshTokenKey)
}

// emit publishes a lifecycle event; a broker failure never fails the request.
func (m *Manager) emit(ctx context.Context, eventType string, user *User, reason string) {
	event := Event{
		Type:       eventType,
		Reason:     reason,
		RequestID:  ctxutil.GetRequestID(ctx),
		OccurredAt: m.now().UTC(),
	}
	if user != nil {
		event.UserID = user.ID
		event.TenantID = user.TenantID
		event.BusinessUnitID = user.BusinessUnitID
	}

	if err := m.events.Publish(ctx, eventType, event); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_event_publish_failed",
			slog.String("event", eventType),
			slog.Any("error", err),
		)
	}
}
