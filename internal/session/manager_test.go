// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/session"
	"github.com/taibuivan/finboard/internal/upstream"
)

func managerClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        "u-1",
		"username":   "ana",
		"email":      "ana@example.com",
		"first_name": "Ana",
		"last_name":  "Souza",
		"role":       "manager",
		"tenant_id":  "t-1",
	}
}

// # Login

/*
TestManager_Login_ScopesSessionToTenant covers the happy path: role and
tenant come from the token, which is stored and survives the next exchange.
*/
func TestManager_Login_ScopesSessionToTenant(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	token := issueToken(t, managerClaims())
	f.api.loginGrant = &session.TokenGrant{AccessToken: token, RefreshToken: "r-1"}
	f.api.needsSelection = true
	ex := newExchange()

	current, err := f.manager.Login(ctx, ex.browser, "ana", "secret")
	require.NoError(t, err)

	assert.True(t, current.Authenticated())
	assert.Equal(t, "manager", current.User.Role)
	assert.Equal(t, "t-1", current.User.TenantID)
	assert.True(t, current.NeedsBusinessUnitSelection)
	assert.Equal(t, []string{session.EventLogin}, f.events.keys)

	stored, ok := f.tokens.Get(ctx, ex.next().browser, constants.TokenKey)
	require.True(t, ok)
	assert.Equal(t, token, stored)

	refresh, ok := f.tokens.Get(ctx, ex.next().browser, constants.RefreshTokenKey)
	require.True(t, ok)
	assert.Equal(t, "r-1", refresh)
}

/*
TestManager_Login_InfersBusinessUnitFromClaims verifies the fallback when the
backend cannot answer the business unit question.
*/
func TestManager_Login_InfersBusinessUnitFromClaims(t *testing.T) {
	tests := []struct {
		name         string
		businessUnit any
		want         bool
	}{
		{"claim_present", "bu-7", false},
		{"claim_absent", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			claims := managerClaims()
			if tt.businessUnit != nil {
				claims["business_unit_id"] = tt.businessUnit
			}
			f.api.loginGrant = &session.TokenGrant{AccessToken: issueToken(t, claims)}
			f.api.needsErr = errors.New("backend down")

			current, err := f.manager.Login(context.Background(), newExchange().browser, "ana", "secret")
			require.NoError(t, err)
			assert.Equal(t, tt.want, current.NeedsBusinessUnitSelection)
		})
	}
}

/*
TestManager_Login_Failures verifies the error mapping and that nothing is stored.
*/
func TestManager_Login_Failures(t *testing.T) {
	tests := []struct {
		name       string
		grant      *session.TokenGrant
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", nil, &upstream.FetchError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"bad_request", nil, &upstream.FetchError{StatusCode: http.StatusBadRequest}, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"locked", nil, &upstream.FetchError{StatusCode: http.StatusLocked}, http.StatusLocked, apperr.CodeUpstreamRejected},
		{"server_error", nil, &upstream.FetchError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway, apperr.CodeBadGateway},
		{"network", nil, &upstream.FetchError{Err: errors.New("connection refused")}, http.StatusBadGateway, apperr.CodeBadGateway},
		{"malformed_token", &session.TokenGrant{AccessToken: "not-a-jwt"}, nil, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture()
			f.api.loginGrant = tt.grant
			f.api.loginErr = tt.err
			ex := newExchange()

			current, err := f.manager.Login(ctx, ex.browser, "ana", "wrong")
			require.Error(t, err)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.False(t, current.Authenticated())
			assert.Empty(t, f.events.keys)

			_, ok := f.tokens.Get(ctx, ex.next().browser, constants.TokenKey)
			assert.False(t, ok)
		})
	}
}

/*
TestManager_Login_RejectedMatchesSentinel verifies errors.Is against ErrInvalidCredentials.
*/
func TestManager_Login_RejectedMatchesSentinel(t *testing.T) {
	f := newFixture()
	f.api.loginErr = &upstream.FetchError{StatusCode: http.StatusUnauthorized}

	_, err := f.manager.Login(context.Background(), newExchange().browser, "ana", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

// # Logout

/*
TestManager_Logout_IsIdempotent verifies that a second logout changes nothing.
*/
func TestManager_Logout_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.api.loginGrant = &session.TokenGrant{AccessToken: issueToken(t, managerClaims()), RefreshToken: "r-1"}

	first := newExchange()
	_, err := f.manager.Login(ctx, first.browser, "ana", "secret")
	require.NoError(t, err)

	second := first.next()
	current := f.manager.Logout(ctx, second.browser)
	assert.Equal(t, session.StateUnauthenticated, current.State)
	assert.Nil(t, current.User)

	third := second.next()
	again := f.manager.Logout(ctx, third.browser)
	assert.Equal(t, current, again)

	for _, key := range []string{constants.TokenKey, constants.RefreshTokenKey, constants.LegacyTokenCookie} {
		_, ok := f.tokens.Get(ctx, third.next().browser, key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, []string{session.EventLogin, session.EventLogout}, f.events.keys)
	assert.Equal(t, 0, f.kv.Len())
}

// # Refresh

/*
TestManager_RefreshToken_WithoutRefreshTokenLogsOut verifies the missing-token path.
*/
func TestManager_RefreshToken_WithoutRefreshTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ex := newExchange()
	f.tokens.Set(ctx, ex.browser, constants.TokenKey, issueToken(t, managerClaims()), 7)

	current := f.manager.RefreshToken(ctx, ex.browser)

	assert.False(t, current.Authenticated())
	assert.Empty(t, f.api.refreshCalls)
	assert.Equal(t, []string{session.EventRefreshFailed, session.EventLogout}, f.events.keys)

	_, ok := f.tokens.Get(ctx, ex.browser, constants.TokenKey)
	assert.False(t, ok)
}

/*
TestManager_RefreshToken_EndpointFailureLogsOut verifies that a failing backend ends the session.
*/
func TestManager_RefreshToken_EndpointFailureLogsOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.api.refreshErr = &upstream.FetchError{StatusCode: http.StatusUnauthorized}
	ex := newExchange()
	f.tokens.Set(ctx, ex.browser, constants.TokenKey, issueToken(t, managerClaims()), 7)
	f.tokens.Set(ctx, ex.browser, constants.RefreshTokenKey, "r-1", 7)

	current := f.manager.RefreshToken(ctx, ex.browser)

	assert.Equal(t, session.StateUnauthenticated, current.State)
	assert.Equal(t, []string{"r-1"}, f.api.refreshCalls)

	_, ok := f.tokens.Get(ctx, ex.browser, constants.RefreshTokenKey)
	assert.False(t, ok)
}

/*
TestManager_RefreshToken_KeepsRefreshTokenUnlessRotated verifies the grant handling.
*/
func TestManager_RefreshToken_KeepsRefreshTokenUnlessRotated(t *testing.T) {
	tests := []struct {
		name    string
		rotated string
		want    string
	}{
		{"not_rotated", "", "r-1"},
		{"rotated", "r-2", "r-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture()
			renewed := issueToken(t, managerClaims())
			f.api.refreshGrant = &session.TokenGrant{AccessToken: renewed, RefreshToken: tt.rotated}
			ex := newExchange()
			f.tokens.Set(ctx, ex.browser, constants.RefreshTokenKey, "r-1", 7)

			current := f.manager.RefreshToken(ctx, ex.browser)
			require.True(t, current.Authenticated())
			assert.Equal(t, renewed, current.Token)

			refresh, ok := f.tokens.Get(ctx, ex.browser, constants.RefreshTokenKey)
			require.True(t, ok)
			assert.Equal(t, tt.want, refresh)
		})
	}
}

// # Restore

/*
TestManager_Restore covers the startup paths of a session.
*/
func TestManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_storage", func(t *testing.T) {
		f := newFixture()
		current := f.manager.Restore(ctx, newExchange().browser)
		assert.Equal(t, session.Anonymous(), current)
	})

	t.Run("unbound_browser", func(t *testing.T) {
		f := newFixture()
		assert.Equal(t, session.Anonymous(), f.manager.Restore(ctx, nil))
	})

	t.Run("stored_token", func(t *testing.T) {
		f := newFixture()
		claims := managerClaims()
		claims["business_unit_id"] = "bu-7"
		token := issueToken(t, claims)
		first := newExchange()
		f.tokens.Set(ctx, first.browser, constants.TokenKey, token, 7)

		current := f.manager.Restore(ctx, first.next().browser)
		require.True(t, current.Authenticated())
		assert.Equal(t, "u-1", current.User.ID)
		assert.False(t, current.NeedsBusinessUnitSelection)
		require.NotNil(t, current.User.BusinessUnitID)
		assert.Equal(t, "bu-7", *current.User.BusinessUnitID)
	})

	t.Run("malformed_token_is_cleared", func(t *testing.T) {
		f := newFixture()
		first := newExchange()
		f.tokens.Set(ctx, first.browser, constants.TokenKey, "garbage", 7)

		second := first.next()
		current := f.manager.Restore(ctx, second.browser)
		assert.Equal(t, session.Anonymous(), current)

		_, ok := f.tokens.Get(ctx, second.next().browser, constants.TokenKey)
		assert.False(t, ok)
	})

	t.Run("legacy_cookie_is_migrated", func(t *testing.T) {
		f := newFixture()
		token := issueToken(t, managerClaims())
		ex := newExchange(&http.Cookie{Name: constants.LegacyTokenCookie, Value: token})

		current := f.manager.Restore(ctx, ex.browser)
		require.True(t, current.Authenticated())

		next := ex.next()
		stored, ok := f.tokens.Get(ctx, next.browser, constants.TokenKey)
		require.True(t, ok)
		assert.Equal(t, token, stored)

		_, ok = f.tokens.Get(ctx, next.browser, constants.LegacyTokenCookie)
		assert.False(t, ok)
	})

	t.Run("expired_token_is_refreshed", func(t *testing.T) {
		f := newFixture()
		expired := managerClaims()
		expired["exp"] = time.Now().Add(-time.Minute).Unix()
		renewed := issueToken(t, managerClaims())
		f.api.refreshGrant = &session.TokenGrant{AccessToken: renewed}

		first := newExchange()
		f.tokens.Set(ctx, first.browser, constants.TokenKey, issueToken(t, expired), 7)
		f.tokens.Set(ctx, first.browser, constants.RefreshTokenKey, "r-1", 7)

		current := f.manager.Restore(ctx, first.next().browser)
		require.True(t, current.Authenticated())
		assert.Equal(t, renewed, current.Token)
		assert.Equal(t, []string{"r-1"}, f.api.refreshCalls)
	})

	t.Run("expired_token_without_refresh_logs_out", func(t *testing.T) {
		f := newFixture()
		expired := managerClaims()
		expired["exp"] = time.Now().Add(-time.Minute).Unix()

		first := newExchange()
		f.tokens.Set(ctx, first.browser, constants.TokenKey, issueToken(t, expired), 7)

		current := f.manager.Restore(ctx, first.next().browser)
		assert.Equal(t, session.StateUnauthenticated, current.State)
		assert.Contains(t, f.events.keys, session.EventRefreshFailed)
	})
}

// # Business Unit

/*
TestManager_SelectBusinessUnit verifies the republished session and the error paths.
*/
func TestManager_SelectBusinessUnit(t *testing.T) {
	ctx := context.Background()

	t.Run("no_session", func(t *testing.T) {
		f := newFixture()
		_, err := f.manager.SelectBusinessUnit(ctx, newExchange().browser, "bu-7")
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("selected", func(t *testing.T) {
		f := newFixture()
		scoped := managerClaims()
		scoped["business_unit_id"] = "bu-7"
		f.api.selectGrant = &session.TokenGrant{AccessToken: issueToken(t, scoped)}

		ex := newExchange()
		f.tokens.Set(ctx, ex.browser, constants.TokenKey, issueToken(t, managerClaims()), 7)
		f.tokens.Set(ctx, ex.browser, constants.RefreshTokenKey, "r-1", 7)

		current, err := f.manager.SelectBusinessUnit(ctx, ex.browser, "bu-7")
		require.NoError(t, err)
		assert.False(t, current.NeedsBusinessUnitSelection)
		require.NotNil(t, current.User.BusinessUnitID)
		assert.Equal(t, "bu-7", *current.User.BusinessUnitID)
		assert.Equal(t, []string{session.EventBusinessUnitSelected}, f.events.keys)

		refresh, ok := f.tokens.Get(ctx, ex.browser, constants.RefreshTokenKey)
		require.True(t, ok)
		assert.Equal(t, "r-1", refresh)
	})

	t.Run("rejected_keeps_session", func(t *testing.T) {
		f := newFixture()
		f.api.selectErr = &upstream.FetchError{StatusCode: http.StatusForbidden}

		ex := newExchange()
		f.tokens.Set(ctx, ex.browser, constants.TokenKey, issueToken(t, managerClaims()), 7)

		current, err := f.manager.SelectBusinessUnit(ctx, ex.browser, "bu-9")
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apperr.As(err).HTTPStatus)
		assert.True(t, current.Authenticated())
	})
}
