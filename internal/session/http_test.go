// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/session"
	"github.com/taibuivan/finboard/internal/upstream"
)

func serve(handler *session.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Signup_AttachesTokenOnlyWithSession covers both signup origins:
a visitor signing up alone and an admin creating an account.
*/
func TestHandler_Signup_AttachesTokenOnlyWithSession(t *testing.T) {
	f := newFixture()
	handler := session.NewHandler(f.manager)
	payload := `{"username":"new","password":"pw","email":"new@example.com"}`

	// Anonymous visitor.
	anonymous := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(payload))
	recorder := serve(handler, anonymous)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"id":"u-9"}`, recorder.Body.String())

	// Signed-in admin.
	token := issueToken(t, managerClaims())
	admin := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(payload))
	admin = admin.WithContext(session.WithSession(admin.Context(), session.Session{
		State: session.StateAuthenticated,
		Token: token,
		User:  &session.User{ID: "u-1", Role: "admin"},
	}))
	serve(handler, admin)

	require.Len(t, f.api.signupTokens, 2)
	assert.Nil(t, f.api.signupTokens[0])
	require.NotNil(t, f.api.signupTokens[1])
	assert.Equal(t, token, *f.api.signupTokens[1])
}

/*
TestHandler_Signup_RejectsInvalidJSON verifies that nothing reaches the backend.
*/
func TestHandler_Signup_RejectsInvalidJSON(t *testing.T) {
	f := newFixture()
	request := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"broken`))

	recorder := serve(session.NewHandler(f.manager), request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, f.api.signupCalls)
}

/*
TestHandler_Login covers the HTTP mapping of a login.
*/
func TestHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
		wantCode   string
	}{
		{"success", `{"username":"ana","password":"secret"}`, nil, http.StatusOK, ""},
		{"missing_password", `{"username":"ana"}`, nil, http.StatusBadRequest, apperr.CodeValidation},
		{"invalid_json", `nope`, nil, http.StatusBadRequest, apperr.CodeValidation},
		{"rejected", `{"username":"ana","password":"x"}`, &upstream.FetchError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"unreachable", `{"username":"ana","password":"x"}`, &upstream.FetchError{StatusCode: http.StatusServiceUnavailable}, http.StatusBadGateway, apperr.CodeBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.api.loginGrant = &session.TokenGrant{AccessToken: issueToken(t, managerClaims())}
			f.api.loginErr = tt.loginErr

			request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			recorder := serve(session.NewHandler(f.manager), request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantCode != "" {
				var envelope struct {
					Code string `json:"code"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
				assert.Equal(t, tt.wantCode, envelope.Code)
				return
			}

			// The token stays in the cookie and never appears in the body.
			assert.NotContains(t, recorder.Body.String(), f.api.loginGrant.AccessToken)
			var envelope struct {
				Data session.Session `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, session.StateAuthenticated, envelope.Data.State)
			assert.Equal(t, "t-1", envelope.Data.User.TenantID)

			var stored bool
			for _, cookie := range recorder.Result().Cookies() {
				if cookie.Name == constants.TokenKey && cookie.MaxAge > 0 {
					stored = true
				}
			}
			assert.True(t, stored)
		})
	}
}

/*
TestHandler_Logout always answers with an anonymous session.
*/
func TestHandler_Logout(t *testing.T) {
	f := newFixture()
	request := httptest.NewRequest(http.MethodPost, "/logout", nil)

	recorder := serve(session.NewHandler(f.manager), request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"state":"unauthenticated"`)
}

/*
TestHandler_SelectBusinessUnit_RequiresSession verifies the 401 without a token.
*/
func TestHandler_SelectBusinessUnit_RequiresSession(t *testing.T) {
	f := newFixture()
	request := httptest.NewRequest(http.MethodPost, "/business-unit", strings.NewReader(`{"business_unit_id":"bu-7"}`))

	recorder := serve(session.NewHandler(f.manager), request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
