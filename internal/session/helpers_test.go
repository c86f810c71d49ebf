// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/finboard/internal/kvstore"
	"github.com/taibuivan/finboard/internal/session"
	"github.com/taibuivan/finboard/internal/upstream"
)

// issueToken signs claims the way the backend would.
func issueToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

// fakeAuthAPI records calls and answers with canned values.
type fakeAuthAPI struct {
	mu sync.Mutex

	loginGrant *session.TokenGrant
	loginErr   error

	refreshGrant *session.TokenGrant
	refreshErr   error
	refreshCalls []string

	needsSelection bool
	needsErr       error

	selectGrant *session.TokenGrant
	selectErr   error

	signupTokens []*string
	signupCalls  int
}

func (f *fakeAuthAPI) Login(context.Context, string, string) (*session.TokenGrant, error) {
	return f.loginGrant, f.loginErr
}

func (f *fakeAuthAPI) Signup(_ context.Context, _ json.RawMessage, token *string) (*upstream.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signupCalls++
	f.signupTokens = append(f.signupTokens, token)
	return &upstream.Response{StatusCode: http.StatusCreated, Header: http.Header{}, Body: []byte(`{"id":"u-9"}`)}, nil
}

func (f *fakeAuthAPI) Refresh(_ context.Context, refreshToken string) (*session.TokenGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls = append(f.refreshCalls, refreshToken)
	return f.refreshGrant, f.refreshErr
}

func (f *fakeAuthAPI) NeedsBusinessUnitSelection(context.Context, string) (bool, error) {
	return f.needsSelection, f.needsErr
}

func (f *fakeAuthAPI) SelectBusinessUnit(context.Context, string, string) (*session.TokenGrant, error) {
	return f.selectGrant, f.selectErr
}

// recordingPublisher captures published routing keys.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

// fixture wires a manager to an in-memory store.
type fixture struct {
	api     *fakeAuthAPI
	kv      *kvstore.MemoryStore
	tokens  *session.TokenStore
	events  *recordingPublisher
	manager *session.Manager
}

func newFixture() *fixture {
	api := &fakeAuthAPI{}
	kv := kvstore.NewMemoryStore(100)
	tokens := session.NewTokenStore(kv, true)
	events := &recordingPublisher{}
	return &fixture{
		api:     api,
		kv:      kv,
		tokens:  tokens,
		events:  events,
		manager: session.NewManager(api, tokens, events, 7),
	}
}

// exchange is one simulated browser round trip.
type exchange struct {
	incoming []*http.Cookie
	recorder *httptest.ResponseRecorder
	browser  *session.Browser
}

// newExchange starts a request carrying cookies.
func newExchange(cookies ...*http.Cookie) *exchange {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	var kept []*http.Cookie
	for _, cookie := range cookies {
		if cookie.MaxAge >= 0 && cookie.Value != "" {
			request.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
			kept = append(kept, cookie)
		}
	}

	recorder := httptest.NewRecorder()
	return &exchange{incoming: kept, recorder: recorder, browser: session.NewBrowser(recorder, request)}
}

// next carries the cookies of this exchange into a new one, the way a
// browser would.
func (e *exchange) next() *exchange {
	jar := map[string]*http.Cookie{}
	for _, cookie := range e.incoming {
		jar[cookie.Name] = cookie
	}
	for _, cookie := range e.recorder.Result().Cookies() {
		jar[cookie.Name] = cookie
	}

	var cookies []*http.Cookie
	for _, cookie := range jar {
		cookies = append(cookies, cookie)
	}
	return newExchange(cookies...)
}

func (e *exchange) cookie(name string) *http.Cookie {
	var found *http.Cookie
	for _, cookie := range e.recorder.Result().Cookies() {
		if cookie.Name == name {
			found = cookie
		}
	}
	return found
}
