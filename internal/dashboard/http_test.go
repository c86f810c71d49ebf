// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/finboard/internal/dashboard"
	"github.com/taibuivan/finboard/internal/session"
)

// loaderFunc adapts a function into a dashboard.Loader.
type loaderFunc func(ctx context.Context, query dashboard.Query) (*dashboard.Dashboard, error)

func (f loaderFunc) Load(ctx context.Context, query dashboard.Query) (*dashboard.Dashboard, error) {
	return f(ctx, query)
}

func signedInRequest(target string) *http.Request {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	return request.WithContext(session.WithSession(request.Context(), session.Session{
		State: session.StateAuthenticated,
		Token: "tok",
		User:  &session.User{ID: "u-1", TenantID: "t-1"},
	}))
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

/*
TestHandler_Load_PassesQuery verifies the query defaults and the token.
*/
func TestHandler_Load_PassesQuery(t *testing.T) {
	var got dashboard.Query
	loader := loaderFunc(func(_ context.Context, query dashboard.Query) (*dashboard.Dashboard, error) {
		got = query
		return &dashboard.Dashboard{Year: query.Year}, nil
	})
	handler := dashboard.NewHandler(loader, dashboard.NewTracker(time.Hour))

	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, signedInRequest("/?cursor=abc"))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, time.Now().Year(), got.Year)
	assert.Equal(t, dashboard.DefaultTransactionLimit, got.Limit)
	assert.Equal(t, "abc", got.Cursor)
	assert.Equal(t, "tok", got.Token)
}

/*
TestHandler_Load_RejectsInvalidInput covers the 400 and 401 answers.
*/
func TestHandler_Load_RejectsInvalidInput(t *testing.T) {
	handler := dashboard.NewHandler(loaderFunc(func(context.Context, dashboard.Query) (*dashboard.Dashboard, error) {
		t.Fatal("loader must not be called")
		return nil, nil
	}), dashboard.NewTracker(time.Hour))

	tests := []struct {
		name    string
		request *http.Request
		want    int
	}{
		{"year_too_small", signedInRequest("/?year=1899"), http.StatusBadRequest},
		{"year_too_large", signedInRequest("/?year=2201"), http.StatusBadRequest},
		{"year_not_a_number", signedInRequest("/?year=abc"), http.StatusBadRequest},
		{"limit_out_of_range", signedInRequest("/?year=2024&limit=101"), http.StatusBadRequest},
		{"anonymous", httptest.NewRequest(http.MethodGet, "/?year=2024", nil), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Routes().ServeHTTP(recorder, tt.request)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

/*
TestHandler_Load_AggregateFailure verifies the single retryable error.
*/
func TestHandler_Load_AggregateFailure(t *testing.T) {
	loadErr := &dashboard.LoadError{Year: 2024, Sections: []*dashboard.ExhaustedError{{
		Section: dashboard.SectionWallet,
		Attempts: []dashboard.Attempt{
			{Source: "wallet", Err: errors.New("status 500")},
			{Source: "saldo-disponivel", Err: errors.New("status 503")},
		},
	}}}
	handler := dashboard.NewHandler(loaderFunc(func(context.Context, dashboard.Query) (*dashboard.Dashboard, error) {
		return nil, loadErr
	}), dashboard.NewTracker(time.Hour))

	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, signedInRequest("/?year=2024"))

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, dashboard.CodeDashboardUnavailable, body.Code)
	assert.Contains(t, body.Error, "/api/dashboard?year=2024")
	require.Len(t, body.Details, 1)
	assert.Equal(t, dashboard.SectionWallet, body.Details[0].Field)
	assert.Equal(t, "All sources failed: wallet, saldo-disponivel", body.Details[0].Message)
	assert.NotContains(t, recorder.Body.String(), "status 503")
}

/*
TestHandler_Load_DiscardsStaleSelection verifies that a load overtaken by a
newer selection of the same viewer answers 409.
*/
func TestHandler_Load_DiscardsStaleSelection(t *testing.T) {
	tracker := dashboard.NewTracker(time.Hour)
	handler := dashboard.NewHandler(loaderFunc(func(_ context.Context, query dashboard.Query) (*dashboard.Dashboard, error) {
		if query.Year == 2023 {
			// The viewer picks another year while 2023 is still loading.
			// Without claims or a client cookie the viewer key is "/<user>".
			tracker.Begin("/u-1", 2024)
		}
		return &dashboard.Dashboard{Year: query.Year}, nil
	}), tracker)

	stale := httptest.NewRecorder()
	handler.Routes().ServeHTTP(stale, signedInRequest("/?year=2023"))
	assert.Equal(t, http.StatusConflict, stale.Code)
	assert.Contains(t, stale.Body.String(), dashboard.CodeStaleSelection)

	fresh := httptest.NewRecorder()
	handler.Routes().ServeHTTP(fresh, signedInRequest("/?year=2024"))
	assert.Equal(t, http.StatusOK, fresh.Code)
}

/*
TestHandler_Load_SameYearLoadsBothAnswer verifies that a second load of the
selected year, from another tab or a retry, does not discard the first.
*/
func TestHandler_Load_SameYearLoadsBothAnswer(t *testing.T) {
	var (
		handler *dashboard.Handler
		second  = httptest.NewRecorder()
		calls   int
	)
	handler = dashboard.NewHandler(loaderFunc(func(_ context.Context, query dashboard.Query) (*dashboard.Dashboard, error) {
		calls++
		if calls == 1 {
			handler.Routes().ServeHTTP(second, signedInRequest("/?year=2024&cursor=page-2"))
		}
		return &dashboard.Dashboard{Year: query.Year}, nil
	}), dashboard.NewTracker(time.Hour))

	first := httptest.NewRecorder()
	handler.Routes().ServeHTTP(first, signedInRequest("/?year=2024"))

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
}
