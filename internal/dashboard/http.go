// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/finboard/internal/platform/request"
	"github.com/taibuivan/finboard/internal/platform/respond"
	"github.com/taibuivan/finboard/internal/platform/validate"
	"github.com/taibuivan/finboard/internal/session"
)

// # Error Codes

const (
	CodeDashboardUnavailable = "DASHBOARD_UNAVAILABLE"
	CodeStaleSelection       = "STALE_SELECTION"
)

// Loader loads one dashboard. [Aggregator] implements it.
type Loader interface {
	Load(ctx context.Context, query Query) (*Dashboard, error)
}

// Handler serves the dashboard API.
type Handler struct {
	loader  Loader
	tracker *Tracker
	now     func() time.Time
}

// NewHandler constructs a new [Handler].
func NewHandler(loader Loader, tracker *Tracker) *Handler {
	return &Handler{loader: loader, tracker: tracker, now: time.Now}
}

// Routes returns a [chi.Router] with the dashboard endpoints.
//
// # Endpoints
//   - GET / : The aggregated dashboard of one year.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.load)
	return router
}

/*
GET /api/dashboard

Request:
  - Query: year (default current year, 1900..2200), limit (default 10, 1..100), cursor

Response:
  - 200: Dashboard
  - 400: Invalid year or limit
  - 401: No session
  - 409: STALE_SELECTION (the viewer selected another year meanwhile)
  - 502: DASHBOARD_UNAVAILABLE with one detail per failed section
*/
func (handler *Handler) load(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	current, ok := session.FromContext(ctx)
	if !ok || !current.Authenticated() {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	query, err := handler.parseQuery(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	query.Token = current.Token

	ticket := handler.tracker.Begin(viewerKey(ctx, current), query.Year)
	result, err := handler.loader.Load(ctx, query)

	if !handler.tracker.Current(ticket) {
		ctxutil.GetLogger(ctx).InfoContext(ctx, "dashboard_result_discarded", slog.Int("year", query.Year))
		respond.Error(writer, request, apperr.Conflict(CodeStaleSelection, "A newer year selection replaced this request"))
		return
	}

	if err != nil {
		respond.Error(writer, request, unavailable(query, err))
		return
	}

	respond.OK(writer, result)
}

func (handler *Handler) parseQuery(request *http.Request) (Query, error) {
	year, err := requestutil.QueryInt(request, "year", handler.now().Year())
	if err != nil {
		return Query{}, err
	}

	limit, err := requestutil.QueryInt(request, "limit", DefaultTransactionLimit)
	if err != nil {
		return Query{}, err
	}

	validator := &validate.Validator{}
	validator.Range("year", year, MinYear, MaxYear).
		Range("limit", limit, 1, MaxTransactionLimit).
		MaxLen("cursor", request.URL.Query().Get("cursor"), 512).
		Printable("cursor", request.URL.Query().Get("cursor"))
	if err := validator.Err(); err != nil {
		return Query{}, err
	}

	return Query{
		Year:   year,
		Limit:  limit,
		Cursor: strings.TrimSpace(request.URL.Query().Get("cursor")),
	}, nil
}

// viewerKey scopes latest-wins tracking to one browser of one user of one tenant.
func viewerKey(ctx context.Context, current session.Session) string {
	key := ctxutil.TenantID(ctx) + "/" + current.User.ID
	if clientID, ok := session.BrowserFrom(ctx).Cookie(constants.ClientIDCookie); ok {
		key += ":" + clientID
	}
	return key
}

// unavailable maps a failed load to a single retryable error for the whole dashboard.
func unavailable(query Query, err error) *apperr.AppError {
	var details []apperr.FieldError
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		for _, section := range loadErr.Sections {
			sources := make([]string, 0, len(section.Attempts))
			for _, attempt := range section.Attempts {
				sources = append(sources, attempt.Source)
			}
			details = append(details, apperr.FieldError{
				Field:   section.Section,
				Message: "All sources failed: " + strings.Join(sources, ", "),
			})
		}
	}

	message := fmt.Sprintf("The dashboard for %d could not be loaded. Retry: /api/dashboard?year=%d", query.Year, query.Year)
	return apperr.BadGateway(CodeDashboardUnavailable, message, err, details...)
}
