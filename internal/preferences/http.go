// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package preferences

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/finboard/internal/platform/request"
	"github.com/taibuivan/finboard/internal/platform/respond"
	"github.com/taibuivan/finboard/internal/platform/validate"
	"github.com/taibuivan/finboard/internal/session"
)

// Handler serves the widget preference endpoints.
type Handler struct {
	store *Store
}

// NewHandler constructs a new [Handler].
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes returns a [chi.Router] with the preference endpoints.
//
// # Endpoints
//   - GET    /widgets/{widget}/collapse : The stored collapse state.
//   - PUT    /widgets/{widget}/collapse : Merges a partial state.
//   - DELETE /widgets/{widget}/collapse : Forgets the state.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/widgets/{widget}/collapse", handler.get)
	router.Put("/widgets/{widget}/collapse", handler.put)
	router.Delete("/widgets/{widget}/collapse", handler.reset)

	return router
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	widget, ok := widgetParam(writer, request)
	if !ok {
		return
	}
	respond.OK(writer, handler.store.Get(request.Context(), browserFor(writer, request), widget))
}

/*
PUT /api/ui/widgets/{widget}/collapse

Request:
  - Body: CollapseState (item id -> collapsed)

Response:
  - 200: The merged CollapseState
  - 400: Invalid widget name or payload, or a merged state over the size limits
*/
func (handler *Handler) put(writer http.ResponseWriter, request *http.Request) {
	widget, ok := widgetParam(writer, request)
	if !ok {
		return
	}

	var changes CollapseState
	if err := requestutil.DecodeJSON(writer, request, &changes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Custom("state", len(changes) > MaxItems, "Too many items")
	for id := range changes {
		validator.Identifier("state", id).MaxLen("state", id, 64)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	browser := browserFor(writer, request)
	state, err := handler.store.Merge(request.Context(), browser, widget, changes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, state)
}

func (handler *Handler) reset(writer http.ResponseWriter, request *http.Request) {
	widget, ok := widgetParam(writer, request)
	if !ok {
		return
	}
	handler.store.Reset(request.Context(), browserFor(writer, request), widget)
	respond.NoContent(writer)
}

func widgetParam(writer http.ResponseWriter, request *http.Request) (string, bool) {
	widget := requestutil.Param(request, "widget")

	validator := &validate.Validator{}
	validator.Slug("widget", widget).MaxLen("widget", widget, 48)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return "", false
	}
	return widget, true
}

func browserFor(writer http.ResponseWriter, request *http.Request) *session.Browser {
	if browser := session.BrowserFrom(request.Context()); browser != nil {
		return browser
	}
	return session.NewBrowser(writer, request)
}
