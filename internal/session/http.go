// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/finboard/internal/platform/request"
	"github.com/taibuivan/finboard/internal/platform/respond"
	"github.com/taibuivan/finboard/internal/platform/validate"
	"github.com/taibuivan/finboard/pkg/pointer"
)

// # Definitions & Constructors

// Handler implements the session HTTP endpoints used by the single-page frontend.
type Handler struct {
	manager *Manager
}

// NewHandler constructs a new [Handler].
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns a [chi.Router] with the session endpoints.
//
// # Endpoints
//   - GET  /session       : The session restored for this request.
//   - POST /login         : Authenticates and stores the token.
//   - POST /signup        : Forwards a signup to the backend.
//   - POST /logout        : Clears every stored token.
//   - POST /refresh       : Renews the access token or logs out.
//   - POST /business-unit : Scopes the session to one business unit.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/session", handler.current)
	router.Post("/login", handler.login)
	router.Post("/signup", handler.signup)
	router.Post("/logout", handler.logout)
	router.Post("/refresh", handler.refresh)
	router.Post("/business-unit", handler.selectBusinessUnit)

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type businessUnitRequest struct {
	BusinessUnitID string `json:"business_unit_id"`
}

/*
GET /auth/session

Response:
  - 200: Session (token omitted)
*/
func (handler *Handler) current(writer http.ResponseWriter, request *http.Request) {
	current, ok := FromContext(request.Context())
	if !ok {
		current = handler.manager.Restore(request.Context(), browserFor(writer, request))
	}
	respond.OK(writer, current)
}

/*
POST /auth/login

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: Session
  - 400: Validation failure
  - 401: INVALID_CREDENTIALS
  - 502: Backend unreachable, retry possible
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, 255).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	current, err := handler.manager.Login(request.Context(), browserFor(writer, request), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, current)
}

/*
POST /auth/signup

Description: The body is forwarded untouched. The current token is attached
only when a session exists, for admin-initiated signups.

Response:
  - The backend's status and body
  - 502: Backend unreachable
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, 1<<20))
	if err != nil || !json.Valid(payload) {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	var token *string
	if current, ok := FromContext(request.Context()); ok && current.Authenticated() {
		token = pointer.NonZero(current.Token)
	}

	response, err := handler.manager.Signup(request.Context(), payload, token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(response.StatusCode)
	_, _ = writer.Write(response.Body)
}

/*
POST /auth/logout

Response:
  - 200: Unauthenticated session (always)
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.manager.Logout(request.Context(), browserFor(writer, request)))
}

/*
POST /auth/refresh

Response:
  - 200: Session, Unauthenticated when the refresh failed
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.manager.RefreshToken(request.Context(), browserFor(writer, request)))
}

/*
POST /auth/business-unit

Request:
  - Body: businessUnitRequest (BusinessUnitID)

Response:
  - 200: Session
  - 401: No session
  - 4xx: Rejected by the backend
  - 502: Backend unreachable
*/
func (handler *Handler) selectBusinessUnit(writer http.ResponseWriter, request *http.Request) {
	var input businessUnitRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).Required(FieldBusinessUnitID, input.BusinessUnitID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	current, err := handler.manager.SelectBusinessUnit(request.Context(), browserFor(writer, request), input.BusinessUnitID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, current)
}

// browserFor reuses the Browser bound by the session middleware so that
// cookie writes of one exchange stay consistent.
func browserFor(writer http.ResponseWriter, request *http.Request) *Browser {
	if b := BrowserFrom(request.Context()); b != nil {
		return b
	}
	return NewBrowser(writer, request)
}
