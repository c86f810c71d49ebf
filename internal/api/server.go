// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It is the composition root of the gateway: session restore, the route
    guard, the JSON API and the page shell meet here.
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/finboard/internal/dashboard"
	"github.com/taibuivan/finboard/internal/platform/config"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/middleware"
	"github.com/taibuivan/finboard/internal/preferences"
	"github.com/taibuivan/finboard/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It answers 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It answers 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Session handles login, signup, logout, refresh and business unit selection.
	Session *session.Handler

	// Dashboard serves the year-scoped financial aggregate.
	Dashboard *dashboard.Handler

	// Preferences stores widget collapse states.
	Preferences *preferences.Handler

	// Pages renders the frontend shell and the guard placeholder.
	Pages *Pages
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, restorer middleware.SessionRestorer, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Probes for container orchestration skip the session entirely.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Frontend Bundle
	// Static files are public; the shell pages referencing them are guarded.
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.AssetsDir))))

	// # Guarded Surface
	r.Group(func(app chi.Router) {
		app.Use(middleware.LoadSession(restorer))
		app.Use(middleware.Guard(Policy, middleware.GuardOptions{
			LoginPath:        constants.LoginPath,
			BusinessUnitPath: constants.BusinessUnitPath,
			Placeholder:      h.Pages.Placeholder,
		}))

		app.Mount("/auth", h.Session.Routes())
		app.Mount("/api/dashboard", h.Dashboard.Routes())
		app.Mount("/api/ui", h.Preferences.Routes())

		for _, page := range PageRoutes {
			app.Get(page, h.Pages.Shell)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ServeHTTP lets the server be exercised without a listener.
func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.router.ServeHTTP(writer, request)
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
