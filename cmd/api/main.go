// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Finboard gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the key-value storage backend.
//  4. Bind the upstream REST backend.
//  5. Connect the session event publisher (optional).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/finboard/internal/api"
	"github.com/taibuivan/finboard/internal/dashboard"
	"github.com/taibuivan/finboard/internal/kvstore"
	"github.com/taibuivan/finboard/internal/platform/amqp"
	"github.com/taibuivan/finboard/internal/platform/config"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/preferences"
	"github.com/taibuivan/finboard/internal/session"
	"github.com/taibuivan/finboard/internal/upstream"
)

// preferenceTTLDays is how long widget collapse states are remembered.
const preferenceTTLDays = 180

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Finboard] service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// Background workers (janitors, sweepers, rate limiter cleanup) stop with this context.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Key-Value Storage ──────────────────────────────────────────────
	kv, err := kvstore.Open(appCtx, cfg, log)
	must(log, err, "open kvstore")
	defer func() {
		log.Info("closing kvstore")
		if cerr := kv.Close(); cerr != nil {
			log.Error("kvstore close error", slog.Any("error", cerr))
		}
	}()
	must(log, kv.Ping(startupCtx), "ping kvstore")

	// ── 4. Upstream Backend ───────────────────────────────────────────────
	client, err := upstream.New(cfg.APIBaseURL, cfg.UpstreamTimeout)
	must(log, err, "bind upstream backend")

	// ── 5. Session Events ─────────────────────────────────────────────────
	checks := []api.HealthCheck{{Name: "kvstore", Check: kv.Ping}}

	var events session.EventPublisher = session.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		must(log, err, "connect to amqp")
		defer func() {
			log.Info("closing amqp publisher")
			if cerr := publisher.Close(); cerr != nil {
				log.Error("amqp close error", slog.Any("error", cerr))
			}
		}()
		events = publisher
		checks = append(checks, api.HealthCheck{Name: "amqp", Check: publisher.Ping})
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(checks, log)

	tokens := session.NewTokenStore(kv, cfg.CookieSecure)
	manager := session.NewManager(session.NewHTTPAuthAPI(client), tokens, events, cfg.TokenTTLDays)

	tracker := dashboard.NewTracker(dashboard.DefaultViewerIdleTTL)
	tracker.StartPruner(appCtx, time.Minute, log)

	pages, err := api.NewPages()
	must(log, err, "parse page templates")

	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Session:     session.NewHandler(manager),
		Dashboard:   dashboard.NewHandler(dashboard.NewUpstreamAggregator(client), tracker),
		Preferences: preferences.NewHandler(preferences.NewStore(tokens, preferenceTTLDays)),
		Pages:       pages,
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(appCtx, cfg, log, manager, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		appCancel()
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
