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

	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/bootstrap"
	"github.com/chris/caronaexpress/pkg/config"
	"github.com/chris/caronaexpress/pkg/handlers"
	"github.com/chris/caronaexpress/pkg/handlers/ledger"
	"github.com/chris/caronaexpress/pkg/handlers/rides"
	"github.com/chris/caronaexpress/pkg/handlers/wallets"
	"github.com/chris/caronaexpress/pkg/handlers/websockets"
	"github.com/chris/caronaexpress/pkg/logging"
	"github.com/chris/caronaexpress/pkg/middleware"
	websocketspkg "github.com/chris/caronaexpress/pkg/websockets"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("starting server", slog.String("port", cfg.HTTPPort), slog.String("storage", cfg.StorageBackend))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newRouter(app *bootstrap.App) http.Handler {
	handler := handlers.NewApiHandler(
		rides.NewRidesHandler(app.Rides, app.Discovery, app.Acceptance, app.Catalog),
		ledger.NewLedgerHandler(app.Ledger),
		wallets.NewWalletsHandler(app.Ledger, app.Deposits),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.NewStructuredLogger(app.Logger))
	router.Use(middleware.Metrics)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator([]byte(app.Config.JWTSecret), app.Ledger, app.Logger))

		// With API Gateway in front, balance updates go to the gateway's
		// connections and this socket only streams search results.
		var connections websocketspkg.ConnectionManager
		if app.LocalSockets() {
			connections = app.Store
		}
		r.Method(http.MethodGet, "/rides/live", websockets.NewLiveHandler(connections, app.Hub, app.Discovery, app.Logger))

		// Use the generated function to mount our handler on the router
		api.HandlerWithOptions(handler, api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: handlers.ParamError,
		})
	})

	return router
}
