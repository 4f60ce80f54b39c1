package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pasta-logger/internal/auth"
	"pasta-logger/internal/config"
	"pasta-logger/internal/cooking"
	"pasta-logger/internal/database"
	"pasta-logger/internal/handler"
	"pasta-logger/internal/mail"
	"pasta-logger/internal/realtime"
	"pasta-logger/internal/repository"
	"pasta-logger/internal/router"
	"pasta-logger/internal/service"
	"pasta-logger/internal/storage"
	"pasta-logger/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting pasta logger")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	repos := repository.New(pool, logger)

	// Object storage: S3 when enabled, local disk otherwise
	store := storage.New(ctx, cfg.Storage, cfg.Server.BaseURL, cfg.Auth.JWTSecret, logger)

	// Outgoing mail: SES when enabled, log output otherwise
	mailer := mail.New(ctx, cfg.Mail, logger)

	// Live cooking timers push their events through the hub
	hub := realtime.NewHub(logger)
	defer hub.Close()

	tracker := cooking.NewTracker(cooking.Options{
		TickInterval: cfg.Cooking.TickInterval,
		BoilSeconds:  cfg.Cooking.DefaultBoilSeconds,
		IdleTimeout:  cfg.Cooking.IdleTimeout,
	}, hub.Sink, logger)
	defer tracker.Close()

	// Initialize services
	authService := auth.NewService(repos.Users, repos.MagicLinks, mailer, cfg.Auth, cfg.Server.BaseURL, logger)
	logService := service.NewLogService(repos.Logs, repos.PastaKinds, repos.Cheeses, store, cfg.Storage.SignedURLTTL, logger)
	masterService := service.NewMasterService(repos.Recipes, repos.PastaKinds, repos.Cheeses, store, cfg.Storage.SignedURLTTL, logger)

	views, err := view.New(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize views: %w", err)
	}

	// Initialize HTTP handlers
	dashboard := cfg.Backend.DashboardURL
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, views, dashboard, cfg.Auth.SecureCookies, logger),
		Logs:    handler.NewLogHandler(logService, masterService, tracker, views, dashboard, logger),
		Cooking: handler.NewCookingHandler(tracker, hub, logger),
		Masters: handler.NewMasterHandler(masterService, views, dashboard, logger),
	}
	if local, ok := store.(*storage.LocalStore); ok {
		handlers.Files = handler.NewFileHandler(local, logger)
	}

	// Initialize router
	mux := router.New(handlers, authService, cfg.Auth.SecureCookies, logger)

	// Create HTTP server. No WriteTimeout: websocket connections outlive
	// any fixed deadline and set their own per write.
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("base_url", cfg.Server.BaseURL).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Hijacked websocket connections are not tracked by Shutdown
		hub.Close()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
