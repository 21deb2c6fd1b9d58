package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/canvasstrack/voterroll/internal/app"
	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/restapi"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/internal/webui"
	"github.com/canvasstrack/voterroll/rolldb"
)

const (
	envJWTSecret = "VOTERROLL_JWT_SECRET"
	envDBDSN     = "VOTERROLL_DB_DSN"

	minProductionSecretLength = 32
)

// ApplyEnvOverrides lets secrets come from the environment (or a .env file)
// instead of flags or config files.
func ApplyEnvOverrides(cfg *appconf.Config, dbCfg *rolldb.Config, getenv func(string) string) {
	if secret := strings.TrimSpace(getenv(envJWTSecret)); secret != "" {
		cfg.JWTSecret = secret
	}
	if dsn := strings.TrimSpace(getenv(envDBDSN)); dsn != "" {
		dbCfg.DSN = dsn
	}
}

// validateSecrets refuses to start a production server with a guessable
// signing key.
func validateSecrets(cfg appconf.Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("a JWT secret is required (set %s)", envJWTSecret)
	}
	if cfg.Env == appconf.Production && len(cfg.JWTSecret) < minProductionSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters in production", minProductionSecretLength)
	}
	return nil
}

// BuildApplication creates and initializes the Application with all dependencies.
// This includes creating the logger and opening the roll database.
func BuildApplication(cfg appconf.Config, dbCfg rolldb.Config, tuning search.Tuning) (*app.Application, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := validateSecrets(cfg); err != nil {
		return nil, err
	}

	coreApp, err := app.New(cfg, dbCfg, tuning, clock.RealClock{}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return coreApp, nil
}

// CreateServer creates and configures the HTTP server with routes and middleware.
// Sets up both REST API routes and WebUI routes, applies security headers, and adds request logging.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	webUI := &webui.WebUI{
		Application: coreApp,
	}

	mux := http.NewServeMux()

	api.SetRoutes(mux)
	webUI.SetWebUIRoutes(mux)

	// Wrap with security middleware
	secureHandler := api.WithSecurityHeaders(mux)

	// Request logging sees the request id, so the id middleware is outermost
	requestLogger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)
	handler := restapi.RequestIDMiddleware(restapi.NewRequestLoggingMiddleware(requestLogger)(secureHandler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // PDF exports of a full roll take a while
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}

	return srv, api
}

// Run manages the server lifecycle with graceful shutdown.
// Starts the server in a goroutine, waits for shutdown signals (SIGINT, SIGTERM),
// and performs graceful shutdown with a 30-second timeout.
func Run(srv *http.Server, api *restapi.RestAPI, logger *slog.Logger) error {
	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runUntil(ctx, srv, api, logger)
}

func runUntil(ctx context.Context, srv *http.Server, api *restapi.RestAPI, logger *slog.Logger) error {
	logger.Info("starting server", "addr", srv.Addr)

	// Channel to capture server errors
	serverErrors := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for either shutdown signal or server error
	select {
	case err := <-serverErrors:
		api.Shutdown()
		logging.SafeCloseWithLogging(api.Application, logger, "application")
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop the rate limiter sweep and release the database pool
	api.Shutdown()
	logging.SafeCloseWithLogging(api.Application, logger, "application")

	logger.Info("server exited")
	return nil
}
