package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/oxleyhq/apigate/internal/gateway/http"
	"github.com/oxleyhq/apigate/internal/gateway/service"
	"github.com/oxleyhq/apigate/internal/gateway/store"
	"github.com/oxleyhq/apigate/internal/gateway/store/drivers/sqlite"
	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/ratex"
	"github.com/oxleyhq/apigate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	limiter *ratex.Limiter

	credentialService   *service.CredentialService
	tokenService        *service.TokenService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "apigate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.credentialService.EnsureBootstrapUser(
		context.Background(), cfg.BootstrapUsername, cfg.BootstrapPassword,
	); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed bootstrap user: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gateway starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.limiter = ratex.New(
		ratex.NewMemoryStore(),
		app.cfg.RateLimitMax,
		app.cfg.RateLimitWindow,
	)

	app.credentialService = &service.CredentialService{Store: app.db}
	app.tokenService = &service.TokenService{
		Secret:    []byte(app.cfg.Secret),
		UserTTL:   app.cfg.UserTokenTTL,
		AccessTTL: app.cfg.AccessTokenTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.limiter,
		app.logger,
		app.cfg.SweepInterval,
	)
}

func (app *Application) initHTTP() {
	respond := apierr.Responder{Production: app.cfg.Env == "prod"}

	router := httpapi.NewRouter(
		[]byte(app.cfg.Secret),
		app.db,
		app.limiter,
		respond,
		app.logger,
	)

	router.Credentials = app.credentialService
	router.Tokens = app.tokenService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
