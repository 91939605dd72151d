package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/sessionauth/internal/auth/http"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	codec  *jwtx.Codec
	hasher *cryptox.PasswordHasher

	// Services
	tokenService   *service.TokenService
	profileService *service.ProfileService
	userService    *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "session-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the user store and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	version, dirty, err := db.SchemaVersion()
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		_ = db.Close()
		return fmt.Errorf("database schema version %d is dirty", version)
	}

	app.logger.Info("database migrations applied successfully", "schema_version", version)
	return nil
}

// DSN builds the modernc sqlite connection string for path.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// initCodec loads the signing secrets and builds the token codec
func (app *Application) initCodec() error {
	secrets, err := LoadSigningSecrets(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load signing secrets: %w", err)
	}

	codec, err := jwtx.NewCodec(jwtx.Options{
		Access:    jwtx.DomainConfig{Secret: secrets.Access, TTL: app.cfg.AccessTTL},
		Refresh:   jwtx.DomainConfig{Secret: secrets.Refresh, TTL: app.cfg.RefreshTTL},
		Issuer:    app.cfg.Issuer,
		ClockSkew: app.cfg.ClockSkew,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	app.logger.Info("token codec ready",
		"issuer", app.cfg.Issuer,
		"access_ttl", app.cfg.AccessTTL,
		"refresh_ttl", app.cfg.RefreshTTL,
		"clock_skew", app.cfg.ClockSkew,
	)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec: app.codec,
		Authenticator: &service.StoreAuthenticator{
			Store:  app.db,
			Hasher: app.hasher,
		},
	}
	app.profileService = &service.ProfileService{Store: app.db}
	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cfg.CookiePolicy(),
		app.logger,
	)

	router.TokenService = app.tokenService
	router.ProfileService = app.profileService
	router.ClientIP = app.cfg.ClientIP()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
