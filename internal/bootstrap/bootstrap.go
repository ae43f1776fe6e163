package bootstrap

import (
	"errors"
	"net/http"

	"github.com/go-authgate/accountgate/internal/config"
	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/handlers"
	"github.com/go-authgate/accountgate/internal/metrics"
	"github.com/go-authgate/accountgate/internal/services"
	"github.com/go-authgate/accountgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// Core infrastructure
	DB              *store.Store // nil unless the local provider is selected
	MetricsRecorder metrics.Recorder
	Provider        core.IdentityProvider

	// Services
	AccountService *services.AccountService

	// HTTP
	AccountHandler *handlers.AccountHandler
	Router         *gin.Engine
	Server         *http.Server
}

// New validates the configuration and wires the infrastructure and business
// layers. The HTTP layer is only built by Run.
func New(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	// Phase 1: Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return nil, err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return nil, errors.Join(err, app.Close())
	}

	return app, nil
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	logger, err := NewLogger(cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	app, err := New(cfg, logger)
	if err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// Close releases resources held by the application
func (app *Application) Close() error {
	if app.DB == nil {
		return nil
	}
	return app.DB.Close()
}

// initializeInfrastructure sets up metrics and, for the local provider, the database
func (app *Application) initializeInfrastructure() error {
	app.MetricsRecorder = metrics.Init(app.Config.MetricsEnabled)

	if app.Config.IdentityProvider != config.IdentityProviderLocal {
		return nil
	}

	db, err := initializeDatabase(app.Config)
	if err != nil {
		return err
	}
	app.DB = db
	app.Logger.Info("database ready",
		zap.String("driver", app.Config.DatabaseDriver),
	)
	return nil
}

// initializeBusinessLayer sets up the identity provider and account service
func (app *Application) initializeBusinessLayer() error {
	provider, err := initializeIdentityProvider(app.Config, app.DB, app.MetricsRecorder)
	if err != nil {
		return err
	}
	app.Provider = provider
	app.Logger.Info("identity provider enabled", zap.String("provider", provider.Name()))

	app.AccountService = services.NewAccountService(provider, app.MetricsRecorder, app.Logger)
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.AccountHandler = handlers.NewAccountHandler(app.AccountService, app.Logger)
	app.Router = setupRouter(app.Config, app.AccountHandler, app.MetricsRecorder, app.Logger)
	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server, app.Logger)
	addServerShutdownJob(m, app.Server, app.Config.ServerShutdownTimeout, app.Logger)
	addStoreShutdownJob(m, app.DB, app.Logger)

	<-m.Done()
}
