package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/services"
	"github.com/go-authgate/authbridge/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store // nil when audit logging is disabled
	MetricsRecorder      core.Recorder
	MetricsCache         core.Cache[int64]
	MetricsCacheCloser   func() error
	IdentityCache        core.Cache[core.FederatedIdentity]
	IdentityCacheCloser  func() error
	RateLimitRedisClient *redis.Client

	// Trust backends
	Directory        core.DirectoryVerifier
	CertificateStore *auth.CertificateStore // nil when the certificate path is disabled
	Certificate      core.CertificateVerifier
	Resolver         core.IdentityResolver

	// Services
	AuditService       *services.AuditService
	AuthService        *services.AuthService
	CertificateService *services.CertificateService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize trust backends and business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, caches, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, app.MetricsCacheCloser, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	app.IdentityCache, app.IdentityCacheCloser, err = initializeIdentityCache(ctx, app.Config)
	if err != nil {
		return err
	}

	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer builds the trust backends and the services on top
func (app *Application) initializeBusinessLayer() error {
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	var err error
	app.Directory, err = initializeDirectory(app.Config)
	if err != nil {
		return err
	}
	app.CertificateStore, app.Certificate, err = initializeCertificate(app.Config)
	if err != nil {
		return err
	}
	app.Resolver = initializeResolver(app.Config, app.IdentityCache)

	app.AuthService, app.CertificateService = initializeServices(
		app.Config,
		app.Directory,
		app.CertificateStore,
		app.Certificate,
		app.Resolver,
		app.MetricsRecorder,
		app.AuditService,
	)
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(
		app.DB,
		app.IdentityCache,
		app.AuthService,
		app.CertificateService,
		app.AuditService,
	)

	app.Router = setupRouter(
		app.Config,
		app.HandlerSet,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addAuditServiceShutdownJob(m, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.MetricsCache)
	addCacheCleanupJob(m, "metrics", app.MetricsCacheCloser)
	addCacheCleanupJob(m, "identity", app.IdentityCacheCloser)
	addDatabaseCloseJob(m, app.DB)

	<-m.Done()
}
