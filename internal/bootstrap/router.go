package bootstrap

import (
	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/handlers"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/metrics"
	"github.com/go-authgate/authbridge/internal/middleware"
	"github.com/go-authgate/authbridge/internal/services"
	"github.com/go-authgate/authbridge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	h handlerSet,
	recorder core.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Recovery())
	r.Use(util.RequestContextMiddleware())

	r.GET("/health", h.health.Health)
	setupMetricsEndpoint(r, cfg)

	loginLimiter := setupLoginRateLimit(cfg, auditService, rateLimitRedisClient)
	setupAllRoutes(r, cfg, h, loginLimiter)

	logServerStartup(cfg)
	return r
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		logger.Infof("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		logger.Infof("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		logger.Infof("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	loginLimiter gin.HandlerFunc,
) {
	r.GET("/", handlers.Index)
	r.POST("/login", loginLimiter, h.login.Login)

	// Operator routes exist only with an ADMIN_TOKEN.
	if cfg.AdminToken == "" {
		logger.Infof("Admin endpoints disabled (ADMIN_TOKEN unset)")
		return
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.AdminToken))

	if h.admin != nil {
		admin.GET("/certificate", h.admin.CertificateStatus)
		admin.POST("/certificate/reload", h.admin.ReloadCertificate)
	}

	if h.audit != nil {
		admin.GET("/audit", h.audit.ListAuditLogs)
		admin.GET("/audit/stats", h.audit.GetAuditLogStats)
		admin.GET("/audit/export", h.audit.ExportAuditLogs)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
		logger.Infof("Gin mode: Release (production)")
		return
	}
	gin.SetMode(gin.DebugMode)
	logger.Infof("Gin mode: Debug (development)")
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	logger.Infow("AuthBridge login gateway starting",
		"addr", cfg.ServerAddr,
		"directory_protocol", cfg.DirectoryProtocol,
		"certificate_login", cfg.CertificateEnabled(),
		"federation", cfg.FederateAfterDirectory,
		"audit", cfg.EnableAuditLogging,
	)
}
