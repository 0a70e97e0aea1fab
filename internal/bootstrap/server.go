package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/metrics"
	"github.com/go-authgate/authbridge/internal/services"
	"github.com/go-authgate/authbridge/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance. The write timeout
// covers the slowest login: a directory bind followed by federation.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.DirectoryTimeout + cfg.FederationTimeout + cfg.TokenTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		logger.Infof("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Server forced to shutdown: %v", err)
			return err
		}

		logger.Infof("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis client: %v", err)
			return err
		}
		logger.Infof("Redis connection closed")
		return nil
	})
}

// addAuditServiceShutdownJob adds audit service shutdown handler
func addAuditServiceShutdownJob(m *graceful.Manager, auditService *services.AuditService) {
	m.AddShutdownJob(func() error {
		logger.Infof("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			logger.Errorf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addDatabaseCloseJob closes the audit database on shutdown
func addDatabaseCloseJob(m *graceful.Manager, db *store.Store) {
	if db == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			logger.Errorf("Error closing database: %v", err)
			return err
		}
		logger.Infof("Database connection closed")
		return nil
	})
}

// runAuditLogCleanup deletes expired audit logs once.
func runAuditLogCleanup(
	ctx context.Context,
	auditService *services.AuditService,
	retention time.Duration,
) {
	deleted, err := auditService.CleanupOldLogs(ctx, retention)
	switch {
	case err != nil:
		logger.Errorf("Failed to cleanup old audit logs: %v", err)
	case deleted > 0:
		logger.Infof("Cleaned up %d old audit logs", deleted)
	}
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !auditService.Enabled() || cfg.AuditLogRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		runAuditLogCleanup(ctx, auditService, cfg.AuditLogRetention)

		for {
			select {
			case <-ticker.C:
				runAuditLogCleanup(ctx, auditService, cfg.AuditLogRetention)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	recorder core.Recorder,
	metricsCache core.Cache[int64],
) {
	if db == nil || metricsCache == nil {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeUpdateInterval)
		defer ticker.Stop()

		cacheWrapper := metrics.NewCacheWrapper(db, metricsCache)

		updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder,
			cfg.RecentFailureWindow, cfg.MetricsGaugeUpdateInterval)

		for {
			select {
			case <-ticker.C:
				updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder,
					cfg.RecentFailureWindow, cfg.MetricsGaugeUpdateInterval)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addCacheCleanupJob adds cache cleanup on shutdown
func addCacheCleanupJob(m *graceful.Manager, name string, closer func() error) {
	if closer == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := closer(); err != nil {
			logger.Errorf("Error closing %s cache: %v", name, err)
		} else {
			logger.Infof("%s cache closed", name)
		}
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	mu              sync.Mutex
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]
	if exists && now.Sub(lastTime) < e.rateLimitWindow {
		return false
	}

	logger.Warnf("Database query failed for %s: %v (further errors will be suppressed for %v)",
		operation, err, e.rateLimitWindow)
	e.lastErrorTimes[operation] = now
	return true
}

var gaugeErrorLogger = newErrorLogger()

// recentFailureCounter is the part of metrics.CacheWrapper the gauge job needs.
type recentFailureCounter interface {
	GetRecentFailureCount(ctx context.Context, window, ttl time.Duration) (int64, error)
}

// updateGaugeMetricsWithCache refreshes gauges from the audit trail through
// the shared cache. The cache TTL matches the update interval.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	counter recentFailureCounter,
	recorder core.Recorder,
	window, cacheTTL time.Duration,
) {
	failures, err := counter.GetRecentFailureCount(ctx, window, cacheTTL)
	if err != nil {
		recorder.RecordDatabaseQueryError("count_recent_login_failures")
		gaugeErrorLogger.logIfNeeded("count_recent_login_failures", err)
		return
	}
	recorder.SetRecentLoginFailures(failures)
}
