package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-authgate/authbridge/internal/cache"
	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/metrics"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		logger.Infof("Prometheus metrics initialized")
	} else {
		logger.Infof("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// newCache builds a cache of the configured backend under a key prefix.
func newCache[T any](
	ctx context.Context,
	cfg *config.Config,
	name, keyPrefix string,
) (core.Cache[T], func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.CacheType {
	case config.CacheTypeRedis:
		c, err := cache.NewRueidisCache[T](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			keyPrefix,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis %s cache: %w", name, err)
		}
		logger.Infof("%s cache: redis (addr=%s, db=%d)", name, cfg.RedisAddr, cfg.RedisDB)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[T]()
		logger.Infof("%s cache: memory (single instance only)", name)
		return c, c.Close, nil
	}
}

// initializeMetricsCache initializes the gauge cache. Returns nil when
// gauges are not updated.
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[int64], func() error, error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || !cfg.EnableAuditLogging {
		return nil, nil, nil
	}
	return newCache[int64](ctx, cfg, "Metrics", "authbridge:metrics:")
}

// initializeIdentityCache initializes the federated identity cache.
// Returns nil when FEDERATION_CACHE_TTL is zero or federation is off.
func initializeIdentityCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[core.FederatedIdentity], func() error, error) {
	if !cfg.FederateAfterDirectory || cfg.FederationCacheTTL <= 0 {
		return nil, nil, nil
	}
	return newCache[core.FederatedIdentity](ctx, cfg, "Identity", "authbridge:identity:")
}
