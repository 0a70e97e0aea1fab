package bootstrap

import (
	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/middleware"
	"github.com/go-authgate/authbridge/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// setupLoginRateLimit returns the /login limiter, or a pass-through when
// rate limiting is disabled. redisClient is nil for the memory store.
func setupLoginRateLimit(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) gin.HandlerFunc {
	if !cfg.EnableRateLimit {
		logger.Infof("Rate limiting disabled")
		return func(c *gin.Context) { c.Next() }
	}

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		logger.Infof("Rate limiting enabled (store: redis, %d/min per IP)", cfg.LoginRateLimit)
	} else {
		logger.Infof("Rate limiting enabled (store: memory, %d/min per IP, single instance only)",
			cfg.LoginRateLimit)
	}

	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.LoginRateLimit,
		CleanupInterval:   cfg.RateLimitCleanupInterval,
		Endpoint:          "/login",
		StoreType:         storeType,
		RedisClient:       redisClient,
		AuditService:      auditService,
	})
	if err != nil {
		logger.Fatalf("Failed to create rate limiter for /login: %v", err)
	}
	return limiter
}
