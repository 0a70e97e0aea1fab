package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-authgate/authbridge/internal/models"
	"github.com/go-authgate/authbridge/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType defines the type of rate limit store
type RateLimitStoreType string

const (
	// RateLimitStoreMemory uses in-memory storage (single instance only)
	RateLimitStoreMemory RateLimitStoreType = "memory"
	// RateLimitStoreRedis uses Redis storage (shared across replicas)
	RateLimitStoreRedis RateLimitStoreType = "redis"
)

// ErrRedisClientRequired is returned when the redis store is selected
// without a client.
var ErrRedisClientRequired = errors.New("redis client is required for redis rate limit store")

// RateLimitConfig holds the configuration for rate limiting with store support
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // memory store only
	Endpoint          string        // recorded in audit details

	StoreType   RateLimitStoreType
	RedisClient *redis.Client // shared client, owned by the caller

	// AuditService, when set, records every rejected request.
	AuditService *services.AuditService
}

// NewRateLimiter creates a per-client-IP rate limiter with configurable store backend
func NewRateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	if config.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", config.RequestsPerMinute)
	}

	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(config.RequestsPerMinute),
	}

	var store limiter.Store
	var err error

	switch config.StoreType {
	case RateLimitStoreRedis:
		if config.RedisClient == nil {
			return nil, ErrRedisClientRequired
		}
		store, err = limiterRedis.NewStoreWithOptions(config.RedisClient, limiter.StoreOptions{
			Prefix:          "authbridge:ratelimit",
			CleanUpInterval: config.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}

	case RateLimitStoreMemory:
		fallthrough
	default:
		cleanup := config.CleanupInterval
		if cleanup <= 0 {
			cleanup = limiter.DefaultCleanUpInterval
		}
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          "authbridge:ratelimit",
			CleanUpInterval: cleanup,
		})
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		if config.AuditService != nil {
			config.AuditService.Log(c.Request.Context(), services.AuditLogEntry{
				EventType: models.EventRateLimitExceeded,
				Severity:  models.SeverityWarning,
				ClientIP:  c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				RequestID: c.GetString("request_id"),
				Details: models.AuditDetails{
					"endpoint": config.Endpoint,
					"limit":    config.RequestsPerMinute,
				},
				ErrorMessage: "rate limit exceeded",
			})
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":             "rate_limit_exceeded",
			"error_description": "Too many requests. Please try again later.",
		})
	})), nil
}

// NewMemoryRateLimiter creates an in-memory rate limiter (single instance)
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
}

// NewRedisRateLimiter creates a Redis-backed rate limiter shared by every replica
func NewRedisRateLimiter(requestsPerMinute int, client *redis.Client) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreRedis,
		RedisClient:       client,
	})
}
