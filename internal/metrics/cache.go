package metrics

import (
	"context"
	"time"

	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/store"
)

// statsStore defines the database operations needed by CacheWrapper.
// This interface allows for easier testing without requiring a full store.Store.
type statsStore interface {
	GetAuditLogStats(ctx context.Context, startTime, endTime time.Time) (store.AuditLogStats, error)
}

// CacheWrapper provides a read-through cache for gauge values derived from
// the audit trail, so several replicas do not all hit the database.
type CacheWrapper struct {
	store statsStore
	cache core.Cache[int64]
	now   func() time.Time
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(s statsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: s,
		cache: cache,
		now:   time.Now,
	}
}

// GetRecentFailureCount returns failed logins within window, cached for ttl.
func (m *CacheWrapper) GetRecentFailureCount(
	ctx context.Context,
	window, ttl time.Duration,
) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		"audit:failures:"+window.String(),
		ttl,
		func(ctx context.Context, _ string) (int64, error) {
			end := m.now()
			stats, err := m.store.GetAuditLogStats(ctx, end.Add(-window), end)
			if err != nil {
				return 0, err
			}
			return stats.FailureCount, nil
		},
	)
}
