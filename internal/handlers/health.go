package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-authgate/authbridge/internal/services"

	"github.com/gin-gonic/gin"
)

// healthTimeout bounds each dependency check.
const healthTimeout = 2 * time.Second

// HealthChecker is a dependency that can report its own health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	database     HealthChecker // nil when audit logging is disabled
	cache        HealthChecker // nil when the identity cache is disabled
	certificates *services.CertificateService
}

// NewHealthHandler creates a health handler. Any dependency may be nil.
func NewHealthHandler(
	database, cache HealthChecker,
	certificates *services.CertificateService,
) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, certificates: certificates}
}

// Health reports 503 only when the audit database is configured and down.
// A cache outage degrades to direct lookups and is reported, not fatal.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "healthy"}

	if h.database != nil {
		if err := checkDependency(c.Request.Context(), h.database); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "disconnected"
		} else {
			body["database"] = "connected"
		}
	}

	if h.cache != nil {
		if err := checkDependency(c.Request.Context(), h.cache); err != nil {
			body["cache"] = "disconnected"
		} else {
			body["cache"] = "connected"
		}
	}

	if h.certificates != nil {
		body["certificate"] = h.certificates.Status()
	}

	c.JSON(status, body)
}

func checkDependency(ctx context.Context, dep HealthChecker) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return dep.Health(ctx)
}
