package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuthMiddleware protects a route group with a static bearer token.
// An empty token disables the check.
func BearerAuthMiddleware(token, realm string) gin.HandlerFunc {
	challenge := fmt.Sprintf("Bearer realm=%q", realm)

	reject := func(c *gin.Context, message string) {
		c.Header("WWW-Authenticate", challenge)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": message,
		})
	}

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			reject(c, "Bearer token required")
			return
		}

		provided := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			reject(c, "Invalid token")
			return
		}

		c.Next()
	}
}

// MetricsAuthMiddleware guards the Prometheus scrape endpoint.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	return BearerAuthMiddleware(token, "Metrics")
}

// AdminAuthMiddleware guards the operator endpoints.
func AdminAuthMiddleware(token string) gin.HandlerFunc {
	return BearerAuthMiddleware(token, "Admin")
}
