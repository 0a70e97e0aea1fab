package util

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// requestIDPattern bounds client-supplied ids to something safe to log.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestInfo is per-request metadata used for audit and logs.
type RequestInfo struct {
	ClientIP  string
	UserAgent string
	RequestID string
}

type requestInfoKey struct{}

// WithRequestInfo stores request metadata in ctx.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFromContext returns the metadata stored by RequestContextMiddleware.
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		ctx = ginCtx.Request.Context()
	}
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	// Try to extract from Gin context first
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}
	return RequestInfoFromContext(ctx).ClientIP
}

// RequestContextMiddleware assigns a request id, echoes it in the response
// and stores client metadata in the request context.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !requestIDPattern.MatchString(requestID) {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set("request_id", requestID)

		// Gin's ClientIP() handles X-Forwarded-For and other headers
		info := RequestInfo{
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: requestID,
		}
		c.Request = c.Request.WithContext(WithRequestInfo(c.Request.Context(), info))
		c.Next()
	}
}
