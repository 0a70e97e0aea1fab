package core

import "context"

// AuditEvent describes one login attempt for the audit trail.
// It never carries passwords or tokens.
type AuditEvent struct {
	Result    *AuthResult
	Username  string
	ClientIP  string
	UserAgent string
	RequestID string
}

// AuditLogger records login attempts.
type AuditLogger interface {
	LogAuthentication(ctx context.Context, event AuditEvent)
}
