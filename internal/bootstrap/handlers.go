package bootstrap

import (
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/handlers"
	"github.com/go-authgate/authbridge/internal/services"
	"github.com/go-authgate/authbridge/internal/store"
)

// handlerSet holds all HTTP handlers. admin and audit are nil when their
// backing component is disabled.
type handlerSet struct {
	login  *handlers.LoginHandler
	health *handlers.HealthHandler
	admin  *handlers.AdminHandler
	audit  *handlers.AuditHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	db *store.Store,
	identityCache core.Cache[core.FederatedIdentity],
	authService *services.AuthService,
	certificateService *services.CertificateService,
	auditService *services.AuditService,
) handlerSet {
	var dbCheck, cacheCheck handlers.HealthChecker
	if db != nil {
		dbCheck = db
	}
	if identityCache != nil {
		cacheCheck = identityCache
	}

	h := handlerSet{
		login:  handlers.NewLoginHandler(authService),
		health: handlers.NewHealthHandler(dbCheck, cacheCheck, certificateService),
	}
	if certificateService != nil {
		h.admin = handlers.NewAdminHandler(certificateService)
	}
	if auditService.Enabled() {
		h.audit = handlers.NewAuditHandler(auditService)
	}
	return h
}
