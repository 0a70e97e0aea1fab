package bootstrap

import (
	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/services"
)

// initializeServices creates the login dispatcher and the certificate
// lifecycle service. The latter is nil when the certificate path is disabled.
func initializeServices(
	cfg *config.Config,
	directory core.DirectoryVerifier,
	certificateStore *auth.CertificateStore,
	certificate core.CertificateVerifier,
	resolver core.IdentityResolver,
	recorder core.Recorder,
	auditService *services.AuditService,
) (*services.AuthService, *services.CertificateService) {
	var audit core.AuditLogger
	if auditService.Enabled() {
		audit = auditService
	}

	authService := services.NewAuthService(
		directory,
		certificate,
		resolver,
		cfg.FederateAfterDirectory,
		recorder,
		audit,
	)

	var certificateService *services.CertificateService
	if certificateStore != nil {
		certificateService = services.NewCertificateService(certificateStore, recorder, auditService)
		certificateService.Preload()
	}

	return authService, certificateService
}
