package services

import (
	"context"
	"time"

	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/models"
)

// CertificateStatus is the operator view of the signing material.
type CertificateStatus struct {
	Loaded     bool      `json:"loaded"`
	LoadedAt   time.Time `json:"loaded_at,omitzero"`
	Thumbprint string    `json:"thumbprint,omitempty"`
}

// CertificateService owns the lifecycle of the certificate signing material.
type CertificateService struct {
	store   *auth.CertificateStore
	metrics core.Recorder
	audit   *AuditService
}

// NewCertificateService wraps a certificate store. audit may be nil.
func NewCertificateService(
	store *auth.CertificateStore,
	m core.Recorder,
	audit *AuditService,
) *CertificateService {
	return &CertificateService{store: store, metrics: m, audit: audit}
}

// Preload loads the material at startup. A failure is logged and left for
// the first certificate login to retry.
func (s *CertificateService) Preload() {
	if _, err := s.store.Material(); err != nil {
		logger.Warnf("certificate material not loaded: %v", err)
		s.metrics.SetCertificateLoaded(false)
		return
	}
	_, _, thumbprint := s.store.Status()
	logger.Infof("certificate material loaded (thumbprint %s)", thumbprint)
	s.metrics.SetCertificateLoaded(true)
}

// Reload re-reads the material from disk. On failure the previous material
// stays in use.
func (s *CertificateService) Reload(ctx context.Context) error {
	err := s.store.Reload()
	s.metrics.RecordCertificateReload(err == nil)

	status := s.Status()
	s.metrics.SetCertificateLoaded(status.Loaded)

	entry := AuditLogEntry{
		EventType: models.EventCertificateReloaded,
		Severity:  models.SeverityInfo,
		Success:   err == nil,
		Details:   models.AuditDetails{"thumbprint": status.Thumbprint},
	}
	if err != nil {
		entry.EventType = models.EventCertificateReloadFailed
		entry.Severity = models.SeverityError
		entry.ErrorMessage = err.Error()
		logger.Errorf("certificate reload failed: %v", err)
	} else {
		logger.Infof("certificate material reloaded (thumbprint %s)", status.Thumbprint)
	}

	if s.audit != nil {
		s.audit.Log(ctx, entry)
	}
	return err
}

// Status reports whether material is loaded and which certificate it is.
func (s *CertificateService) Status() CertificateStatus {
	loaded, loadedAt, thumbprint := s.store.Status()
	return CertificateStatus{Loaded: loaded, LoadedAt: loadedAt, Thumbprint: thumbprint}
}
