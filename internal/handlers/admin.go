package handlers

import (
	"net/http"

	"github.com/go-authgate/authbridge/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves operator endpoints for the certificate material.
type AdminHandler struct {
	certificates *services.CertificateService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(certificates *services.CertificateService) *AdminHandler {
	return &AdminHandler{certificates: certificates}
}

// ReloadCertificate re-reads the signing material from disk.
func (h *AdminHandler) ReloadCertificate(c *gin.Context) {
	if err := h.certificates.Reload(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "Certificate reload failed",
			"certificate": h.certificates.Status(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Certificate reloaded",
		"certificate": h.certificates.Status(),
	})
}

// CertificateStatus reports the currently loaded material.
func (h *AdminHandler) CertificateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"certificate": h.certificates.Status()})
}
