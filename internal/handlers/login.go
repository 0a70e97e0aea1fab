package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/services"

	"github.com/gin-gonic/gin"
)

// MsgLoginSuccessful is the message of every 200 login response.
const MsgLoginSuccessful = "Login successful"

// MsgInvalidBody is returned when the login body is not a JSON object.
const MsgInvalidBody = "Invalid request body"

// LoginHandler serves POST /login.
type LoginHandler struct {
	authService *services.AuthService
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(authService *services.AuthService) *LoginHandler {
	return &LoginHandler{authService: authService}
}

// Login authenticates one credential submission.
//
// An absent body is an empty submission and selects the certificate path.
func (h *LoginHandler) Login(c *gin.Context) {
	var sub core.CredentialSubmission
	if err := c.ShouldBindJSON(&sub); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidBody})
		return
	}

	result := h.authService.Authenticate(c.Request.Context(), sub)
	status, body := loginResponse(result)
	c.JSON(status, body)
}

// loginResponse maps a normalized result onto the HTTP contract.
func loginResponse(result *core.AuthResult) (int, gin.H) {
	if result.Success() {
		switch {
		case result.Token != nil:
			return http.StatusOK, gin.H{
				"message":      MsgLoginSuccessful,
				"access_token": result.Token.AccessToken,
			}
		case result.Identity != nil:
			return http.StatusOK, gin.H{
				"message":  MsgLoginSuccessful,
				"aws_user": result.Identity,
			}
		default:
			return http.StatusOK, gin.H{
				"message": MsgLoginSuccessful,
				"user":    result.Username,
			}
		}
	}

	f := result.Failure
	if f.Reason == core.FederationFailed {
		return http.StatusInternalServerError, gin.H{
			"message": f.Message,
			"error":   f.Detail,
		}
	}
	status, ok := failureStatus[f.Reason]
	if !ok {
		status = http.StatusInternalServerError
	}
	return status, gin.H{"error": f.Message}
}

// StatusClientClosedRequest is written when the caller disconnected first.
const StatusClientClosedRequest = 499

var failureStatus = map[core.ErrorKind]int{
	core.InvalidRequest:         http.StatusBadRequest,
	core.DirectoryAuthFailed:    http.StatusUnauthorized,
	core.CertificateAuthFailed:  http.StatusUnauthorized,
	core.DirectoryUnavailable:   http.StatusServiceUnavailable,
	core.TokenEndpointDown:      http.StatusServiceUnavailable,
	core.CertificateUnavailable: http.StatusInternalServerError,
	core.FederationFailed:       http.StatusInternalServerError,
	core.RequestCanceled:        StatusClientClosedRequest,
}
