package auth

import (
	"errors"
	"fmt"
)

var (
	// Directory errors
	ErrDirectoryUnavailable = errors.New("directory service unavailable")
	ErrInvalidPrincipal     = errors.New("invalid directory principal")

	// Certificate errors
	ErrCertificateUnavailable = errors.New("certificate material unavailable")
	ErrCertificateAuthFailed  = errors.New("certificate authentication failed")
	ErrTokenEndpointDown      = errors.New("token endpoint unavailable")
)

// TokenError is a structured rejection from the token endpoint.
type TokenError struct {
	StatusCode  int
	Code        string // OAuth "error"
	Description string // OAuth "error_description"
}

func (e *TokenError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s: %s", ErrCertificateAuthFailed, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", ErrCertificateAuthFailed, e.Code, e.StatusCode)
}

func (e *TokenError) Unwrap() error {
	return ErrCertificateAuthFailed
}
