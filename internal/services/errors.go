package services

import "errors"

var (
	// ErrMissingCredentials is returned when the selected path lacks required input
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidMode is returned for an unknown login mode
	ErrInvalidMode = errors.New("invalid login mode")

	// ErrCertificateDisabled is returned when the certificate path is selected but not configured
	ErrCertificateDisabled = errors.New("certificate login is not configured")
)
