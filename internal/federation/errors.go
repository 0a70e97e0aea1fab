package federation

import "errors"

// Sentinel errors for identity federation.
var (
	// ErrFederationFailed is returned when the caller identity cannot be resolved.
	ErrFederationFailed = errors.New("federation failed")

	// ErrConfigLoad is returned when the shared AWS configuration cannot be loaded.
	ErrConfigLoad = errors.New("failed to load AWS config")

	// ErrEmptyIdentity is returned when STS answers without an identity.
	ErrEmptyIdentity = errors.New("STS returned an empty caller identity")
)
