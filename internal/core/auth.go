package core

import (
	"context"
	"time"
)

// Method identifies which trust backend authenticated a submission.
type Method string

const (
	MethodDirectory   Method = "directory"
	MethodCertificate Method = "certificate"
)

// Stage identifies where in the login pipeline a failure happened.
type Stage string

const (
	StageRequest     Stage = "request"
	StageDirectory   Stage = "directory"
	StageCertificate Stage = "certificate"
	StageFederation  Stage = "federation"
)

// ErrorKind classifies a failed login.
type ErrorKind string

const (
	InvalidRequest         ErrorKind = "invalid_request"
	DirectoryAuthFailed    ErrorKind = "directory_auth_failed"
	DirectoryUnavailable   ErrorKind = "directory_unavailable"
	CertificateUnavailable ErrorKind = "certificate_unavailable"
	CertificateAuthFailed  ErrorKind = "certificate_auth_failed"
	TokenEndpointDown      ErrorKind = "token_endpoint_unavailable"
	FederationFailed       ErrorKind = "federation_failed"
	// RequestCanceled means the caller went away before a backend answered.
	RequestCanceled ErrorKind = "request_canceled"
)

// CredentialSubmission is the read-only input of a login request.
// Empty strings mean the field was absent.
type CredentialSubmission struct {
	Mode     string `json:"mode,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// FederatedIdentity echoes the downstream provider's caller identity.
// The JSON shape mirrors the STS GetCallerIdentity response.
type FederatedIdentity struct {
	UserID           string           `json:"UserId"`
	Account          string           `json:"Account"`
	Arn              string           `json:"Arn"`
	ResponseMetadata ResponseMetadata `json:"ResponseMetadata"`
}

// ResponseMetadata carries the downstream request id.
type ResponseMetadata struct {
	RequestID string `json:"RequestId"`
}

// Failure describes why a login did not succeed.
type Failure struct {
	Stage  Stage
	Reason ErrorKind
	// Message is safe to show to the caller.
	Message string
	// Detail is upstream text the caller may see, such as a token
	// endpoint error_description or the federation error.
	Detail string
	// Err is the underlying cause, for logs only.
	Err error
}

// AuthResult is the normalized outcome of a login. Exactly one of the
// success fields or Failure is meaningful.
type AuthResult struct {
	Method   Method
	Username string
	Identity *FederatedIdentity
	Token    *TokenResult
	Failure  *Failure
	Duration time.Duration
}

// Success reports whether the login succeeded.
func (r *AuthResult) Success() bool {
	return r != nil && r.Failure == nil
}

// DirectoryVerifier checks a username/password pair against a directory.
// A rejected pair is (false, nil); infrastructure faults are errors.
type DirectoryVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
	Name() string
}

// CertificateVerifier exchanges a signed client assertion for a token.
type CertificateVerifier interface {
	Verify(ctx context.Context) (*TokenResult, error)
	Name() string
}

// IdentityResolver resolves the ambient cloud credentials to an identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context) (*FederatedIdentity, error)
	Name() string
}
