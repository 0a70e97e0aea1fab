package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/util"
)

// Caller-facing failure messages.
const (
	MsgMissingCredentials     = "Missing credentials"
	MsgInvalidMode            = "Invalid login mode"
	MsgInvalidDirectoryCreds  = "Invalid AD credentials"
	MsgDirectoryUnavailable   = "Directory service unavailable"
	MsgCertificateUnavailable = "Azure certificate unavailable"
	MsgCertificateAuthFailed  = "Azure certificate authentication failed"
	MsgTokenEndpointDown      = "Azure token endpoint unavailable"
	MsgFederationFailed       = "AD login OK, but AWS failed"
	MsgRequestCanceled        = "Request canceled"
)

// cacheReporter is implemented by resolvers that can tell whether the next
// lookup will be served from cache.
type cacheReporter interface {
	Cached(ctx context.Context) bool
}

// AuthService selects one trust backend per submission and normalizes its
// outcome into a core.AuthResult.
type AuthService struct {
	directory   core.DirectoryVerifier
	certificate core.CertificateVerifier // nil when the certificate path is disabled
	resolver    core.IdentityResolver
	federate    bool
	metrics     core.Recorder
	audit       core.AuditLogger
}

// NewAuthService creates the login dispatcher. certificate may be nil; the
// resolver is only consulted when federate is true.
func NewAuthService(
	directory core.DirectoryVerifier,
	certificate core.CertificateVerifier,
	resolver core.IdentityResolver,
	federate bool,
	m core.Recorder,
	audit core.AuditLogger,
) *AuthService {
	return &AuthService{
		directory:   directory,
		certificate: certificate,
		resolver:    resolver,
		federate:    federate && resolver != nil,
		metrics:     m,
		audit:       audit,
	}
}

// SelectMethod decides the trust path for a submission. Without an explicit
// mode, a non-empty username and password select the directory path and
// anything else selects the certificate path.
func SelectMethod(sub core.CredentialSubmission) (core.Method, error) {
	switch core.Method(sub.Mode) {
	case "":
		if sub.Username != "" && sub.Password != "" {
			return core.MethodDirectory, nil
		}
		return core.MethodCertificate, nil
	case core.MethodDirectory:
		if sub.Username == "" || sub.Password == "" {
			return core.MethodDirectory, ErrMissingCredentials
		}
		return core.MethodDirectory, nil
	case core.MethodCertificate:
		return core.MethodCertificate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, sub.Mode)
	}
}

// Authenticate runs one login. It never returns nil and never panics on
// backend errors; every fault is folded into the result's Failure.
func (s *AuthService) Authenticate(ctx context.Context, sub core.CredentialSubmission) *core.AuthResult {
	start := time.Now()
	result := s.dispatch(ctx, sub)
	result.Duration = time.Since(start)

	s.record(ctx, sub, result)
	return result
}

// CertificateEnabled reports whether the certificate path is configured.
func (s *AuthService) CertificateEnabled() bool {
	return s.certificate != nil
}

// FederationEnabled reports whether directory logins chain into federation.
func (s *AuthService) FederationEnabled() bool {
	return s.federate
}

func (s *AuthService) dispatch(ctx context.Context, sub core.CredentialSubmission) *core.AuthResult {
	method, err := SelectMethod(sub)
	if err != nil {
		msg := MsgMissingCredentials
		if errors.Is(err, ErrInvalidMode) {
			msg = MsgInvalidMode
		}
		return failed(method, core.StageRequest, core.InvalidRequest, msg, err)
	}

	if method == core.MethodDirectory {
		return s.authenticateDirectory(ctx, sub.Username, sub.Password)
	}

	if s.certificate == nil {
		return failed(method, core.StageRequest, core.InvalidRequest,
			MsgMissingCredentials, ErrCertificateDisabled)
	}
	return s.authenticateCertificate(ctx)
}

func (s *AuthService) authenticateDirectory(ctx context.Context, username, password string) *core.AuthResult {
	start := time.Now()
	ok, err := s.directory.Verify(ctx, username, password)

	if err != nil && callerGone(ctx, err) {
		result := failed(core.MethodDirectory, core.StageDirectory,
			core.RequestCanceled, MsgRequestCanceled, err)
		result.Username = username
		return result
	}
	s.metrics.RecordExternalAPICall(s.directory.Name(), err == nil, time.Since(start))

	if err != nil {
		result := failed(core.MethodDirectory, core.StageDirectory,
			core.DirectoryUnavailable, MsgDirectoryUnavailable, err)
		result.Username = username
		return result
	}
	if !ok {
		result := failed(core.MethodDirectory, core.StageDirectory,
			core.DirectoryAuthFailed, MsgInvalidDirectoryCreds, nil)
		result.Username = username
		return result
	}

	result := &core.AuthResult{Method: core.MethodDirectory, Username: username}
	if !s.federate {
		return result
	}

	// Federation uses the gateway's own cloud credentials, not the caller's.
	cached := false
	if r, ok := s.resolver.(cacheReporter); ok {
		cached = r.Cached(ctx)
	}

	start = time.Now()
	identity, err := s.resolver.ResolveIdentity(ctx)
	if !cached {
		s.metrics.RecordExternalAPICall(s.resolver.Name(), err == nil, time.Since(start))
	}
	s.metrics.RecordFederation(err == nil, cached)

	if err != nil {
		result.Failure = &core.Failure{
			Stage:   core.StageFederation,
			Reason:  core.FederationFailed,
			Message: MsgFederationFailed,
			Detail:  err.Error(),
			Err:     err,
		}
		return result
	}

	result.Identity = identity
	return result
}

func (s *AuthService) authenticateCertificate(ctx context.Context) *core.AuthResult {
	start := time.Now()
	token, err := s.certificate.Verify(ctx)

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCertificateUnavailable):
			// No request was sent.
			return failed(core.MethodCertificate, core.StageCertificate,
				core.CertificateUnavailable, MsgCertificateUnavailable, err)
		case callerGone(ctx, err):
			return failed(core.MethodCertificate, core.StageCertificate,
				core.RequestCanceled, MsgRequestCanceled, err)
		}
		s.metrics.RecordExternalAPICall(s.certificate.Name(), false, time.Since(start))

		if errors.Is(err, auth.ErrTokenEndpointDown) {
			return failed(core.MethodCertificate, core.StageCertificate,
				core.TokenEndpointDown, MsgTokenEndpointDown, err)
		}
		result := failed(core.MethodCertificate, core.StageCertificate,
			core.CertificateAuthFailed, MsgCertificateAuthFailed, err)
		var tokenErr *auth.TokenError
		if errors.As(err, &tokenErr) {
			result.Failure.Detail = tokenErr.Description
		}
		return result
	}
	s.metrics.RecordExternalAPICall(s.certificate.Name(), true, time.Since(start))

	return &core.AuthResult{Method: core.MethodCertificate, Token: token}
}

// callerGone reports whether the client abandoned the request. A backend
// timeout is context.DeadlineExceeded and stays an outage.
func callerGone(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

func failed(
	method core.Method,
	stage core.Stage,
	reason core.ErrorKind,
	message string,
	err error,
) *core.AuthResult {
	return &core.AuthResult{
		Method: method,
		Failure: &core.Failure{
			Stage:   stage,
			Reason:  reason,
			Message: message,
			Err:     err,
		},
	}
}

func (s *AuthService) record(ctx context.Context, sub core.CredentialSubmission, result *core.AuthResult) {
	method := string(result.Method)
	if method == "" {
		method = "unknown"
	}
	s.metrics.RecordAuthAttempt(method, result.Success(), result.Duration)

	info := util.RequestInfoFromContext(ctx)
	fields := []any{
		"method", method,
		"username", sub.Username,
		"client_ip", info.ClientIP,
		"request_id", info.RequestID,
		"duration", result.Duration,
	}

	if result.Success() {
		logger.Infow("login succeeded", fields...)
	} else {
		f := result.Failure
		s.metrics.RecordAuthFailure(string(f.Stage), string(f.Reason))
		fields = append(fields, "stage", f.Stage, "reason", f.Reason)
		if f.Err != nil {
			fields = append(fields, "error", f.Err)
		}
		switch f.Reason {
		case core.DirectoryUnavailable, core.CertificateUnavailable,
			core.TokenEndpointDown, core.FederationFailed:
			logger.Errorw("login failed", fields...)
		case core.RequestCanceled:
			logger.Infow("login abandoned by client", fields...)
		default:
			logger.Warnw("login failed", fields...)
		}
	}

	if s.audit != nil {
		s.audit.LogAuthentication(ctx, core.AuditEvent{
			Result:    result,
			Username:  sub.Username,
			ClientIP:  info.ClientIP,
			UserAgent: info.UserAgent,
			RequestID: info.RequestID,
		})
	}
}
