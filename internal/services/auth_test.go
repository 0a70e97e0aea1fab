package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/federation"
	"github.com/go-authgate/authbridge/internal/metrics"
	"github.com/go-authgate/authbridge/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authMocks struct {
	directory   *mocks.MockDirectoryVerifier
	certificate *mocks.MockCertificateVerifier
	resolver    *mocks.MockIdentityResolver
}

func newAuthMocks(t *testing.T) *authMocks {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &authMocks{
		directory:   mocks.NewMockDirectoryVerifier(ctrl),
		certificate: mocks.NewMockCertificateVerifier(ctrl),
		resolver:    mocks.NewMockIdentityResolver(ctrl),
	}
	m.directory.EXPECT().Name().Return("ldap").AnyTimes()
	m.certificate.EXPECT().Name().Return("azure_certificate").AnyTimes()
	m.resolver.EXPECT().Name().Return("aws_sts").AnyTimes()
	return m
}

func (m *authMocks) service(federate bool) *AuthService {
	return NewAuthService(m.directory, m.certificate, m.resolver, federate, metrics.NewNoopMetrics(), nil)
}

var testIdentity = &core.FederatedIdentity{
	UserID:           "AIDAEXAMPLE",
	Account:          "123456789012",
	Arn:              "arn:aws:iam::123456789012:user/pao-gateway",
	ResponseMetadata: core.ResponseMetadata{RequestID: "req-1"},
}

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		name    string
		sub     core.CredentialSubmission
		want    core.Method
		wantErr error
	}{
		{name: "both fields", sub: core.CredentialSubmission{Username: "alice", Password: "pw"}, want: core.MethodDirectory},
		{name: "empty body", sub: core.CredentialSubmission{}, want: core.MethodCertificate},
		{name: "username only", sub: core.CredentialSubmission{Username: "alice"}, want: core.MethodCertificate},
		{name: "password only", sub: core.CredentialSubmission{Password: "pw"}, want: core.MethodCertificate},
		{
			name: "explicit directory",
			sub:  core.CredentialSubmission{Mode: "directory", Username: "alice", Password: "pw"},
			want: core.MethodDirectory,
		},
		{
			name:    "explicit directory missing password",
			sub:     core.CredentialSubmission{Mode: "directory", Username: "alice"},
			want:    core.MethodDirectory,
			wantErr: ErrMissingCredentials,
		},
		{
			name: "explicit certificate ignores credentials",
			sub:  core.CredentialSubmission{Mode: "certificate", Username: "alice", Password: "pw"},
			want: core.MethodCertificate,
		},
		{name: "unknown mode", sub: core.CredentialSubmission{Mode: "kerberos"}, wantErr: ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectMethod(tt.sub)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)

			// Dispatch is a pure function of the submission.
			again, _ := SelectMethod(tt.sub)
			assert.Equal(t, got, again)
		})
	}
}

func TestAuthenticate_DirectoryWithFederation(t *testing.T) {
	m := newAuthMocks(t)
	gomock.InOrder(
		m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").Return(true, nil),
		m.resolver.EXPECT().ResolveIdentity(gomock.Any()).Return(testIdentity, nil),
	)

	result := m.service(true).Authenticate(context.Background(),
		core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.True(t, result.Success())
	assert.Equal(t, core.MethodDirectory, result.Method)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, testIdentity, result.Identity)
	assert.Nil(t, result.Token)
}

func TestAuthenticate_DirectoryOnly(t *testing.T) {
	m := newAuthMocks(t)
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").Return(true, nil)

	svc := m.service(false)
	assert.False(t, svc.FederationEnabled())

	result := svc.Authenticate(context.Background(),
		core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.True(t, result.Success())
	assert.Nil(t, result.Identity)
}

func TestAuthenticate_DirectoryRejected(t *testing.T) {
	m := newAuthMocks(t)
	// Resolver has no expectations: federation must not run.
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "wrong").Return(false, nil)

	result := m.service(true).Authenticate(context.Background(),
		core.CredentialSubmission{Username: "alice", Password: "wrong"})

	require.False(t, result.Success())
	assert.Equal(t, core.StageDirectory, result.Failure.Stage)
	assert.Equal(t, core.DirectoryAuthFailed, result.Failure.Reason)
	assert.Equal(t, MsgInvalidDirectoryCreds, result.Failure.Message)
}

func TestAuthenticate_DirectoryUnavailable(t *testing.T) {
	m := newAuthMocks(t)
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").
		Return(false, fmt.Errorf("%w: dial tcp: connection refused", auth.ErrDirectoryUnavailable))

	result := m.service(true).Authenticate(context.Background(),
		core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.False(t, result.Success())
	assert.Equal(t, core.StageDirectory, result.Failure.Stage)
	assert.Equal(t, core.DirectoryUnavailable, result.Failure.Reason)
	assert.NotEqual(t, core.DirectoryAuthFailed, result.Failure.Reason)
}

func TestAuthenticate_FederationFailureIsPartial(t *testing.T) {
	m := newAuthMocks(t)
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").Return(true, nil)
	m.resolver.EXPECT().ResolveIdentity(gomock.Any()).
		Return(nil, fmt.Errorf("%w: ExpiredToken: token expired", federation.ErrFederationFailed))

	result := m.service(true).Authenticate(context.Background(),
		core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.False(t, result.Success())
	assert.Equal(t, core.MethodDirectory, result.Method)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, core.StageFederation, result.Failure.Stage)
	assert.Equal(t, core.FederationFailed, result.Failure.Reason)
	assert.Equal(t, MsgFederationFailed, result.Failure.Message)
	assert.Contains(t, result.Failure.Detail, "ExpiredToken")
}

func TestAuthenticate_Certificate(t *testing.T) {
	expires := time.Now().Add(time.Hour)

	t.Run("token issued", func(t *testing.T) {
		m := newAuthMocks(t)
		m.certificate.EXPECT().Verify(gomock.Any()).
			Return(&core.TokenResult{AccessToken: "at-123", TokenType: "Bearer", ExpiresAt: expires}, nil)

		result := m.service(true).Authenticate(context.Background(), core.CredentialSubmission{})

		require.True(t, result.Success())
		assert.Equal(t, core.MethodCertificate, result.Method)
		assert.Equal(t, "at-123", result.Token.AccessToken)
		assert.Nil(t, result.Identity, "certificate logins never federate")
	})

	t.Run("key material missing", func(t *testing.T) {
		m := newAuthMocks(t)
		m.certificate.EXPECT().Verify(gomock.Any()).
			Return(nil, fmt.Errorf("%w: open key.pem: no such file", auth.ErrCertificateUnavailable))

		result := m.service(true).Authenticate(context.Background(), core.CredentialSubmission{})

		require.False(t, result.Success())
		assert.Equal(t, core.StageCertificate, result.Failure.Stage)
		assert.Equal(t, core.CertificateUnavailable, result.Failure.Reason)
	})

	t.Run("provider rejects assertion", func(t *testing.T) {
		m := newAuthMocks(t)
		m.certificate.EXPECT().Verify(gomock.Any()).Return(nil, &auth.TokenError{
			StatusCode:  401,
			Code:        "invalid_client",
			Description: "AADSTS700027: Client assertion contains an invalid signature.",
		})

		result := m.service(true).Authenticate(context.Background(), core.CredentialSubmission{})

		require.False(t, result.Success())
		assert.Equal(t, core.CertificateAuthFailed, result.Failure.Reason)
		assert.Contains(t, result.Failure.Detail, "AADSTS700027")
	})

	t.Run("token endpoint unreachable", func(t *testing.T) {
		m := newAuthMocks(t)
		m.certificate.EXPECT().Verify(gomock.Any()).
			Return(nil, fmt.Errorf("%w: dial tcp: connection refused", auth.ErrTokenEndpointDown))

		result := m.service(true).Authenticate(context.Background(), core.CredentialSubmission{})

		require.False(t, result.Success())
		assert.Equal(t, core.StageCertificate, result.Failure.Stage)
		assert.Equal(t, core.TokenEndpointDown, result.Failure.Reason)
		assert.Equal(t, MsgTokenEndpointDown, result.Failure.Message)
	})

	t.Run("caller cancels during token exchange", func(t *testing.T) {
		m := newAuthMocks(t)
		m.certificate.EXPECT().Verify(gomock.Any()).
			Return(nil, fmt.Errorf("%w: %w", auth.ErrTokenEndpointDown, context.Canceled))

		result := m.service(true).Authenticate(context.Background(), core.CredentialSubmission{})

		require.False(t, result.Success())
		assert.Equal(t, core.RequestCanceled, result.Failure.Reason)
	})

	t.Run("certificate path disabled", func(t *testing.T) {
		m := newAuthMocks(t)
		svc := NewAuthService(m.directory, nil, m.resolver, true, metrics.NewNoopMetrics(), nil)
		assert.False(t, svc.CertificateEnabled())

		result := svc.Authenticate(context.Background(), core.CredentialSubmission{Username: "alice"})

		require.False(t, result.Success())
		assert.Equal(t, core.StageRequest, result.Failure.Stage)
		assert.Equal(t, core.InvalidRequest, result.Failure.Reason)
		assert.Equal(t, MsgMissingCredentials, result.Failure.Message)
	})
}

func TestAuthenticate_InvalidRequest(t *testing.T) {
	m := newAuthMocks(t)
	svc := m.service(true)

	result := svc.Authenticate(context.Background(),
		core.CredentialSubmission{Mode: "directory", Username: "alice"})
	require.False(t, result.Success())
	assert.Equal(t, core.InvalidRequest, result.Failure.Reason)
	assert.Equal(t, MsgMissingCredentials, result.Failure.Message)

	result = svc.Authenticate(context.Background(), core.CredentialSubmission{Mode: "sso"})
	require.False(t, result.Success())
	assert.Equal(t, MsgInvalidMode, result.Failure.Message)
}

func TestAuthenticate_RepeatedFailureIsStable(t *testing.T) {
	m := newAuthMocks(t)
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "wrong").Return(false, nil).Times(2)
	svc := m.service(true)
	sub := core.CredentialSubmission{Username: "alice", Password: "wrong"}

	first := svc.Authenticate(context.Background(), sub)
	second := svc.Authenticate(context.Background(), sub)

	assert.Equal(t, first.Failure.Reason, second.Failure.Reason)
	assert.Equal(t, first.Failure.Stage, second.Failure.Stage)
}

func TestAuthenticate_RecordsMetricsAndAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAuthMocks(t)
	recorder := mocks.NewMockRecorder(ctrl)
	audit := mocks.NewMockAuditLogger(ctrl)

	m.directory.EXPECT().Verify(gomock.Any(), "alice", "wrong").Return(false, nil)
	recorder.EXPECT().RecordExternalAPICall("ldap", true, gomock.Any())
	recorder.EXPECT().RecordAuthAttempt("directory", false, gomock.Any())
	recorder.EXPECT().RecordAuthFailure("directory", "directory_auth_failed")

	var got core.AuditEvent
	audit.EXPECT().LogAuthentication(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e core.AuditEvent) { got = e })

	svc := NewAuthService(m.directory, m.certificate, m.resolver, true, recorder, audit)
	svc.Authenticate(context.Background(), core.CredentialSubmission{Username: "alice", Password: "wrong"})

	assert.Equal(t, "alice", got.Username)
	require.NotNil(t, got.Result)
	assert.Equal(t, core.DirectoryAuthFailed, got.Result.Failure.Reason)
}

func TestAuthenticate_CancelledRequest(t *testing.T) {
	m := newAuthMocks(t)
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").
		DoAndReturn(func(ctx context.Context, _, _ string) (bool, error) {
			<-ctx.Done()
			return false, errors.Join(auth.ErrDirectoryUnavailable, ctx.Err())
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := m.service(true).Authenticate(ctx,
		core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.False(t, result.Success())
	assert.Equal(t, core.RequestCanceled, result.Failure.Reason)
	assert.Equal(t, MsgRequestCanceled, result.Failure.Message)
}

func TestAuthenticate_CancelledRequestIsNotAnOutage(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAuthMocks(t)
	recorder := mocks.NewMockRecorder(ctrl)

	m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").
		DoAndReturn(func(ctx context.Context, _, _ string) (bool, error) {
			return false, fmt.Errorf("%w: %w", auth.ErrDirectoryUnavailable, ctx.Err())
		})
	recorder.EXPECT().RecordAuthAttempt("directory", false, gomock.Any())
	recorder.EXPECT().RecordAuthFailure("directory", "request_canceled")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewAuthService(m.directory, m.certificate, m.resolver, true, recorder, nil)
	result := svc.Authenticate(ctx, core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.False(t, result.Success())
	assert.Equal(t, core.RequestCanceled, result.Failure.Reason)
}

func TestAuthenticate_BackendTimeoutIsAnOutage(t *testing.T) {
	m := newAuthMocks(t)
	m.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").
		Return(false, fmt.Errorf("%w: %w", auth.ErrDirectoryUnavailable, context.DeadlineExceeded))

	result := m.service(true).Authenticate(context.Background(),
		core.CredentialSubmission{Username: "alice", Password: "correct"})

	require.False(t, result.Success())
	assert.Equal(t, core.DirectoryUnavailable, result.Failure.Reason)
}
