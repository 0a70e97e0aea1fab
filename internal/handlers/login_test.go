package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/federation"
	"github.com/go-authgate/authbridge/internal/metrics"
	"github.com/go-authgate/authbridge/internal/mocks"
	"github.com/go-authgate/authbridge/internal/services"
	"github.com/go-authgate/authbridge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = &core.FederatedIdentity{
	UserID:           "AIDAEXAMPLE",
	Account:          "123456789012",
	Arn:              "arn:aws:iam::123456789012:user/pao-gateway",
	ResponseMetadata: core.ResponseMetadata{RequestID: "req-1"},
}

type loginFixture struct {
	directory   *mocks.MockDirectoryVerifier
	certificate *mocks.MockCertificateVerifier
	resolver    *mocks.MockIdentityResolver
}

func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &loginFixture{
		directory:   mocks.NewMockDirectoryVerifier(ctrl),
		certificate: mocks.NewMockCertificateVerifier(ctrl),
		resolver:    mocks.NewMockIdentityResolver(ctrl),
	}
	f.directory.EXPECT().Name().Return("ldap").AnyTimes()
	f.certificate.EXPECT().Name().Return("azure_certificate").AnyTimes()
	f.resolver.EXPECT().Name().Return("aws_sts").AnyTimes()
	return f
}

func (f *loginFixture) router(federate, certificateEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	var certificate core.CertificateVerifier
	if certificateEnabled {
		certificate = f.certificate
	}
	svc := services.NewAuthService(
		f.directory, certificate, f.resolver, federate, metrics.NewNoopMetrics(), nil,
	)

	r := gin.New()
	r.Use(util.RequestContextMiddleware())
	r.POST("/login", NewLoginHandler(svc).Login)
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/login", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLogin_DirectoryWithFederation(t *testing.T) {
	f := newLoginFixture(t)
	f.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").Return(true, nil)
	f.resolver.EXPECT().ResolveIdentity(gomock.Any()).Return(testIdentity, nil)

	w := postLogin(f.router(true, true), `{"username":"alice","password":"correct"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"message": "Login successful",
		"aws_user": {
			"UserId": "AIDAEXAMPLE",
			"Account": "123456789012",
			"Arn": "arn:aws:iam::123456789012:user/pao-gateway",
			"ResponseMetadata": {"RequestId": "req-1"}
		}
	}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(util.RequestIDHeader))
}

func TestLogin_DirectoryOnly(t *testing.T) {
	f := newLoginFixture(t)
	f.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").Return(true, nil)

	w := postLogin(f.router(false, true), `{"username":"alice","password":"correct"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Login successful","user":"alice"}`, w.Body.String())
}

func TestLogin_DirectoryRejected(t *testing.T) {
	f := newLoginFixture(t)
	f.directory.EXPECT().Verify(gomock.Any(), "alice", "wrong").Return(false, nil)

	w := postLogin(f.router(true, true), `{"username":"alice","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid AD credentials"}`, w.Body.String())
}

func TestLogin_DirectoryUnavailable(t *testing.T) {
	f := newLoginFixture(t)
	f.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").
		Return(false, fmt.Errorf("%w: connection refused", auth.ErrDirectoryUnavailable))

	w := postLogin(f.router(true, true), `{"username":"alice","password":"correct"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Directory service unavailable"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestLogin_FederationFailed(t *testing.T) {
	f := newLoginFixture(t)
	f.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").Return(true, nil)
	f.resolver.EXPECT().ResolveIdentity(gomock.Any()).
		Return(nil, fmt.Errorf("%w: profile not found", federation.ErrFederationFailed))

	w := postLogin(f.router(true, true), `{"username":"alice","password":"correct"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "AD login OK, but AWS failed", body["message"])
	assert.Contains(t, body["error"], "profile not found")
	assert.NotContains(t, body, "aws_user")
}

func TestLogin_Certificate(t *testing.T) {
	t.Run("token issued for empty body", func(t *testing.T) {
		f := newLoginFixture(t)
		f.certificate.EXPECT().Verify(gomock.Any()).Return(&core.TokenResult{
			AccessToken: "eyJ0eXAi.token",
			TokenType:   "Bearer",
			ExpiresAt:   time.Now().Add(time.Hour),
		}, nil)

		w := postLogin(f.router(true, true), "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Login successful","access_token":"eyJ0eXAi.token"}`, w.Body.String())
	})

	t.Run("token issued for empty object", func(t *testing.T) {
		f := newLoginFixture(t)
		f.certificate.EXPECT().Verify(gomock.Any()).Return(&core.TokenResult{AccessToken: "tok"}, nil)

		w := postLogin(f.router(true, true), `{}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tok", decodeBody(t, w)["access_token"])
	})

	t.Run("rejected", func(t *testing.T) {
		f := newLoginFixture(t)
		f.certificate.EXPECT().Verify(gomock.Any()).Return(nil, &auth.TokenError{
			StatusCode:  http.StatusUnauthorized,
			Code:        "invalid_client",
			Description: "AADSTS700027: certificate not registered",
		})

		w := postLogin(f.router(true, true), `{"username":"alice"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Azure certificate authentication failed"}`, w.Body.String())
	})

	t.Run("token endpoint unreachable", func(t *testing.T) {
		f := newLoginFixture(t)
		f.certificate.EXPECT().Verify(gomock.Any()).
			Return(nil, fmt.Errorf("%w: dial tcp 127.0.0.1:443: connect: connection refused", auth.ErrTokenEndpointDown))

		w := postLogin(f.router(true, true), `{}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"error":"Azure token endpoint unavailable"}`, w.Body.String())
	})

	t.Run("material unavailable", func(t *testing.T) {
		f := newLoginFixture(t)
		f.certificate.EXPECT().Verify(gomock.Any()).
			Return(nil, fmt.Errorf("%w: open /secrets/cert.pem: no such file", auth.ErrCertificateUnavailable))

		w := postLogin(f.router(true, true), `{}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Azure certificate unavailable"}`, w.Body.String())
	})

	t.Run("disabled reproduces missing credentials", func(t *testing.T) {
		f := newLoginFixture(t)

		w := postLogin(f.router(true, false), `{"username":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Missing credentials"}`, w.Body.String())
	})
}

func TestLogin_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"explicit directory without password", `{"mode":"directory","username":"alice"}`, `{"error":"Missing credentials"}`},
		{"unknown mode", `{"mode":"kerberos"}`, `{"error":"Invalid login mode"}`},
		{"malformed json", `{"username":`, `{"error":"Invalid request body"}`},
		{"non-object body", `["alice","pw"]`, `{"error":"Invalid request body"}`},
		{"non-string username", `{"username":42,"password":"pw"}`, `{"error":"Invalid request body"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoginFixture(t)

			w := postLogin(f.router(true, true), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestLogin_ClientCancelled(t *testing.T) {
	f := newLoginFixture(t)
	f.directory.EXPECT().Verify(gomock.Any(), "alice", "correct").
		DoAndReturn(func(ctx context.Context, _, _ string) (bool, error) {
			<-ctx.Done()
			return false, fmt.Errorf("%w: %v", auth.ErrDirectoryUnavailable, ctx.Err())
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"correct"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router(true, true).ServeHTTP(w, req)

	assert.Equal(t, StatusClientClosedRequest, w.Code)
}

func TestLoginResponse_UnknownReason(t *testing.T) {
	status, body := loginResponse(&core.AuthResult{Failure: &core.Failure{
		Reason:  core.ErrorKind("unexpected"),
		Message: "boom",
		Err:     errors.New("boom"),
	}})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "boom", body["error"])
}
