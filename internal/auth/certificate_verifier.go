package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-authgate/authbridge/internal/core"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var _ core.CertificateVerifier = (*CertificateVerifier)(nil)

// TokenEndpoint returns the v2.0 token endpoint for a tenant.
func TokenEndpoint(authorityHost, tenantID string) string {
	return strings.TrimRight(authorityHost, "/") + "/" + url.PathEscape(tenantID) + "/oauth2/v2.0/token"
}

// CertificateVerifier exchanges a signed client assertion for an access
// token with the client credentials grant.
type CertificateVerifier struct {
	clientID   string
	tokenURL   string
	scopes     []string
	timeout    time.Duration
	store      *CertificateStore
	httpClient *http.Client
	now        func() time.Time
}

// NewCertificateVerifier creates a verifier. The store is consulted on every
// call; a missing key fails before any network request.
func NewCertificateVerifier(
	clientID, tokenURL string,
	scopes []string,
	timeout time.Duration,
	store *CertificateStore,
	httpClient *http.Client,
) *CertificateVerifier {
	return &CertificateVerifier{
		clientID:   clientID,
		tokenURL:   tokenURL,
		scopes:     scopes,
		timeout:    timeout,
		store:      store,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Verify performs one token exchange. Tokens are not cached.
func (v *CertificateVerifier) Verify(ctx context.Context) (*core.TokenResult, error) {
	material, err := v.store.Material()
	if err != nil {
		return nil, err
	}

	assertion, err := buildClientAssertion(material, v.clientID, v.tokenURL, v.now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	if v.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	}

	cc := &clientcredentials.Config{
		ClientID: v.clientID,
		TokenURL: v.tokenURL,
		Scopes:   v.scopes,
		EndpointParams: url.Values{
			"client_assertion_type": {clientAssertionType},
			"client_assertion":      {assertion},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	token, err := cc.Token(ctx)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", ErrCertificateAuthFailed)
	}

	return &core.TokenResult{
		AccessToken: token.AccessToken,
		TokenType:   token.Type(),
		ExpiresAt:   token.Expiry,
	}, nil
}

// classifyTokenError separates a rejected assertion (4xx with an OAuth error)
// from transport faults and provider outages, which wrap ErrTokenEndpointDown.
// The cause stays wrapped so context cancellation remains detectable.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return fmt.Errorf("%w: %w", ErrTokenEndpointDown, err)
	}

	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: HTTP %d", ErrTokenEndpointDown, status)
	}
	return &TokenError{StatusCode: status, Code: re.ErrorCode, Description: re.ErrorDescription}
}

// Name returns provider name for logging
func (v *CertificateVerifier) Name() string {
	return "azure_certificate"
}
