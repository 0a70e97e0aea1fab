package bootstrap

import (
	"fmt"

	"github.com/go-authgate/authbridge/internal/auth"
	"github.com/go-authgate/authbridge/internal/client"
	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/federation"
	"github.com/go-authgate/authbridge/internal/logger"
)

// initializeDirectory creates the directory verifier for DIRECTORY_PROTOCOL
func initializeDirectory(cfg *config.Config) (core.DirectoryVerifier, error) {
	switch cfg.DirectoryProtocol {
	case config.DirectoryProtocolHTTPNTLM:
		logger.Infof("Directory: HTTP NTLM bind against %s (domain %s)",
			cfg.DirectoryServer, cfg.DirectoryDomain)
		return auth.NewNTLMHTTPDirectory(
			cfg.DirectoryServer,
			cfg.DirectoryDomain,
			cfg.DirectoryTimeout,
			cfg.DirectoryInsecureSkipVerify,
		), nil

	default:
		logger.Infof("Directory: LDAP NTLM bind against %s (domain %s)",
			cfg.DirectoryServer, cfg.DirectoryDomain)
		return auth.NewLDAPDirectory(
			cfg.DirectoryServer,
			cfg.DirectoryDomain,
			cfg.DirectoryTimeout,
			cfg.DirectoryInsecureSkipVerify,
		), nil
	}
}

// initializeCertificate creates the certificate store and verifier. Both are
// nil when the certificate path is not configured.
func initializeCertificate(
	cfg *config.Config,
) (*auth.CertificateStore, core.CertificateVerifier, error) {
	if !cfg.CertificateEnabled() {
		logger.Infof("Certificate login disabled (AZURE_CLIENT_ID, AZURE_TENANT_ID or AZURE_CERT_PATH unset)")
		return nil, nil, nil
	}

	httpClient, err := client.NewHTTPClient(cfg.TokenTimeout, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token HTTP client: %w", err)
	}

	store := auth.NewCertificateStore(cfg.AzureCertPath, cfg.AzureCertThumbprint)
	tokenURL := auth.TokenEndpoint(cfg.AzureAuthorityHost, cfg.AzureTenantID)
	logger.Infof("Certificate login enabled (token endpoint %s)", tokenURL)

	verifier := auth.NewCertificateVerifier(
		cfg.AzureClientID,
		tokenURL,
		cfg.AzureScopes,
		cfg.TokenTimeout,
		store,
		httpClient,
	)
	return store, verifier, nil
}

// initializeResolver creates the STS identity resolver. Returns nil when
// directory logins do not chain into federation.
func initializeResolver(
	cfg *config.Config,
	identityCache core.Cache[core.FederatedIdentity],
) core.IdentityResolver {
	if !cfg.FederateAfterDirectory {
		logger.Infof("Federation disabled (directory logins return the username)")
		return nil
	}

	logger.Infof("Federation enabled (AWS profile %s, cache ttl %s)",
		cfg.AWSProfile, cfg.FederationCacheTTL)
	return federation.NewSTSResolver(
		federation.SharedProfileClientFactory(cfg.AWSProfile, cfg.AWSRegion),
		cfg.AWSProfile,
		cfg.FederationTimeout,
		identityCache,
		cfg.FederationCacheTTL,
	)
}
