package bootstrap

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/logger"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if err := validateDirectoryConfig(cfg); err != nil {
		logger.Fatalf("Invalid directory configuration: %v", err)
	}
	if err := validateCertificateConfig(cfg); err != nil {
		logger.Fatalf("Invalid certificate configuration: %v", err)
	}
	if err := validateFederationConfig(cfg); err != nil {
		logger.Fatalf("Invalid federation configuration: %v", err)
	}
	if err := validateCacheConfig(cfg); err != nil {
		logger.Fatalf("Invalid cache configuration: %v", err)
	}
	if err := validateAuditConfig(cfg); err != nil {
		logger.Fatalf("Invalid audit configuration: %v", err)
	}
}

// validateDirectoryConfig checks AD_SERVER against the selected protocol
func validateDirectoryConfig(cfg *config.Config) error {
	switch cfg.DirectoryProtocol {
	case config.DirectoryProtocolHTTPNTLM:
		u, err := url.Parse(cfg.DirectoryServer)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf(
				"AD_SERVER must be an http(s) URL when DIRECTORY_PROTOCOL=%s, got %q",
				config.DirectoryProtocolHTTPNTLM, cfg.DirectoryServer,
			)
		}
	case config.DirectoryProtocolLDAP:
		u, err := url.Parse(cfg.DirectoryServer)
		if err == nil && u.Scheme != "" && u.Host != "" &&
			u.Scheme != "ldap" && u.Scheme != "ldaps" {
			return fmt.Errorf("AD_SERVER scheme must be ldap or ldaps, got %q", u.Scheme)
		}
	}
	return nil
}

// validateCertificateConfig rejects a partially configured certificate path
func validateCertificateConfig(cfg *config.Config) error {
	set := 0
	for _, v := range []string{cfg.AzureClientID, cfg.AzureTenantID, cfg.AzureCertPath} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return nil
	}
	if set < 3 {
		return errors.New(
			"AZURE_CLIENT_ID, AZURE_TENANT_ID and AZURE_CERT_PATH must be set together",
		)
	}

	u, err := url.Parse(cfg.AzureAuthorityHost)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("AZURE_AUTHORITY_HOST must be an https URL, got %q", cfg.AzureAuthorityHost)
	}
	if len(cfg.AzureScopes) == 0 {
		return errors.New("AZURE_SCOPES must not be empty")
	}
	return nil
}

// validateFederationConfig checks the AWS profile when federation is on
func validateFederationConfig(cfg *config.Config) error {
	if cfg.FederateAfterDirectory && cfg.AWSProfile == "" {
		return errors.New("AWS_PROFILE is required when FEDERATE_AFTER_DIRECTORY=true")
	}
	return nil
}

// validateCacheConfig checks that Redis is addressable when any component uses it
func validateCacheConfig(cfg *config.Config) error {
	needsRedis := cfg.CacheType == config.CacheTypeRedis ||
		(cfg.EnableRateLimit && cfg.RateLimitStore == config.RateLimitStoreRedis)
	if needsRedis && cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required when CACHE_TYPE or RATE_LIMIT_STORE is redis")
	}
	if cfg.MetricsEnabled && cfg.MetricsGaugeUpdateEnabled && cfg.MetricsGaugeUpdateInterval <= 0 {
		return errors.New("METRICS_GAUGE_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// validateAuditConfig checks the database settings when audit logging is on
func validateAuditConfig(cfg *config.Config) error {
	if !cfg.EnableAuditLogging {
		return nil
	}
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for DATABASE_DRIVER=%s", cfg.DatabaseDriver)
	}
	return nil
}
