package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Directory protocol constants
const (
	DirectoryProtocolLDAP     = "ldap"
	DirectoryProtocolHTTPNTLM = "http_ntlm"
)

// Federation cache backend constants
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// DefaultAuthorityHost is the Microsoft identity platform login host.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

type Config struct {
	// Server settings
	ServerAddr            string
	IsProduction          bool
	ServerShutdownTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Directory (Active Directory bind)
	DirectoryServer             string
	DirectoryDomain             string
	DirectoryProtocol           string // "ldap" or "http_ntlm"
	DirectoryTimeout            time.Duration
	DirectoryInsecureSkipVerify bool

	// Certificate assertion (Azure AD client credentials)
	AzureClientID       string
	AzureTenantID       string
	AzureAuthorityHost  string
	AzureCertPath       string
	AzureCertThumbprint string
	AzureScopes         []string
	TokenTimeout        time.Duration

	// Federation (AWS STS caller identity)
	FederateAfterDirectory bool
	AWSProfile             string
	AWSRegion              string
	FederationTimeout      time.Duration
	FederationCacheTTL     time.Duration

	// Cache
	CacheType        string // "memory" or "redis"
	CacheInitTimeout time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisConnTimeout time.Duration

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	LoginRateLimit           int    // requests per minute per IP
	RateLimitCleanupInterval time.Duration

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	RecentFailureWindow        time.Duration

	// Audit logging
	EnableAuditLogging bool
	AuditLogBufferSize int
	AuditLogRetention  time.Duration
	DatabaseDriver     string // "sqlite" or "postgres"
	DatabaseDSN        string
	DBInitTimeout      time.Duration

	// Admin endpoints (certificate reload, audit listing)
	AdminToken string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "authbridge.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		IsProduction:          getEnvBool("IS_PRODUCTION", false),
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Directory
		DirectoryServer:             getEnv("AD_SERVER", ""),
		DirectoryDomain:             getEnv("AD_DOMAIN", ""),
		DirectoryProtocol:           getEnv("DIRECTORY_PROTOCOL", DirectoryProtocolLDAP),
		DirectoryTimeout:            getEnvDuration("DIRECTORY_TIMEOUT", 10*time.Second),
		DirectoryInsecureSkipVerify: getEnvBool("DIRECTORY_INSECURE_SKIP_VERIFY", false),

		// Certificate assertion
		AzureClientID:       getEnv("AZURE_CLIENT_ID", ""),
		AzureTenantID:       getEnv("AZURE_TENANT_ID", ""),
		AzureAuthorityHost:  getEnv("AZURE_AUTHORITY_HOST", DefaultAuthorityHost),
		AzureCertPath:       getEnv("AZURE_CERT_PATH", ""),
		AzureCertThumbprint: getEnv("AZURE_CERT_THUMBPRINT", ""),
		AzureScopes: getEnvSlice(
			"AZURE_SCOPES",
			[]string{"https://graph.microsoft.com/.default"},
		),
		TokenTimeout: getEnvDuration("TOKEN_TIMEOUT", 15*time.Second),

		// Federation
		FederateAfterDirectory: getEnvBool("FEDERATE_AFTER_DIRECTORY", true),
		AWSProfile:             getEnv("AWS_PROFILE", "acb-pao"),
		AWSRegion:              getEnv("AWS_REGION", ""),
		FederationTimeout:      getEnvDuration("FEDERATION_TIMEOUT", 10*time.Second),
		FederationCacheTTL:     getEnvDuration("FEDERATION_CACHE_TTL", 0),

		// Cache
		CacheType:        getEnv("CACHE_TYPE", CacheTypeMemory),
		CacheInitTimeout: getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisConnTimeout: getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),

		// Rate limiting
		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 5),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		// Metrics
		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 30*time.Second),
		RecentFailureWindow:        getEnvDuration("METRICS_RECENT_FAILURE_WINDOW", 15*time.Minute),

		// Audit logging
		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", false),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:  getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		DatabaseDriver:     driver,
		DatabaseDSN:        dsn,
		DBInitTimeout:      getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		AdminToken: getEnv("ADMIN_TOKEN", ""),
	}
}

// CertificateEnabled reports whether the certificate login path is configured.
// Both the tenant and the client identity are needed to address the token
// endpoint, and the key file is needed to sign the assertion.
func (c *Config) CertificateEnabled() bool {
	return c.AzureClientID != "" && c.AzureTenantID != "" && c.AzureCertPath != ""
}

// Validate checks enumerated settings and the values every deployment needs.
func (c *Config) Validate() error {
	if c.DirectoryServer == "" {
		return errors.New("AD_SERVER is required")
	}
	if c.DirectoryDomain == "" {
		return errors.New("AD_DOMAIN is required")
	}

	switch c.DirectoryProtocol {
	case DirectoryProtocolLDAP, DirectoryProtocolHTTPNTLM:
	default:
		return fmt.Errorf(
			"invalid DIRECTORY_PROTOCOL value: %q (must be %q or %q)",
			c.DirectoryProtocol, DirectoryProtocolLDAP, DirectoryProtocolHTTPNTLM,
		)
	}

	if c.DirectoryTimeout <= 0 || c.TokenTimeout <= 0 || c.FederationTimeout <= 0 {
		return errors.New("DIRECTORY_TIMEOUT, TOKEN_TIMEOUT and FEDERATION_TIMEOUT must be positive")
	}

	switch c.CacheType {
	case CacheTypeMemory, CacheTypeRedis:
	default:
		return fmt.Errorf(
			"invalid CACHE_TYPE value: %q (must be %q or %q)",
			c.CacheType, CacheTypeMemory, CacheTypeRedis,
		)
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	if c.FederationCacheTTL < 0 {
		return errors.New("FEDERATION_CACHE_TTL must not be negative")
	}

	if c.EnableRateLimit && c.LoginRateLimit <= 0 {
		return errors.New("LOGIN_RATE_LIMIT must be positive when rate limiting is enabled")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
