package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"

	"github.com/go-ldap/ldap/v3"
)

var _ core.DirectoryVerifier = (*LDAPDirectory)(nil)

// ldapConn is the subset of *ldap.Conn used for a bind check.
type ldapConn interface {
	NTLMBind(domain, username, password string) error
	Close() error
}

type ldapDialFunc func(ctx context.Context, serverURL string) (ldapConn, error)

// LDAPDirectory verifies passwords with an NTLM bind against Active Directory.
type LDAPDirectory struct {
	serverURL string
	domain    string
	timeout   time.Duration
	dial      ldapDialFunc
}

// NewLDAPDirectory creates a directory verifier. A bare host name is
// treated as ldap://host.
func NewLDAPDirectory(
	server, domain string,
	timeout time.Duration,
	insecureSkipVerify bool,
) *LDAPDirectory {
	// #nosec G402 -- InsecureSkipVerify is user-configurable for lab directories
	tlsConfig := &tls.Config{InsecureSkipVerify: insecureSkipVerify}
	return &LDAPDirectory{
		serverURL: normalizeLDAPURL(server),
		domain:    domain,
		timeout:   timeout,
		dial:      dialLDAP(timeout, tlsConfig),
	}
}

func normalizeLDAPURL(server string) string {
	if strings.Contains(server, "://") {
		return server
	}
	return "ldap://" + server
}

// dialLDAP dials with the request context so an abandoned login stops
// waiting for the directory.
func dialLDAP(timeout time.Duration, tlsConfig *tls.Config) ldapDialFunc {
	return func(ctx context.Context, serverURL string) (ldapConn, error) {
		u, err := url.Parse(serverURL)
		if err != nil {
			return nil, err
		}
		addr, isTLS, err := ldapAddress(u)
		if err != nil {
			return nil, err
		}

		dialer := &net.Dialer{Timeout: timeout}
		var nc net.Conn
		if isTLS {
			cfg := tlsConfig.Clone()
			if cfg.ServerName == "" {
				cfg.ServerName = u.Hostname()
			}
			nc, err = (&tls.Dialer{NetDialer: dialer, Config: cfg}).DialContext(ctx, "tcp", addr)
		} else {
			nc, err = dialer.DialContext(ctx, "tcp", addr)
		}
		if err != nil {
			return nil, err
		}

		conn := ldap.NewConn(nc, isTLS)
		conn.Start()
		conn.SetTimeout(timeout)
		return conn, nil
	}
}

func ldapAddress(u *url.URL) (addr string, isTLS bool, err error) {
	port := u.Port()
	switch u.Scheme {
	case "ldap":
		if port == "" {
			port = ldap.DefaultLdapPort
		}
	case "ldaps":
		isTLS = true
		if port == "" {
			port = ldap.DefaultLdapsPort
		}
	default:
		return "", false, fmt.Errorf("unsupported LDAP scheme %q", u.Scheme)
	}
	return net.JoinHostPort(u.Hostname(), port), isTLS, nil
}

// Verify binds as DOMAIN\username. A rejected bind is (false, nil);
// dial, TLS, timeout and protocol faults wrap ErrDirectoryUnavailable.
func (d *LDAPDirectory) Verify(ctx context.Context, username, password string) (bool, error) {
	// An empty password would turn an NTLM bind into an anonymous one.
	if password == "" {
		return false, nil
	}

	principal, err := NewPrincipal(d.domain, username)
	if err != nil {
		logger.Debugw("rejecting directory principal", "error", err)
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	conn, err := d.dial(ctx, d.serverURL)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	defer func() { _ = conn.Close() }()

	done := make(chan error, 1)
	go func() {
		done <- conn.NTLMBind(principal.Domain, principal.Username, password)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		// Closing the connection unblocks the pending bind.
		_ = conn.Close()
		<-done
		return false, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, ctx.Err())
	}

	return classifyBindError(err)
}

func classifyBindError(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if ldap.IsErrorAnyOf(
		err,
		ldap.LDAPResultInvalidCredentials,
		ldap.LDAPResultInappropriateAuthentication,
	) {
		return false, nil
	}
	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		return false, fmt.Errorf(
			"%w: bind failed with result %d: %v",
			ErrDirectoryUnavailable,
			ldapErr.ResultCode,
			ldapErr.Err,
		)
	}
	return false, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
}

// Name returns provider name for logging
func (d *LDAPDirectory) Name() string {
	return "ldap"
}
