package auth

import (
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- x5t is defined as a SHA-1 thumbprint
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CertificateMaterial is the signing key registered with the identity
// provider plus the thumbprint that identifies it.
type CertificateMaterial struct {
	PrivateKey  *rsa.PrivateKey
	Thumbprint  string // upper-case hex SHA-1
	Certificate *x509.Certificate
}

// LoadCertificateMaterial reads a PEM file holding an RSA private key and,
// optionally, its certificate. When thumbprint is empty it is computed from
// the certificate.
func LoadCertificateMaterial(path, thumbprint string) (*CertificateMaterial, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateUnavailable, err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateUnavailable, err)
	}

	cert, err := firstCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateUnavailable, err)
	}

	if cert != nil {
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok || !pub.Equal(&key.PublicKey) {
			return nil, fmt.Errorf("%w: certificate does not match private key", ErrCertificateUnavailable)
		}
	}

	resolved, err := resolveThumbprint(thumbprint, cert)
	if err != nil {
		return nil, err
	}

	return &CertificateMaterial{
		PrivateKey:  key,
		Thumbprint:  resolved,
		Certificate: cert,
	}, nil
}

func firstCertificate(data []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, nil
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}

func resolveThumbprint(configured string, cert *x509.Certificate) (string, error) {
	var computed string
	if cert != nil {
		sum := sha1.Sum(cert.Raw) // #nosec G401
		computed = strings.ToUpper(hex.EncodeToString(sum[:]))
	}

	if configured == "" {
		if computed == "" {
			return "", fmt.Errorf(
				"%w: thumbprint not configured and no certificate in key file",
				ErrCertificateUnavailable,
			)
		}
		return computed, nil
	}

	normalized, err := normalizeThumbprint(configured)
	if err != nil {
		return "", err
	}
	if computed != "" && computed != normalized {
		return "", fmt.Errorf(
			"%w: configured thumbprint does not match certificate",
			ErrCertificateUnavailable,
		)
	}
	return normalized, nil
}

func normalizeThumbprint(s string) (string, error) {
	s = strings.ToUpper(strings.NewReplacer(":", "", " ", "").Replace(s))
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != sha1.Size {
		return "", fmt.Errorf("%w: thumbprint must be a hex SHA-1 digest", ErrCertificateUnavailable)
	}
	return s, nil
}

// CertificateStore loads the key material once and keeps it until an
// explicit Reload. A failed load is not remembered; the next use retries.
type CertificateStore struct {
	path       string
	thumbprint string

	mu       sync.RWMutex
	material *CertificateMaterial
	loadedAt time.Time
}

// NewCertificateStore creates a store. Nothing is read until first use.
func NewCertificateStore(path, thumbprint string) *CertificateStore {
	return &CertificateStore{path: path, thumbprint: thumbprint}
}

// Material returns the loaded material, loading it on first use.
func (s *CertificateStore) Material() (*CertificateMaterial, error) {
	s.mu.RLock()
	m := s.material
	s.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.material != nil {
		return s.material, nil
	}

	m, err := LoadCertificateMaterial(s.path, s.thumbprint)
	if err != nil {
		return nil, err
	}
	s.material = m
	s.loadedAt = time.Now()
	return m, nil
}

// Reload re-reads the key file. On failure the previous material stays
// in use and the error is returned.
func (s *CertificateStore) Reload() error {
	m, err := LoadCertificateMaterial(s.path, s.thumbprint)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.material = m
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Status reports whether material is loaded, when, and its thumbprint.
func (s *CertificateStore) Status() (loaded bool, loadedAt time.Time, thumbprint string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.material == nil {
		return false, time.Time{}, ""
	}
	return true, s.loadedAt, s.material.Thumbprint
}

// IsUnavailable reports whether err is a certificate material failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCertificateUnavailable)
}
