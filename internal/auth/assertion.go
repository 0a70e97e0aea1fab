package auth

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	assertionLifetime   = 10 * time.Minute
)

// buildClientAssertion signs a short-lived RS256 JWT proving possession of
// the registered certificate. The audience is the token endpoint.
func buildClientAssertion(
	m *CertificateMaterial,
	clientID, audience string,
	now time.Time,
) (string, error) {
	digest, err := hex.DecodeString(m.Thumbprint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCertificateUnavailable, err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    clientID,
		Subject:   clientID,
		Audience:  jwt.ClaimStrings{audience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(digest)

	signed, err := token.SignedString(m.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("%w: failed to sign assertion: %v", ErrCertificateUnavailable, err)
	}
	return signed, nil
}
