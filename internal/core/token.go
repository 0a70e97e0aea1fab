package core

import "time"

// TokenResult is a bearer token issued by the identity provider.
// ExpiresAt is the zero time when the provider did not report an expiry.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// HasExpiry reports whether the provider returned an expiry.
func (t *TokenResult) HasExpiry() bool {
	return t != nil && !t.ExpiresAt.IsZero()
}
