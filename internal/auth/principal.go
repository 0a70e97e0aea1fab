package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Principal is a domain-qualified directory account name.
type Principal struct {
	Domain   string
	Username string
}

// NewPrincipal builds DOMAIN\username. The username is NFKC-normalized so
// visually identical submissions bind as the same account.
func NewPrincipal(domain, username string) (Principal, error) {
	name := strings.TrimSpace(norm.NFKC.String(username))
	if name == "" {
		return Principal{}, fmt.Errorf("%w: empty username", ErrInvalidPrincipal)
	}
	if strings.ContainsAny(name, `\/@`) {
		return Principal{}, fmt.Errorf("%w: username must not be qualified", ErrInvalidPrincipal)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return Principal{}, fmt.Errorf("%w: control character in username", ErrInvalidPrincipal)
		}
	}
	return Principal{Domain: domain, Username: name}, nil
}

func (p Principal) String() string {
	return p.Domain + `\` + p.Username
}
