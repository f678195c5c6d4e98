package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const servicePrincipal = "enricher-service"

// TokenSource mints the short-lived service token the registries require in
// the RequestInfo envelope. Tokens are reused until shortly before expiry.
type TokenSource struct {
	key []byte
	now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource creates a token source signing with the shared key.
func NewTokenSource(signingKey string) *TokenSource {
	return &TokenSource{key: []byte(signingKey), now: time.Now}
}

// Token returns a valid signed token, minting a fresh one when the cached
// token is within a minute of expiry.
func (t *TokenSource) Token() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.token != "" && now.Before(t.expires.Add(-time.Minute)) {
		return t.token, nil
	}

	expires := now.Add(10 * time.Minute)
	claims := jwt.RegisteredClaims{
		Subject:   servicePrincipal,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}

	t.token = signed
	t.expires = expires
	return signed, nil
}
