// Package auth issues and verifies the bearer tokens used to attribute
// orders to user accounts.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime used when no override is configured.
const DefaultTTL = 2 * time.Hour

// ErrInvalidToken covers malformed, mis-signed, and expired tokens.
var ErrInvalidToken = fmt.Errorf("invalid or expired token")

// Claims is the identity carried inside a signed token.
type Claims struct {
	UserID   string
	Username string
	Phone    string
}

type tokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager with the given signing secret and
// token lifetime. A non-positive ttl falls back to DefaultTTL.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for the given identity, valid for the configured TTL.
func (m *TokenManager) Issue(c Claims) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:   c.UserID,
		Username: c.Username,
		Phone:    c.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and expiry and returns the embedded
// claims. Any verification failure maps to ErrInvalidToken.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Phone:    claims.Phone,
	}, nil
}
