package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNotJWT       = errors.New("token is not a jwt")
)

// Claims represents the claims carried by a console bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type,omitempty"`
}

// Expired reports whether the claims carry an expiry that lies before now.
// Tokens without an exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Manager signs and validates HMAC bearer tokens.
type Manager struct {
	key      []byte
	issuer   string
	duration time.Duration
}

// NewManager creates a new JWT manager. A zero duration mints tokens
// without an exp claim.
func NewManager(key []byte, issuer string, duration time.Duration) *Manager {
	return &Manager{
		key:      key,
		issuer:   issuer,
		duration: duration,
	}
}

// Generate mints a signed access token for subject.
func (m *Manager) Generate(subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   m.issuer,
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Type: "access",
	}
	if m.duration != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.duration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Validate verifies the signature and expiry of tokenString.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Inspect decodes tokenString without verifying its signature. The console
// only holds tokens issued elsewhere, so all it can do is read the claims.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrNotJWT
	}
	return claims, nil
}
