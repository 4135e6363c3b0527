package token

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/weiawesome/wes-io-live/liveroom-console/pkg/jwt"
)

var (
	ErrMissingToken = errors.New("no bearer token configured")
	ErrTokenExpired = errors.New("bearer token has expired")
)

// Provider supplies the Authorization header for backend calls.
type Provider interface {
	Header() (string, error)
}

// StaticProvider serves a token loaded once at startup.
type StaticProvider struct {
	token string
	now   func() time.Time
}

// NewStaticProvider wraps a raw token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{
		token: strings.TrimSpace(token),
		now:   time.Now,
	}
}

// Load builds a provider from an inline token or, if that is empty, a token file.
func Load(token, tokenFile string) (*StaticProvider, error) {
	if strings.TrimSpace(token) != "" {
		return NewStaticProvider(token), nil
	}
	if tokenFile == "" {
		return nil, ErrMissingToken
	}

	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	p := NewStaticProvider(string(data))
	if p.token == "" {
		return nil, ErrMissingToken
	}
	return p, nil
}

// Header returns "Bearer <token>". JWTs are checked for expiry before use;
// opaque tokens are passed through as-is.
func (p *StaticProvider) Header() (string, error) {
	if p.token == "" {
		return "", ErrMissingToken
	}

	claims, err := jwt.Inspect(p.token)
	if err == nil && claims.Expired(p.now()) {
		return "", ErrTokenExpired
	}

	return "Bearer " + p.token, nil
}

// ExpiresAt returns the token's exp claim, if it is a JWT that carries one.
func (p *StaticProvider) ExpiresAt() (time.Time, bool) {
	claims, err := jwt.Inspect(p.token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
