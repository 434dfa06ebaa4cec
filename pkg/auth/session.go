package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenKey is the blob-store key holding the storefront session token.
const SessionTokenKey = "session"

var jwtSigningMethod = jwt.SigningMethodHS256

// TokenStore is the narrow persistence surface the session needs.
type TokenStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Session resolves the locally stored session token and answers the
// authenticated-or-not question for the sync engines. Authentication is
// gated on token presence: a token that parses as a JWT additionally has
// its expiry honored, while opaque tokens count as authenticated as-is.
type Session struct {
	store TokenStore
	cfg   config.SessionConfig
	now   func() time.Time
}

func NewSession(store TokenStore, cfg config.SessionConfig) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	return &Session{store: store, cfg: cfg, now: time.Now}, nil
}

// Token returns the stored session token, or "" when signed out.
func (s *Session) Token(ctx context.Context) string {
	raw, err := s.store.Get(ctx, SessionTokenKey)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// SetToken stores the session token handed over by the storefront UI.
func (s *Session) SetToken(ctx context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return fmt.Errorf("session token is required")
	}
	return s.store.Set(ctx, SessionTokenKey, []byte(trimmed))
}

// ClearToken signs the device out.
func (s *Session) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, SessionTokenKey)
}

// IsAuthenticated reports whether a usable session token is present.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token := s.Token(ctx)
	if token == "" {
		return false
	}

	claims, err := s.parseClaims(token)
	if err != nil {
		// Not a JWT we can interpret; presence of the token decides.
		return s.cfg.JWTSecret == ""
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now()) {
		return false
	}
	return true
}

// Claims parses the stored token into typed claims when possible.
func (s *Session) Claims(ctx context.Context) (*SessionClaims, error) {
	token := s.Token(ctx)
	if token == "" {
		return nil, fmt.Errorf("no session token stored")
	}
	return s.parseClaims(token)
}

func (s *Session) parseClaims(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	if s.cfg.JWTSecret != "" {
		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
		if s.cfg.JWTIssuer != "" {
			opts = append(opts, jwt.WithIssuer(s.cfg.JWTIssuer))
		}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		}, opts...)
		if err != nil {
			return nil, err
		}
		return claims, nil
	}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
