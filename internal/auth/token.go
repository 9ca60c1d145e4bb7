package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token as belonging to one of the two token classes.
// Each class is signed with its own secret, so an access token can
// never be replayed where a refresh token is expected and vice versa,
// even if one secret leaks.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// MinSecretLen is the minimum number of bytes required of each signing
// secret. Shorter secrets are rejected at startup.
const MinSecretLen = 32

// TokenPair bundles the access and refresh tokens issued for one login.
type TokenPair struct {
	Access  string
	Refresh string
}

// tokenClaims is the claim set embedded in every issued token. The
// subject is the username; Type keeps the two token classes isolated on
// top of the per-class secrets.
type tokenClaims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the dashboard's bearer tokens. Tokens are
// self-contained HS256 JWTs; nothing is persisted, so rotating a secret
// invalidates every outstanding token of that class.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec validates both signing secrets and returns a Codec. Either
// secret being shorter than MinSecretLen is a configuration error; the
// caller is expected to treat it as fatal.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(accessSecret) < MinSecretLen {
		return nil, fmt.Errorf("access token secret must be at least %d bytes", MinSecretLen)
	}
	if len(refreshSecret) < MinSecretLen {
		return nil, fmt.Errorf("refresh token secret must be at least %d bytes", MinSecretLen)
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (c *Codec) secretFor(typ TokenType) []byte {
	if typ == TokenRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

// Issue signs a token of the given type for subject, expiring after
// ttl. A zero or negative ttl produces a token that is already expired
// and will never verify.
func (c *Codec) Issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secretFor(typ))
}

// IssuePair issues an access/refresh pair for subject using the
// configured TTLs.
func (c *Codec) IssuePair(subject string) (TokenPair, error) {
	access, err := c.Issue(subject, TokenAccess, c.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := c.Issue(subject, TokenRefresh, c.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify checks raw against the secret of the expected type and returns
// the embedded subject. Signature, expiry (no grace window) and the
// type claim must all pass; every failure collapses to ErrInvalidToken.
func (c *Codec) Verify(raw string, expected TokenType) (string, error) {
	tok, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secretFor(expected), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(*tokenClaims)
	if !ok || claims.Type != expected || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// AccessTTL returns the configured access token lifetime. Handlers use
// it to report expiry alongside issued tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }
