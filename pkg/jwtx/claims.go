package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/sessionauth/pkg/idx"
)

// Default lifetimes for the two signing domains. Both are overridable via
// configuration.
const (
	// DefaultAccessTokenTTL is short so a leaked access token is useful for
	// minutes, not days.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL bounds how long a session can be extended
	// without re-authenticating.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by both access and refresh tokens. The
// identifier of the authenticated principal lives in "sub"; the temporal
// fields and "jti" are filled in by the Codec at signing time.
//
// Claims are never edited after signing. A new token is always minted instead.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds the claims for a principal. Everything else is stamped by
// Codec.Sign.
func NewClaims(identifier string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: identifier,
		},
	}
}

// Identifier returns the principal the token was issued to.
func (c Claims) Identifier() string {
	return c.Subject
}

// ExpiresAtTime returns the encoded expiry or the zero time.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// stamp fills the registered temporal claims relative to now.
func (c Claims) stamp(issuer string, now time.Time, ttl time.Duration) Claims {
	c.Issuer = issuer
	c.IssuedAt = jwt.NewNumericDate(now)
	c.NotBefore = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if c.ID == "" {
		c.ID = NewJTI(now)
	}
	return c
}

// NewJTI returns a ULID for the "jti" claim, timestamped at now. Tokens
// minted within the same millisecond still differ.
func NewJTI(now time.Time) string {
	return idx.NewAt(now).String()
}
