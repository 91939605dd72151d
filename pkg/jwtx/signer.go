package jwtx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sign stamps iss, iat, nbf, exp and jti onto claims and signs them with the
// secret of domain d. The returned time is the encoded expiry.
//
// HS256 covers the header and the full payload, so altering any byte of the
// result invalidates it.
func (c *Codec) Sign(claims Claims, d Domain) (string, time.Time, error) {
	k, err := c.key(d)
	if err != nil {
		return "", time.Time{}, err
	}

	stamped := claims.stamp(c.issuer, c.clock.Now().UTC(), k.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stamped)
	signed, err := token.SignedString(k.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: sign %s token: %w", d, err)
	}

	return signed, stamped.ExpiresAt.Time, nil
}
