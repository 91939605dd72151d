package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Reason tags why a token was rejected. It is for logs only and must never
// shape the response a caller sees.
type Reason string

const (
	ReasonMissing          Reason = "missing"
	ReasonMalformed        Reason = "malformed"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "expired"
	ReasonWrongDomain      Reason = "wrong_domain"
	ReasonUnknown          Reason = "unknown"
)

var (
	ErrMissing     = errors.New("jwtx: missing bearer token")
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrWrongDomain = errors.New("jwtx: token signed for another domain")
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonMissing:
		return ErrMissing
	case ReasonMalformed:
		return ErrMalformed
	case ReasonInvalidSignature:
		return ErrInvalidSig
	case ReasonExpired:
		return ErrExpired
	case ReasonWrongDomain:
		return ErrWrongDomain
	default:
		return nil
	}
}

// VerifyError is the single failure type returned by Verify.
type VerifyError struct {
	Domain Domain
	Reason Reason
	Err    error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("jwtx: %s token rejected: %s: %v", e.Domain, e.Reason, e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Is lets callers match a VerifyError against the reason sentinels.
func (e *VerifyError) Is(target error) bool {
	s := e.Reason.sentinel()
	return s != nil && target == s
}

// ReasonOf extracts the rejection reason from any error produced by this
// package.
func ReasonOf(err error) Reason {
	var ve *VerifyError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Reason
	case errors.Is(err, ErrMissing):
		return ReasonMissing
	default:
		return ReasonUnknown
	}
}

// Verify checks token against the secret of domain d. Signature, algorithm,
// expiry (with the configured skew) and issuer are all enforced.
func (c *Codec) Verify(token string, d Domain) (Claims, error) {
	k, err := c.key(d)
	if err != nil {
		return Claims{}, err
	}

	claims, err := c.parse(token, k.secret)
	if err == nil {
		if claims.Subject == "" {
			return Claims{}, &VerifyError{Domain: d, Reason: ReasonMalformed, Err: errors.New("empty subject")}
		}
		return claims, nil
	}

	reason := classify(err)
	if reason == ReasonInvalidSignature && c.signedBy(token, d.other()) {
		reason = ReasonWrongDomain
	}

	return Claims{}, &VerifyError{Domain: d, Reason: reason, Err: err}
}

// signedBy reports whether token carries a valid signature under domain d,
// ignoring its claims. Used only to tag a rejection.
func (c *Codec) signedBy(token string, d Domain) bool {
	k, ok := c.keys[d]
	if !ok {
		return false
	}
	_, err := c.parse(token, k.secret)
	return err == nil || !errors.Is(err, jwt.ErrTokenSignatureInvalid) && !errors.Is(err, jwt.ErrTokenMalformed)
}

func (c *Codec) parse(token string, secret []byte) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.clock.Now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return ReasonExpired
	default:
		// Issuer mismatch, missing exp and similar claim shape problems.
		return ReasonMalformed
	}
}
