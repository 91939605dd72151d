package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/abtime"
)

// Domain names an independent signing namespace. A token signed for one
// domain never verifies under another because every domain has its own secret.
type Domain string

const (
	DomainAccess  Domain = "access"
	DomainRefresh Domain = "refresh"
)

// MinSecretLength is the minimum HS256 secret size in bytes (RFC 7518 3.2).
const MinSecretLength = 32

func (d Domain) String() string { return string(d) }

// other returns the opposite domain, used only to tag diagnostics.
func (d Domain) other() Domain {
	if d == DomainAccess {
		return DomainRefresh
	}
	return DomainAccess
}

// DomainConfig is the key material and lifetime for one domain.
type DomainConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Options configures a Codec.
type Options struct {
	Access  DomainConfig
	Refresh DomainConfig

	// Issuer is stamped into "iss" and required on verification when set.
	Issuer string

	// ClockSkew is the tolerance applied to exp and nbf. Zero means none.
	ClockSkew time.Duration

	// Clock defaults to the wall clock.
	Clock abtime.AbstractTime
}

var (
	ErrMissingSecret = errors.New("jwtx: signing secret is required")
	ErrWeakSecret    = errors.New("jwtx: signing secret is too short")
	ErrSharedSecret  = errors.New("jwtx: access and refresh secrets must differ")
	ErrInvalidTTL    = errors.New("jwtx: invalid token lifetime")
	ErrInvalidSkew   = errors.New("jwtx: clock skew must not be negative")
	ErrUnknownDomain = errors.New("jwtx: unknown signing domain")
)

type domainKey struct {
	secret []byte
	ttl    time.Duration
}

// Codec signs and verifies HS256 tokens for the access and refresh domains.
// It is immutable after NewCodec and safe for concurrent use.
type Codec struct {
	keys   map[Domain]domainKey
	issuer string
	leeway time.Duration
	clock  abtime.AbstractTime
}

// NewCodec validates the options and copies the secrets so later mutation
// by the caller has no effect.
func NewCodec(opts Options) (*Codec, error) {
	if err := validateDomain(DomainAccess, opts.Access); err != nil {
		return nil, err
	}
	if err := validateDomain(DomainRefresh, opts.Refresh); err != nil {
		return nil, err
	}
	if bytes.Equal(opts.Access.Secret, opts.Refresh.Secret) {
		return nil, ErrSharedSecret
	}
	if opts.Access.TTL >= opts.Refresh.TTL {
		return nil, fmt.Errorf("%w: access ttl %s must be shorter than refresh ttl %s",
			ErrInvalidTTL, opts.Access.TTL, opts.Refresh.TTL)
	}
	if opts.ClockSkew < 0 {
		return nil, ErrInvalidSkew
	}

	clock := opts.Clock
	if clock == nil {
		clock = abtime.NewRealTime()
	}

	return &Codec{
		keys: map[Domain]domainKey{
			DomainAccess:  {secret: bytes.Clone(opts.Access.Secret), ttl: opts.Access.TTL},
			DomainRefresh: {secret: bytes.Clone(opts.Refresh.Secret), ttl: opts.Refresh.TTL},
		},
		issuer: opts.Issuer,
		leeway: opts.ClockSkew,
		clock:  clock,
	}, nil
}

func validateDomain(d Domain, cfg DomainConfig) error {
	if len(cfg.Secret) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecret, d)
	}
	if len(cfg.Secret) < MinSecretLength {
		return fmt.Errorf("%w: %s secret has %d bytes, need %d", ErrWeakSecret, d, len(cfg.Secret), MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return fmt.Errorf("%w: %s ttl %s", ErrInvalidTTL, d, cfg.TTL)
	}
	return nil
}

// TTL returns the configured lifetime for d, or zero for an unknown domain.
func (c *Codec) TTL(d Domain) time.Duration {
	return c.keys[d].ttl
}

// Now returns the codec's notion of the current time.
func (c *Codec) Now() time.Time {
	return c.clock.Now()
}

func (c *Codec) key(d Domain) (domainKey, error) {
	k, ok := c.keys[d]
	if !ok {
		return domainKey{}, fmt.Errorf("%w: %q", ErrUnknownDomain, d)
	}
	return k, nil
}

// Check round-trips a throwaway token through both domains. Readiness probes
// use it to confirm the key material is usable.
func (c *Codec) Check() error {
	for _, d := range []Domain{DomainAccess, DomainRefresh} {
		token, _, err := c.Sign(NewClaims("readiness-probe"), d)
		if err != nil {
			return err
		}
		if _, err := c.Verify(token, d); err != nil {
			return fmt.Errorf("jwtx: %s self check: %w", d, err)
		}
	}
	return nil
}
