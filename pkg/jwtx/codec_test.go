package jwtx_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/idx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"
)

var (
	accessSecret  = []byte("access-secret-0123456789abcdef-access")
	refreshSecret = []byte("refresh-secret-0123456789abcdef-refresh")
	epoch         = time.Unix(1500000000, 0).UTC()
)

func newCodec(t *testing.T, clock abtime.AbstractTime, skew time.Duration) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.NewCodec(jwtx.Options{
		Access:    jwtx.DomainConfig{Secret: accessSecret, TTL: 15 * time.Minute},
		Refresh:   jwtx.DomainConfig{Secret: refreshSecret, TTL: 7 * 24 * time.Hour},
		Issuer:    "session-auth",
		ClockSkew: skew,
		Clock:     clock,
	})
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	t.Parallel()

	valid := func() jwtx.Options {
		return jwtx.Options{
			Access:  jwtx.DomainConfig{Secret: accessSecret, TTL: time.Minute},
			Refresh: jwtx.DomainConfig{Secret: refreshSecret, TTL: time.Hour},
		}
	}

	tests := []struct {
		name   string
		mutate func(*jwtx.Options)
		want   error
	}{
		{"missing access secret", func(o *jwtx.Options) { o.Access.Secret = nil }, jwtx.ErrMissingSecret},
		{"missing refresh secret", func(o *jwtx.Options) { o.Refresh.Secret = nil }, jwtx.ErrMissingSecret},
		{"short secret", func(o *jwtx.Options) { o.Access.Secret = []byte("too-short") }, jwtx.ErrWeakSecret},
		{"shared secret", func(o *jwtx.Options) { o.Refresh.Secret = accessSecret }, jwtx.ErrSharedSecret},
		{"zero access ttl", func(o *jwtx.Options) { o.Access.TTL = 0 }, jwtx.ErrInvalidTTL},
		{"access outlives refresh", func(o *jwtx.Options) { o.Access.TTL = 2 * time.Hour }, jwtx.ErrInvalidTTL},
		{"negative skew", func(o *jwtx.Options) { o.ClockSkew = -time.Second }, jwtx.ErrInvalidSkew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid()
			tt.mutate(&opts)

			_, err := jwtx.NewCodec(opts)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("defaults to wall clock", func(t *testing.T) {
		codec, err := jwtx.NewCodec(valid())
		require.NoError(t, err)
		require.WithinDuration(t, time.Now(), codec.Now(), time.Second)
		require.Equal(t, time.Minute, codec.TTL(jwtx.DomainAccess))
		require.Equal(t, time.Hour, codec.TTL(jwtx.DomainRefresh))
	})

	t.Run("secrets are copied", func(t *testing.T) {
		secret := bytes.Clone(accessSecret)
		opts := valid()
		opts.Access.Secret = secret

		codec, err := jwtx.NewCodec(opts)
		require.NoError(t, err)

		token, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)

		secret[0] ^= 0xff
		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.NoError(t, err)
	})
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	clock := abtime.NewManualAtTime(epoch)
	codec := newCodec(t, clock, 0)

	for _, domain := range []jwtx.Domain{jwtx.DomainAccess, jwtx.DomainRefresh} {
		t.Run(domain.String(), func(t *testing.T) {
			token, exp, err := codec.Sign(jwtx.NewClaims("a@x.com"), domain)
			require.NoError(t, err)
			require.WithinDuration(t, epoch.Add(codec.TTL(domain)), exp, 0)

			claims, err := codec.Verify(token, domain)
			require.NoError(t, err)
			require.Equal(t, "a@x.com", claims.Identifier())
			require.Equal(t, "session-auth", claims.Issuer)
			require.WithinDuration(t, epoch, claims.IssuedAt.Time, 0)
			require.WithinDuration(t, exp, claims.ExpiresAtTime(), 0)
			jti, err := idx.Parse(claims.ID)
			require.NoError(t, err)
			require.True(t, epoch.Equal(jti.Time()), "jti is stamped from the codec clock")

			again, err := codec.Verify(token, domain)
			require.NoError(t, err)
			require.Equal(t, claims, again)
		})
	}

	t.Run("each token gets a fresh jti", func(t *testing.T) {
		a, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)
		b, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestDomainIsolation(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, abtime.NewManualAtTime(epoch), 0)

	tests := []struct {
		signed, verified jwtx.Domain
	}{
		{jwtx.DomainAccess, jwtx.DomainRefresh},
		{jwtx.DomainRefresh, jwtx.DomainAccess},
	}

	for _, tt := range tests {
		t.Run(tt.signed.String()+" under "+tt.verified.String(), func(t *testing.T) {
			token, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), tt.signed)
			require.NoError(t, err)

			_, err = codec.Verify(token, tt.verified)
			require.ErrorIs(t, err, jwtx.ErrWrongDomain)
			require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
			require.Equal(t, jwtx.ReasonWrongDomain, jwtx.ReasonOf(err))
		})
	}

	t.Run("foreign secret is an invalid signature", func(t *testing.T) {
		other, err := jwtx.NewCodec(jwtx.Options{
			Access:  jwtx.DomainConfig{Secret: []byte("some-other-access-secret-0123456789"), TTL: time.Minute},
			Refresh: jwtx.DomainConfig{Secret: []byte("some-other-refresh-secret-0123456789"), TTL: time.Hour},
			Issuer:  "session-auth",
		})
		require.NoError(t, err)

		token, _, err := other.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)

		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})
}

func TestExpiryBoundary(t *testing.T) {
	t.Parallel()

	t.Run("no skew", func(t *testing.T) {
		clock := abtime.NewManualAtTime(epoch)
		codec := newCodec(t, clock, 0)

		token, exp, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)

		clock.Advance(exp.Sub(epoch) - time.Millisecond)
		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.NoError(t, err, "token must verify just before expiry")

		clock.Advance(time.Millisecond)
		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrExpired)

		clock.Advance(time.Hour)
		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.Equal(t, jwtx.ReasonExpired, jwtx.ReasonOf(err))
	})

	t.Run("with skew", func(t *testing.T) {
		clock := abtime.NewManualAtTime(epoch)
		codec := newCodec(t, clock, 30*time.Second)

		token, exp, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)

		clock.Advance(exp.Sub(epoch) + 29*time.Second)
		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.NoError(t, err)

		clock.Advance(time.Second)
		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired token from the other domain is still wrong domain", func(t *testing.T) {
		clock := abtime.NewManualAtTime(epoch)
		codec := newCodec(t, clock, 0)

		token, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
		require.NoError(t, err)

		clock.Advance(time.Hour)
		_, err = codec.Verify(token, jwtx.DomainRefresh)
		require.ErrorIs(t, err, jwtx.ErrWrongDomain)
	})
}

func TestTamperedTokensAreRejected(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, abtime.NewManualAtTime(epoch), 0)
	token, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainAccess)
	require.NoError(t, err)

	for i := range len(token) {
		for bit := range 8 {
			tampered := []byte(token)
			tampered[i] ^= 1 << bit

			_, err := codec.Verify(string(tampered), jwtx.DomainAccess)
			require.Error(t, err, "flip of bit %d at byte %d verified", bit, i)
		}
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	clock := abtime.NewManualAtTime(epoch)
	codec := newCodec(t, clock, 0)

	t.Run("garbage", func(t *testing.T) {
		for _, token := range []string{"", "abc", "a.b", "a.b.c", "...."} {
			_, err := codec.Verify(token, jwtx.DomainAccess)
			require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", token)
		}
	})

	t.Run("alg none", func(t *testing.T) {
		claims := jwtx.NewClaims("a@x.com")
		claims.ExpiresAt = jwt.NewNumericDate(epoch.Add(time.Hour))
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("other hmac algorithm with the right secret", func(t *testing.T) {
		claims := jwtx.NewClaims("a@x.com")
		claims.Issuer = "session-auth"
		claims.ExpiresAt = jwt.NewNumericDate(epoch.Add(time.Hour))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(accessSecret)
		require.NoError(t, err)

		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := jwtx.NewClaims("a@x.com")
		claims.Issuer = "session-auth"
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(accessSecret)
		require.NoError(t, err)

		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		claims := jwtx.NewClaims("a@x.com")
		claims.Issuer = "someone-else"
		claims.ExpiresAt = jwt.NewNumericDate(epoch.Add(time.Hour))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(accessSecret)
		require.NoError(t, err)

		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("empty subject", func(t *testing.T) {
		token, _, err := codec.Sign(jwtx.NewClaims(""), jwtx.DomainAccess)
		require.NoError(t, err)

		_, err = codec.Verify(token, jwtx.DomainAccess)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.Domain("id"))
		require.ErrorIs(t, err, jwtx.ErrUnknownDomain)

		_, err = codec.Verify("a.b.c", jwtx.Domain("id"))
		require.ErrorIs(t, err, jwtx.ErrUnknownDomain)
	})
}

func TestReasonOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, jwtx.Reason(""), jwtx.ReasonOf(nil))
	require.Equal(t, jwtx.ReasonMissing, jwtx.ReasonOf(jwtx.ErrMissing))
	require.Equal(t, jwtx.ReasonUnknown, jwtx.ReasonOf(jwtx.ErrUnknownDomain))
	require.Equal(t, jwtx.ReasonExpired, jwtx.ReasonOf(&jwtx.VerifyError{
		Domain: jwtx.DomainAccess,
		Reason: jwtx.ReasonExpired,
		Err:    jwt.ErrTokenExpired,
	}))
}

func TestCodecConcurrentUse(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, abtime.NewRealTime(), 0)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, _, err := codec.Sign(jwtx.NewClaims("a@x.com"), jwtx.DomainRefresh)
			if err != nil {
				errs <- err
				return
			}
			if _, err := codec.Verify(token, jwtx.DomainRefresh); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestCodecCheck(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, abtime.NewManualAtTime(epoch), 0)
	require.NoError(t, codec.Check())
}
