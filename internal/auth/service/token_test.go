package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

func newCodec(t *testing.T, clock abtime.AbstractTime) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.NewCodec(jwtx.Options{
		Access:  jwtx.DomainConfig{Secret: []byte("service-test-access-secret-0123456789"), TTL: accessTTL},
		Refresh: jwtx.DomainConfig{Secret: []byte("service-test-refresh-secret-0123456789"), TTL: refreshTTL},
		Issuer:  "session-auth",
		Clock:   clock,
	})
	require.NoError(t, err)
	return codec
}

// stubAuth accepts exactly one credential pair.
var stubAuth = service.AuthenticatorFunc(func(_ context.Context, identifier, secret string) (domain.Identity, error) {
	if identifier == "a@x.com" && secret == "ok" {
		return domain.Identity{Identifier: identifier}, nil
	}
	return domain.Identity{}, service.ErrInvalidCredentials
})

func newService(t *testing.T) (*service.TokenService, *abtime.ManualTime) {
	t.Helper()
	clock := abtime.NewManualAtTime(epoch)
	return &service.TokenService{Codec: newCodec(t, clock), Authenticator: stubAuth}, clock
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)

	t.Run("success", func(t *testing.T) {
		pair, err := svc.Login(ctx, "a@x.com", "ok")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		require.True(t, pair.AccessExpiresAt.Equal(epoch.Add(accessTTL)))
		require.True(t, pair.RefreshExpiresAt.Equal(epoch.Add(refreshTTL)))

		access, err := svc.Codec.Verify(pair.AccessToken, jwtx.DomainAccess)
		require.NoError(t, err)
		refresh, err := svc.Codec.Verify(pair.RefreshToken, jwtx.DomainRefresh)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", access.Identifier())
		require.Equal(t, access.Identifier(), refresh.Identifier())
	})

	t.Run("wrong secret", func(t *testing.T) {
		pair, err := svc.Login(ctx, "a@x.com", "nope")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
		require.Nil(t, pair)
	})

	t.Run("collaborator failure passes through", func(t *testing.T) {
		boom := errors.New("store down")
		failing := &service.TokenService{
			Codec: svc.Codec,
			Authenticator: service.AuthenticatorFunc(func(context.Context, string, string) (domain.Identity, error) {
				return domain.Identity{}, boom
			}),
		}
		_, err := failing.Login(ctx, "a@x.com", "ok")
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestIssueRejectsEmptyIdentity(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	_, err := svc.Issue(context.Background(), domain.Identity{})
	require.Error(t, err)
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("mints an access token only", func(t *testing.T) {
		svc, clock := newService(t)
		pair, err := svc.Issue(ctx, domain.Identity{Identifier: "a@x.com"})
		require.NoError(t, err)

		clock.Advance(time.Hour)

		at, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, at.ExpiresAt.Equal(epoch.Add(time.Hour+accessTTL)))

		claims, err := svc.Codec.Verify(at.Token, jwtx.DomainAccess)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", claims.Identifier())

		// Refresh cannot be chained into itself.
		_, err = svc.Codec.Verify(at.Token, jwtx.DomainRefresh)
		require.Error(t, err)
		_, err = svc.Refresh(ctx, at.Token)
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("same refresh token stays usable until it expires", func(t *testing.T) {
		svc, clock := newService(t)
		pair, err := svc.Issue(ctx, domain.Identity{Identifier: "a@x.com"})
		require.NoError(t, err)

		for range 3 {
			_, err := svc.Refresh(ctx, pair.RefreshToken)
			require.NoError(t, err)
			clock.Advance(24 * time.Hour)
		}

		clock.Advance(refreshTTL)
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
		require.Equal(t, jwtx.ReasonExpired, service.ReasonOf(err))
	})

	t.Run("failures are uniform", func(t *testing.T) {
		svc, _ := newService(t)
		pair, err := svc.Issue(ctx, domain.Identity{Identifier: "a@x.com"})
		require.NoError(t, err)

		tests := []struct {
			name   string
			token  string
			reason jwtx.Reason
		}{
			{"missing", "", jwtx.ReasonMissing},
			{"garbage", "not-a-token", jwtx.ReasonMalformed},
			{"access token", pair.AccessToken, jwtx.ReasonWrongDomain},
			{"foreign secret", foreignToken(t), jwtx.ReasonInvalidSignature},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				at, err := svc.Refresh(ctx, tt.token)
				require.Nil(t, at)
				require.ErrorIs(t, err, service.ErrUnauthorized)
				require.Equal(t, "unauthorized", err.Error())
				require.Equal(t, tt.reason, service.ReasonOf(err))
			})
		}
	})
}

// foreignToken is well formed and unexpired but signed with a key this
// service does not hold.
func foreignToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		Issuer:    "session-auth",
		ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
	}).SignedString([]byte("someone-else-entirely-0123456789abcdef"))
	require.NoError(t, err)
	return tok
}

func TestAuthorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clock := newService(t)

	pair, err := svc.Issue(ctx, domain.Identity{Identifier: "a@x.com"})
	require.NoError(t, err)

	t.Run("valid bearer", func(t *testing.T) {
		id, err := svc.Authorize(ctx, "Bearer "+pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, domain.Identity{Identifier: "a@x.com"}, id)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		_, err := svc.Authorize(ctx, "bearer "+pair.AccessToken)
		require.NoError(t, err)
	})

	tests := []struct {
		name      string
		presented string
		reason    jwtx.Reason
	}{
		{"empty header", "", jwtx.ReasonMissing},
		{"no scheme", pair.AccessToken, jwtx.ReasonMissing},
		{"basic scheme", "Basic " + pair.AccessToken, jwtx.ReasonMissing},
		{"refresh token", "Bearer " + pair.RefreshToken, jwtx.ReasonWrongDomain},
		{"garbage", "Bearer abc.def.ghi", jwtx.ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authorize(ctx, tt.presented)
			require.ErrorIs(t, err, service.ErrUnauthorized)
			require.Equal(t, tt.reason, service.ReasonOf(err))
		})
	}

	t.Run("expiry boundary", func(t *testing.T) {
		clock.Advance(accessTTL - time.Second)
		_, err := svc.Authorize(ctx, "Bearer "+pair.AccessToken)
		require.NoError(t, err)

		clock.Advance(time.Second)
		_, err = svc.Authorize(ctx, "Bearer "+pair.AccessToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
		require.Equal(t, jwtx.ReasonExpired, service.ReasonOf(err))
	})
}

func TestConcurrentUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for range 32 {
		wg.Go(func() {
			pair, err := svc.Login(ctx, "a@x.com", "ok")
			if err != nil {
				errs <- err
				return
			}
			at, err := svc.Refresh(ctx, pair.RefreshToken)
			if err != nil {
				errs <- err
				return
			}
			if _, err := svc.Authorize(ctx, "Bearer "+at.Token); err != nil {
				errs <- err
			}
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
