package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

var errEmptyIdentity = errors.New("service: identity has no identifier")

// TokenService issues, refreshes and checks tokens. It holds no mutable state
// and is safe for concurrent use.
type TokenService struct {
	Codec         *jwtx.Codec
	Authenticator Authenticator
}

// Login authenticates the credential pair and issues a session.
func (s *TokenService) Login(ctx context.Context, identifier, secret string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	identity, err := s.Authenticator.Authenticate(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			l.Info("login rejected")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	pair, err := s.Issue(ctx, identity)
	if err != nil {
		return nil, err
	}

	l.Info("login succeeded", slog.String("sub", identity.Identifier))
	return pair, nil
}

// Issue signs one access and one refresh token for an identity that the
// caller has already authenticated.
func (s *TokenService) Issue(ctx context.Context, identity domain.Identity) (*domain.TokenPair, error) {
	if identity.Identifier == "" {
		return nil, errEmptyIdentity
	}

	claims := jwtx.NewClaims(identity.Identifier)

	access, accessExp, err := s.Codec.Sign(claims, jwtx.DomainAccess)
	if err != nil {
		return nil, fmt.Errorf("service: issue: %w", err)
	}
	refresh, refreshExp, err := s.Codec.Sign(claims, jwtx.DomainRefresh)
	if err != nil {
		return nil, fmt.Errorf("service: issue: %w", err)
	}

	slogx.FromContext(ctx).Debug("session issued",
		slogx.Token("access", access),
		slogx.Token("refresh", refresh),
	)

	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh trades a refresh token for a new access token. The identity is
// taken from the verified claims; the credential store is not consulted.
// The refresh token itself is neither rotated nor reissued.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.AccessToken, error) {
	if refreshToken == "" {
		return nil, s.reject(ctx, jwtx.DomainRefresh, refreshToken, jwtx.ErrMissing)
	}

	claims, err := s.Codec.Verify(refreshToken, jwtx.DomainRefresh)
	if err != nil {
		return nil, s.reject(ctx, jwtx.DomainRefresh, refreshToken, err)
	}

	// Fresh claims so nothing but the subject carries over.
	token, exp, err := s.Codec.Sign(jwtx.NewClaims(claims.Identifier()), jwtx.DomainAccess)
	if err != nil {
		return nil, fmt.Errorf("service: refresh: %w", err)
	}

	slogx.FromContext(ctx).Info("access token refreshed",
		slog.String("sub", claims.Identifier()),
		slogx.Token("refresh", refreshToken),
	)

	return &domain.AccessToken{Token: token, ExpiresAt: exp}, nil
}

// Authorize checks a presented bearer credential, for example the raw value
// of an Authorization header, under the access domain only.
func (s *TokenService) Authorize(ctx context.Context, presented string) (domain.Identity, error) {
	token, err := jwtx.ParseBearer(presented)
	if err != nil {
		return domain.Identity{}, s.reject(ctx, jwtx.DomainAccess, "", err)
	}

	claims, err := s.Codec.Verify(token, jwtx.DomainAccess)
	if err != nil {
		return domain.Identity{}, s.reject(ctx, jwtx.DomainAccess, token, err)
	}

	return domain.Identity{Identifier: claims.Identifier()}, nil
}

// reject logs the real reason and returns the uniform error.
func (s *TokenService) reject(ctx context.Context, d jwtx.Domain, token string, err error) error {
	ue := unauthorized(err)
	slogx.FromContext(ctx).Warn("token rejected",
		slog.String("domain", d.String()),
		slog.String("reason", string(ue.Reason)),
		slogx.Token("token", token),
	)
	return ue
}
