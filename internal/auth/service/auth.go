package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
)

// Authenticator checks a credential pair. The token core treats it as opaque.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (domain.Identity, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, identifier, secret string) (domain.Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, identifier, secret string) (domain.Identity, error) {
	return f(ctx, identifier, secret)
}

// StoreAuthenticator verifies secrets against argon2 hashes in the user store.
type StoreAuthenticator struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// Authenticate returns ErrInvalidCredentials for an unknown identifier or a
// wrong secret. An unknown identifier still pays for one hash verification so
// the two cases take about the same time.
func (a *StoreAuthenticator) Authenticate(ctx context.Context, identifier, secret string) (domain.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return domain.Identity{}, ErrInvalidCredentials
	}

	user, err := a.Store.Users().GetUserByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = a.Hasher.Verify(secret, a.dummy())
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("service: load user: %w", err)
	}

	if err := a.Hasher.Verify(secret, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("service: verify password: %w", err)
	}

	return user.Identity(), nil
}

func (a *StoreAuthenticator) dummy() string {
	a.dummyOnce.Do(func() {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			pw = "unused-dummy-password"
		}
		a.dummyHash, _ = a.Hasher.Hash(pw)
	})
	return a.dummyHash
}
