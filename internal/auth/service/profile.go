package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
)

// ProfileService is the lookupProfile collaborator behind GET /me.
type ProfileService struct {
	Store store.Store
}

func (s *ProfileService) LookupProfile(ctx context.Context, identity domain.Identity) (domain.Profile, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, identity.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("service: lookup profile: %w", err)
	}
	return user.Profile(), nil
}
