package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// ProfileLookup is satisfied by service.ProfileService.
type ProfileLookup interface {
	LookupProfile(ctx context.Context, identity domain.Identity) (domain.Profile, error)
}

// MeHandler serves GET /me behind AuthnMiddleware.
type MeHandler struct {
	Profiles ProfileLookup
}

// ServeHTTP godoc
//
//	@Summary		Current profile
//	@Description	Returns the profile of the account the access token was issued to.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"email, name, age"
//	@Failure		401	{object}	httpx.ErrorBody			"invalid access token"
//	@Failure		429	{object}	httpx.ErrorBody			"rate limit exceeded"
//	@Failure		500	{object}	httpx.ErrorBody			"server error"
//	@Router			/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidAccessToken.WriteError(w)
		return
	}

	profile, err := h.Profiles.LookupProfile(ctx, domain.Identity{Identifier: subject})
	if err != nil {
		// The token is genuine but the account is gone.
		if errors.Is(err, service.ErrProfileNotFound) {
			log.Warn("profile not found for valid token")
			authsdk.ErrInvalidAccessToken.WriteError(w)
			return
		}
		log.Error("failed to load profile", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Email: profile.Email,
		Name:  profile.Name,
		Age:   profile.Age,
	})
}
