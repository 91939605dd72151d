package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// RefreshHandler serves POST /refresh. The refresh token is read from the
// cookie only; a token in the body or a header is ignored.
type RefreshHandler struct {
	TokenService *service.TokenService
	Cookies      CookiePolicy
}

// ServeHTTP godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges the refresh_token cookie for a new access token. The refresh token is not rotated.
//	@Description	Every failure returns the same body; the cookie is left untouched.
//	@Tags			Session
//	@Produce		json
//	@Param			refresh_token	cookie		string					true	"refresh token set by /login"
//	@Success		200				{object}	authsdk.TokenResponse	"accessToken, tokenType, expiresIn"
//	@Failure		401				{object}	httpx.ErrorBody			"invalid refresh token"
//	@Failure		429				{object}	httpx.ErrorBody			"rate limit exceeded"
//	@Failure		500				{object}	httpx.ErrorBody			"server error"
//	@Router			/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	at, err := h.TokenService.Refresh(ctx, h.Cookies.Read(r))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			authsdk.ErrInvalidRefreshToken.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	writeAccessToken(w, at.Token, h.TokenService.Codec)
}
