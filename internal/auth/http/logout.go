package http

import "net/http"

// LogoutHandler godoc
//
//	@Summary		Log out
//	@Description	Expires the refresh_token cookie on the client. Nothing is revoked server side: tokens already
//	@Description	issued stay valid until they expire.
//	@Tags			Session
//	@Success		204
//	@Failure		429	{object}	httpx.ErrorBody	"rate limit exceeded"
//	@Router			/logout [post].
func LogoutHandler(cookies CookiePolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies.Clear(w)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusNoContent)
	}
}
