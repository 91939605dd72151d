package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// LoginHandler serves POST /login.
type LoginHandler struct {
	TokenService *service.TokenService
	Cookies      CookiePolicy
	Validate     *validator.Validate
}

// loginBody also accepts email/password, the field names older clients send.
type loginBody struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (b loginBody) request() authsdk.LoginRequest {
	req := authsdk.LoginRequest{Identifier: b.Identifier, Secret: b.Secret}
	if req.Identifier == "" {
		req.Identifier = b.Email
	}
	if req.Secret == "" {
		req.Secret = b.Password
	}
	return req
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Authenticates the credential pair. The access token is returned in the body; the refresh token is set
//	@Description	only as an HttpOnly, Secure, SameSite=Strict cookie scoped to /refresh and never appears in JSON.
//	@Tags			Session
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"identifier and secret"
//	@Success		200		{object}	authsdk.TokenResponse	"accessToken, tokenType, expiresIn"
//	@Failure		400		{object}	httpx.ErrorBody			"invalid request"
//	@Failure		401		{object}	httpx.ErrorBody			"invalid credentials"
//	@Failure		429		{object}	httpx.ErrorBody			"rate limit exceeded"
//	@Failure		500		{object}	httpx.ErrorBody			"server error"
//	@Header			200		{string}	Set-Cookie				"refresh_token=...; Path=/refresh; HttpOnly; Secure; SameSite=Strict"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	body, ok := decodeLogin(r)
	if !ok {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	req := body.request()
	if err := h.Validate.Struct(req); err != nil {
		log.Debug("login request failed validation", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Login(ctx, req.Identifier, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	h.Cookies.Set(w, pair.RefreshToken, h.TokenService.Codec.TTL(jwtx.DomainRefresh))
	writeAccessToken(w, pair.AccessToken, h.TokenService.Codec)
}

// decodeLogin reads a JSON body or a urlencoded form.
func decodeLogin(r *http.Request) (loginBody, bool) {
	var body loginBody

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return body, false
		}
		body.Identifier = r.PostForm.Get("identifier")
		body.Secret = r.PostForm.Get("secret")
		body.Email = r.PostForm.Get("email")
		body.Password = r.PostForm.Get("password")
		return body, true
	default:
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return body, false
		}
		return body, true
	}
}

// writeAccessToken renders the body shared by /login and /refresh.
func writeAccessToken(w http.ResponseWriter, token string, codec *jwtx.Codec) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(codec.TTL(jwtx.DomainAccess).Seconds()),
	})
}
