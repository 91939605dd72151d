package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"

	_ "github.com/aussiebroadwan/sessionauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxLoginBody caps /login request bodies.
const maxLoginBody = 16 << 10

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	db           Pinger
	cookies      CookiePolicy
	validate     *validator.Validate

	TokenService   *service.TokenService
	ProfileService ProfileLookup

	// ClientIP keys the per-client rate limits. Defaults to the peer address.
	ClientIP httpx.KeyExtractor
}

func NewRouter(
	buildVersion string,
	db Pinger,
	cookies CookiePolicy,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		db:           db,
		cookies:      cookies,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		ClientIP:     httpx.IPKeyExtractor,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(),
		httpx.RateLimitByClient(httpx.PublicLimit, r.ClientIP),
	))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Session Authentication Service API
//	@version		0.1.0
//	@description	Dual-token session authentication. A short-lived access token is returned in the response body
//	@description	and presented as a Bearer credential. A long-lived refresh token is only ever set as an HttpOnly
//	@description	cookie scoped to /refresh and is exchanged there for new access tokens.
//	@description
//	@description				Both tokens are HS256 JWTs signed with independent secrets.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/sessionauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	// POST /login - strict rate limit per client address (credential guessing)
	login := &LoginHandler{
		TokenService: r.TokenService,
		Cookies:      r.cookies,
		Validate:     r.validate,
	}
	r.Mux.Handle("/login",
		httpx.Chain(login,
			allowMethod(http.MethodPost),
			httpx.RateLimitByClient(httpx.StrictLimit, r.ClientIP),
			httpx.MaxBodyBytes(maxLoginBody),
		),
	)

	refresh := &RefreshHandler{TokenService: r.TokenService, Cookies: r.cookies}
	r.Mux.Handle("/refresh",
		httpx.Chain(refresh,
			allowMethod(http.MethodPost),
			httpx.RateLimitByClient(httpx.ModerateLimit, r.ClientIP),
		),
	)

	r.Mux.Handle("/logout",
		httpx.Chain(LogoutHandler(r.cookies),
			allowMethod(http.MethodPost),
			httpx.RateLimitByClient(httpx.ModerateLimit, r.ClientIP),
		),
	)

	// GET /me - bearer access token, limited per subject
	me := &MeHandler{Profiles: r.ProfileService}
	r.Mux.Handle("/me",
		httpx.Chain(me,
			allowMethod(http.MethodGet),
			httpx.AuthnMiddleware(r.authorizer(), authsdk.ErrInvalidAccessToken),
			httpx.RateLimitBySubject(httpx.LenientLimit, r.ClientIP),
		),
	)
}

func (r *Router) authorizer() httpx.Authorizer {
	return httpx.AuthorizerFunc(func(ctx context.Context, credential string) (string, error) {
		identity, err := r.TokenService.Authorize(ctx, credential)
		if err != nil {
			return "", err
		}
		return identity.Identifier, nil
	})
}

func (r *Router) registerSystem() {
	health := &Health{
		Started: r.startTime,
		Version: r.buildVersion,
		DB:      r.db,
		Signer:  r.TokenService.Codec.Check,
	}

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	for path, h := range map[string]http.HandlerFunc{
		"/livez":  health.Livez,
		"/readyz": health.Readyz,
	} {
		r.Mux.Handle(path,
			httpx.Chain(h,
				allowMethod(http.MethodGet),
				httpx.RateLimitByClient(httpx.LenientLimit, r.ClientIP),
			),
		)
	}
}

// allowMethod answers any other method with the JSON 405 body. The mux's own
// method matching would reply in plain text.
func allowMethod(method string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method && (method != http.MethodGet || r.Method != http.MethodHead) {
				w.Header().Set("Allow", method)
				authsdk.ErrMethodNotAllowed.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
