package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Authorizer turns a raw Authorization header value into the authenticated
// subject. Implementations must not distinguish failure reasons in the error
// they return to this package's callers.
type Authorizer interface {
	Authorize(ctx context.Context, credential string) (subject string, err error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, credential string) (string, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, credential string) (string, error) {
	return f(ctx, credential)
}

// ErrorWriter renders a rejection body.
type ErrorWriter interface {
	WriteError(w http.ResponseWriter)
}

// AuthnMiddleware admits requests whose Authorization header is accepted by
// a. Every rejection gets the same RFC 6750 challenge and the body written by
// deny, whatever the underlying reason.
func AuthnMiddleware(a Authorizer, deny ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			subject, err := a.Authorize(ctx, r.Header.Get("Authorization"))
			if err != nil {
				writeBearerChallenge(w)
				deny.WriteError(w)
				return
			}

			ctx = ContextWithSubject(ctx, subject)
			ctx = slogx.With(ctx, "sub", subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 section 3. The description is fixed so it leaks nothing.
func writeBearerChallenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="the access token is invalid"`)
}
