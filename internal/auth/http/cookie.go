package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRefreshCookieName is the cookie that carries the refresh token.
const DefaultRefreshCookieName = "refresh_token"

// CookiePolicy decides where the refresh token travels. It is the only place
// a refresh token is ever written to a response.
type CookiePolicy struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookiePolicy is HttpOnly (always), Secure, SameSite=Strict and
// scoped to the refresh endpoint so browsers never send it anywhere else.
func DefaultCookiePolicy() CookiePolicy {
	return CookiePolicy{
		Name:     DefaultRefreshCookieName,
		Path:     "/refresh",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ParseSameSite maps strict, lax and none to their http.SameSite values.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite mode %q", s)
	}
}

// Set writes the refresh token cookie, living for ttl.
func (p CookiePolicy) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, p.cookie(token, int(ttl/time.Second)))
}

// Clear tells the client to drop the refresh cookie. The token itself stays
// valid until it expires.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, p.cookie("", -1))
}

// Read returns the refresh token from the request, or "".
func (p CookiePolicy) Read(r *http.Request) string {
	c, err := r.Cookie(p.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (p CookiePolicy) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    value,
		Path:     p.Path,
		Domain:   p.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}
