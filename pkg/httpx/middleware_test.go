package httpx_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("a"), tag("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestMaxBodyBytes(t *testing.T) {
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), httpx.MaxBodyBytes(8))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too long for the cap")))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type denyWriter struct{}

func (denyWriter) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "invalid access token")
}

func TestAuthnMiddleware(t *testing.T) {
	authz := httpx.AuthorizerFunc(func(_ context.Context, credential string) (string, error) {
		if credential == "Bearer good" {
			return "alice@example.com", nil
		}
		return "", errors.New("nope")
	})

	var seen string
	h := httpx.AuthnMiddleware(authz, denyWriter{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httpx.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "alice@example.com", seen)
		require.Empty(t, rec.Header().Get("WWW-Authenticate"))
	})

	for _, header := range []string{"", "Bearer bad", "Basic Zm9vOmJhcg=="} {
		t.Run("rejected "+header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.JSONEq(t, `{"error":"invalid access token"}`, rec.Body.String())
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), `Bearer error="invalid_token"`)
			require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestSubjectFromContext(t *testing.T) {
	_, ok := httpx.SubjectFromContext(context.Background())
	require.False(t, ok)

	_, ok = httpx.SubjectFromContext(httpx.ContextWithSubject(context.Background(), ""))
	require.False(t, ok)

	sub, ok := httpx.SubjectFromContext(httpx.ContextWithSubject(context.Background(), "alice@example.com"))
	require.True(t, ok)
	require.Equal(t, "alice@example.com", sub)
}
