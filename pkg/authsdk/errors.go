package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// APIError is the {"error": "..."} body the service returns on failure. It is
// used by the server to write responses and by the SDK to report them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Message is the fixed, non-diagnostic error message
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Message)
}

// Is matches on status code and message so a decoded error compares equal to
// the predefined values below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

var (
	// ErrInvalidCredentials is returned by /login for an unknown identifier
	// or a wrong secret. The two cases are indistinguishable.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid credentials",
	}

	// ErrInvalidRefreshToken is returned by /refresh whenever the refresh
	// cookie is missing, malformed, tampered, expired or signed for the
	// wrong domain.
	ErrInvalidRefreshToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid refresh token",
	}

	// ErrInvalidAccessToken is returned by protected endpoints for any bad
	// or absent bearer token.
	ErrInvalidAccessToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid access token",
	}

	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "invalid request",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "method not allowed",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Message:    "rate limit exceeded",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for 2xx.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp httpx.ErrorBody
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
