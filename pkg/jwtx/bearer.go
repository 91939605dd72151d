package jwtx

import "strings"

// ParseBearer extracts the token from an RFC 6750 credential such as an
// Authorization header or gRPC "authorization" metadata value. The scheme is
// matched case-insensitively. Any other shape yields ErrMissing.
func ParseBearer(value string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissing
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissing
	}
	return token, nil
}
