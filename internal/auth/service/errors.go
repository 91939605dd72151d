package service

import (
	"errors"

	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

var (
	// ErrUnauthorized is the only failure the refresh and access paths expose.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned by Login. It covers both an unknown
	// identifier and a wrong secret.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrProfileNotFound = errors.New("profile_not_found")
	ErrInvalidUser     = errors.New("invalid_user")
)

// UnauthorizedError carries the internal rejection reason for logging. Its
// message is the same whatever the reason.
type UnauthorizedError struct {
	Reason jwtx.Reason
	Err    error
}

func (e *UnauthorizedError) Error() string { return ErrUnauthorized.Error() }

func (e *UnauthorizedError) Unwrap() error { return e.Err }

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

func unauthorized(err error) *UnauthorizedError {
	return &UnauthorizedError{Reason: jwtx.ReasonOf(err), Err: err}
}

// ReasonOf returns the diagnostic tag behind an Unauthorized error, or "" if
// err is not one.
func ReasonOf(err error) jwtx.Reason {
	var ue *UnauthorizedError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return ""
}
