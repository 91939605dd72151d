package domain

import "time"

// TokenPair is what a successful login produces. Both tokens carry the same
// identity; nothing about the pair is stored server side.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccessToken is the result of a refresh: a new access token only.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// Access returns the access half of the pair.
func (p TokenPair) Access() AccessToken {
	return AccessToken{Token: p.AccessToken, ExpiresAt: p.AccessExpiresAt}
}
