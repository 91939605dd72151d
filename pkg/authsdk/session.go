package authsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// expiryBuffer is how long before the access token expires the Session
// proactively refreshes.
const expiryBuffer = 30 * time.Second

// ErrLoggedOut is returned by Session calls made after Logout.
var ErrLoggedOut = errors.New("authsdk: session logged out")

// Session holds an access token and refreshes it through the client's cookie
// jar when needed.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
	loggedOut   bool

	now func() time.Time
}

func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	s := &Session{client: client, now: time.Now}
	s.store(tokenResp)
	return s
}

// store must be called with mu held for writing, or before s is shared.
func (s *Session) store(tokenResp *TokenResponse) {
	s.accessToken = tokenResp.AccessToken
	s.expiresAt = s.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - expiryBuffer)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// ExpiresAt is when the Session will next refresh on its own.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// getValidToken returns a usable access token, refreshing it first if it is
// close to expiry.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.loggedOut {
		s.mu.RUnlock()
		return "", ErrLoggedOut
	}
	if s.now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	stale := s.accessToken
	s.mu.RUnlock()

	return s.refreshIfStale(ctx, stale)
}

// refreshIfStale refreshes unless another goroutine already replaced stale.
func (s *Session) refreshIfStale(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedOut {
		return "", ErrLoggedOut
	}
	if s.accessToken != stale {
		return s.accessToken, nil
	}

	tokenResp, err := s.client.Refresh(ctx)
	if err != nil {
		return "", err
	}

	s.store(tokenResp)
	return s.accessToken, nil
}

// Refresh forces a new access token regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.refreshIfStale(ctx, s.AccessToken())
	return err
}

// Me returns the profile of the logged-in account.
func (s *Session) Me(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var profile ProfileResponse
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout asks the server to expire the refresh cookie and forgets the access
// token. Tokens already issued stay valid until they expire.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/logout", nil, nil)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.loggedOut = true
	s.mu.Unlock()
	return nil
}
