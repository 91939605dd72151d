package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// SDKClient talks to the session authentication service. Its HTTP client
// always carries a cookie jar, which is where the refresh token lives.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a fresh cookie jar and a 10s timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return NewSDKClientWithHTTP(baseURL, &http.Client{Timeout: 10 * time.Second})
}

// NewSDKClientWithHTTP uses a copy of hc. If hc has no jar one is added.
func NewSDKClientWithHTTP(baseURL string, hc *http.Client) *SDKClient {
	c := *hc
	if c.Jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList option.
		jar, _ := cookiejar.New(nil)
		c.Jar = jar
	}

	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &c,
	}
}

// Login exchanges credentials for a Session. The refresh cookie set by the
// server is stored in the client's jar.
func (c *SDKClient) Login(ctx context.Context, identifier, secret string) (*Session, error) {
	body, err := json.Marshal(LoginRequest{Identifier: identifier, Secret: secret})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/login", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, &tokenResp), nil
}

// Refresh calls POST /refresh using whatever refresh cookie the jar holds.
// Most callers should let Session handle this.
func (c *SDKClient) Refresh(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/refresh", nil, nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Resume builds a Session from the jar's refresh cookie alone, for example
// after the process restarted with a persisted jar.
func (c *SDKClient) Resume(ctx context.Context) (*Session, error) {
	tokenResp, err := c.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}
