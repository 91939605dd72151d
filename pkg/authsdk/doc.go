/*
Package authsdk is a Go client for the session authentication service.

# Overview

The service hands out two tokens on login. The short-lived access token is
returned in the JSON body and sent back as an Authorization: Bearer header.
The long-lived refresh token is only ever carried in an HttpOnly cookie scoped
to /refresh, so the SDK never sees it: an http.CookieJar holds it.

# SDKClient vs Session

  - SDKClient: unauthenticated calls (health probes) and Login
  - Session: calls that need an access token, with automatic refresh

	client := authsdk.NewSDKClient("https://auth.example.com")

	health, err := client.GetReadiness(ctx)

	session, err := client.Login(ctx, "alice@example.com", "correct horse")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong identifier or secret
	}

	profile, err := session.Me(ctx)

# Automatic Token Refresh

Before each authenticated call the Session checks whether its access token is
within 30 seconds of expiry. If so it calls POST /refresh, which succeeds as
long as the refresh cookie in the jar is still valid. A 401 from a protected
endpoint also triggers one refresh and a retry.

Once the refresh token itself has expired every call returns
ErrInvalidRefreshToken and the caller must Login again.

# Cookies and TLS

The refresh cookie is marked Secure, so the jar only replays it over https.
Point the client at an https base URL, or use NewSDKClientWithHTTP with a
client that trusts the server's certificate.

# Errors

Every non-2xx response is decoded into an *APIError. The predefined values
(ErrInvalidCredentials, ErrInvalidAccessToken, ErrInvalidRefreshToken,
ErrInvalidRequest, ErrRateLimited, ErrServerError) match with errors.Is.

# Thread Safety

Sessions are safe for concurrent use. Concurrent refreshes are collapsed so
only one request hits /refresh at a time.
*/
package authsdk
