package authsdk

// LoginRequest is the body of POST /login. It may be sent as JSON or as an
// application/x-www-form-urlencoded form.
type LoginRequest struct {
	// Identifier is the account's email address
	Identifier string `json:"identifier" validate:"required,email,max=254"`

	// Secret is the account password
	Secret string `json:"secret" validate:"required,max=1024"`
}

// TokenResponse is returned by /login and /refresh. The refresh token is never
// part of it; it travels only in the HttpOnly cookie.
type TokenResponse struct {
	// AccessToken is the signed access-domain JWT
	AccessToken string `json:"accessToken"`

	// TokenType is always "Bearer"
	TokenType string `json:"tokenType"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int `json:"expiresIn"`
}

// ProfileResponse is returned by GET /me.
type ProfileResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
}

// HealthResponse is returned by /livez and /readyz (readyz includes Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency /readyz looks at.
type HealthChecks struct {
	// Database indicates the user store connection status
	Database string `json:"database"`

	// Signer indicates whether both signing domains are configured
	Signer string `json:"signer"`
}
