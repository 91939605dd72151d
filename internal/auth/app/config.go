package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	httpapi "github.com/aussiebroadwan/sessionauth/internal/auth/http"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

// Config is everything the service reads from the environment. Signing
// secrets are deliberately absent; see LoadSigningSecrets.
type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 3000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	Issuer     string        // "iss" claim, enforced on verify (default: session-auth)
	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)
	ClockSkew  time.Duration // Tolerance on exp/nbf (default: 0)

	CookieName     string // Refresh cookie name (default: refresh_token)
	CookieDomain   string // Optional cookie Domain attribute
	CookieSecure   bool   // Secure attribute (default: true)
	CookieSameSite string // strict, lax or none (default: strict)

	TrustedProxies string // CIDRs whose X-Forwarded-For is believed (default: none)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)
}

// IsDev reports whether the service runs in the dev environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// LoadDotEnv loads path into the environment when the file exists. Variables
// already set take precedence.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func LoadConfig() Config {
	return Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 3000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		Issuer:     getEnvOrDefault("AUTH_ISSUER", "session-auth"),
		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		ClockSkew:  getEnvDurationOrDefault("AUTH_CLOCK_SKEW", 0),

		CookieName:     getEnvOrDefault("AUTH_COOKIE_NAME", httpapi.DefaultRefreshCookieName),
		CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
		CookieSecure:   getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),
		CookieSameSite: getEnvOrDefault("AUTH_COOKIE_SAMESITE", "strict"),

		TrustedProxies: os.Getenv("AUTH_TRUSTED_PROXIES"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
	}
}

// Validate rejects combinations the service refuses to start with.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_TTL must be positive, got %s", c.AccessTTL))
	}
	if c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, fmt.Errorf("AUTH_REFRESH_TTL %s must exceed AUTH_ACCESS_TTL %s", c.RefreshTTL, c.AccessTTL))
	}
	if c.ClockSkew < 0 {
		errs = append(errs, fmt.Errorf("AUTH_CLOCK_SKEW must not be negative, got %s", c.ClockSkew))
	}
	if strings.TrimSpace(c.CookieName) == "" {
		errs = append(errs, errors.New("AUTH_COOKIE_NAME must not be empty"))
	}

	sameSite, err := httpapi.ParseSameSite(c.CookieSameSite)
	if err != nil {
		errs = append(errs, fmt.Errorf("AUTH_COOKIE_SAMESITE: %w", err))
	}
	if !c.CookieSecure {
		if sameSite == http.SameSiteNoneMode {
			errs = append(errs, errors.New("AUTH_COOKIE_SAMESITE=none requires AUTH_COOKIE_SECURE=true"))
		}
		if !c.IsDev() {
			errs = append(errs, fmt.Errorf("AUTH_COOKIE_SECURE=false is only allowed in dev, ENV is %q", c.Env))
		}
	}

	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_TRUSTED_PROXIES: %w", err))
	}

	return errors.Join(errs...)
}

// CookiePolicy builds the refresh cookie policy. Call Validate first.
func (c Config) CookiePolicy() httpapi.CookiePolicy {
	policy := httpapi.DefaultCookiePolicy()
	policy.Name = c.CookieName
	policy.Domain = c.CookieDomain
	policy.Secure = c.CookieSecure
	if sameSite, err := httpapi.ParseSameSite(c.CookieSameSite); err == nil {
		policy.SameSite = sameSite
	}
	return policy
}

// ClientIP resolves the address rate limits are keyed on. Without trusted
// proxies it is the peer address. Call Validate first.
func (c Config) ClientIP() httpx.KeyExtractor {
	proxies, err := httpx.ParseTrustedProxies(c.TrustedProxies)
	if err != nil || len(proxies) == 0 {
		return httpx.IPKeyExtractor
	}
	return proxies.ClientIP
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
