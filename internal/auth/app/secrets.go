package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

// SecretSource records where a signing secret came from. It is the only
// thing about a secret that is ever logged.
type SecretSource string

const (
	SecretFromFile  SecretSource = "file"
	SecretFromEnv   SecretSource = "env"
	SecretEphemeral SecretSource = "ephemeral"
)

var ErrMissingSecret = errors.New("signing secret not configured")

// SigningSecrets holds the per-domain HS256 keys.
type SigningSecrets struct {
	Access  []byte
	Refresh []byte
}

type secretVars struct {
	domain  jwtx.Domain
	env     string
	envFile string
}

var (
	accessSecretVars  = secretVars{domain: jwtx.DomainAccess, env: "AUTH_ACCESS_SECRET", envFile: "AUTH_ACCESS_SECRET_FILE"}
	refreshSecretVars = secretVars{domain: jwtx.DomainRefresh, env: "AUTH_REFRESH_SECRET", envFile: "AUTH_REFRESH_SECRET_FILE"}
)

// LoadSigningSecrets reads both secrets once at startup. A *_FILE path wins
// over the plain variable. Outside dev a missing secret is fatal; in dev a
// random one is generated, which invalidates every token on restart.
func LoadSigningSecrets(cfg Config, logger *slog.Logger) (SigningSecrets, error) {
	access, err := loadSecret(accessSecretVars, cfg.IsDev(), logger)
	if err != nil {
		return SigningSecrets{}, err
	}
	refresh, err := loadSecret(refreshSecretVars, cfg.IsDev(), logger)
	if err != nil {
		return SigningSecrets{}, err
	}
	return SigningSecrets{Access: access, Refresh: refresh}, nil
}

func loadSecret(v secretVars, dev bool, logger *slog.Logger) ([]byte, error) {
	secret, source, err := readSecret(v)
	if err != nil {
		return nil, err
	}

	if secret == nil {
		if !dev {
			return nil, fmt.Errorf("%w: set %s or %s", ErrMissingSecret, v.envFile, v.env)
		}
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("generate %s secret: %w", v.domain, err)
		}
		secret, source = []byte(token), SecretEphemeral
		logger.Warn("using ephemeral signing secret; tokens will not survive a restart", "domain", v.domain)
	}

	if len(secret) < jwtx.MinSecretLength {
		return nil, fmt.Errorf("%s secret from %s is shorter than %d bytes", v.domain, source, jwtx.MinSecretLength)
	}

	logger.Info("signing secret loaded", "domain", v.domain, "source", source)
	return secret, nil
}

// readSecret returns a nil secret when neither variable is set.
func readSecret(v secretVars) ([]byte, SecretSource, error) {
	if path := os.Getenv(v.envFile); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, SecretFromFile, fmt.Errorf("read %s: %w", v.envFile, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return nil, SecretFromFile, fmt.Errorf("%s points at an empty file", v.envFile)
		}
		return []byte(secret), SecretFromFile, nil
	}

	if value := strings.TrimSpace(os.Getenv(v.env)); value != "" {
		return []byte(value), SecretFromEnv, nil
	}

	return nil, "", nil
}
