package app

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "app-test-access-secret-0123456789abcdef"
	testRefreshSecret = "app-test-refresh-secret-0123456789abcdef"
)

func clearSecretEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUTH_ACCESS_SECRET", "AUTH_ACCESS_SECRET_FILE",
		"AUTH_REFRESH_SECRET", "AUTH_REFRESH_SECRET_FILE",
	} {
		t.Setenv(key, "")
	}
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestLoadSigningSecretsFromEnv(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("AUTH_ACCESS_SECRET", testAccessSecret)
	t.Setenv("AUTH_REFRESH_SECRET", testRefreshSecret)

	logger, logs := captureLogger()
	secrets, err := LoadSigningSecrets(validConfig(), logger)
	require.NoError(t, err)
	require.Equal(t, []byte(testAccessSecret), secrets.Access)
	require.Equal(t, []byte(testRefreshSecret), secrets.Refresh)

	require.Contains(t, logs.String(), "source=env")
	require.NotContains(t, logs.String(), testAccessSecret)
	require.NotContains(t, logs.String(), testRefreshSecret)
}

func TestLoadSigningSecretsFileWins(t *testing.T) {
	clearSecretEnv(t)

	path := filepath.Join(t.TempDir(), "access.key")
	fromFile := "from-file-secret-0123456789abcdefghijkl"
	require.NoError(t, os.WriteFile(path, []byte(fromFile+"\n"), 0o600))

	t.Setenv("AUTH_ACCESS_SECRET_FILE", path)
	t.Setenv("AUTH_ACCESS_SECRET", testAccessSecret)
	t.Setenv("AUTH_REFRESH_SECRET", testRefreshSecret)

	logger, logs := captureLogger()
	secrets, err := LoadSigningSecrets(validConfig(), logger)
	require.NoError(t, err)
	require.Equal(t, []byte(fromFile), secrets.Access, "trailing newline is trimmed")
	require.Contains(t, logs.String(), "source=file")
	require.NotContains(t, logs.String(), fromFile)
}

func TestLoadSigningSecretsMissing(t *testing.T) {
	clearSecretEnv(t)
	logger, _ := captureLogger()

	t.Run("fatal outside dev", func(t *testing.T) {
		_, err := LoadSigningSecrets(validConfig(), logger)
		require.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("ephemeral in dev", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "dev"

		logger, logs := captureLogger()
		secrets, err := LoadSigningSecrets(cfg, logger)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(secrets.Access), 32)
		require.GreaterOrEqual(t, len(secrets.Refresh), 32)
		require.NotEqual(t, secrets.Access, secrets.Refresh)
		require.Equal(t, 2, strings.Count(logs.String(), "source=ephemeral"))
		require.NotContains(t, logs.String(), string(secrets.Access))
	})
}

func TestLoadSigningSecretsRejects(t *testing.T) {
	logger, _ := captureLogger()

	t.Run("short secret", func(t *testing.T) {
		clearSecretEnv(t)
		t.Setenv("AUTH_ACCESS_SECRET", "too-short")
		t.Setenv("AUTH_REFRESH_SECRET", testRefreshSecret)

		_, err := LoadSigningSecrets(validConfig(), logger)
		require.ErrorContains(t, err, "shorter than")
	})

	t.Run("unreadable file", func(t *testing.T) {
		clearSecretEnv(t)
		t.Setenv("AUTH_ACCESS_SECRET_FILE", filepath.Join(t.TempDir(), "nope"))

		_, err := LoadSigningSecrets(validConfig(), logger)
		require.ErrorContains(t, err, "AUTH_ACCESS_SECRET_FILE")
	})

	t.Run("empty file", func(t *testing.T) {
		clearSecretEnv(t)
		path := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
		t.Setenv("AUTH_ACCESS_SECRET_FILE", path)

		_, err := LoadSigningSecrets(validConfig(), logger)
		require.ErrorContains(t, err, "empty file")
	})
}
