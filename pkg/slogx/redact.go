package slogx

import (
	"log/slog"

	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
)

// Token logs a credential as a short fingerprint so two log lines about the
// same token can be correlated without the token itself being recoverable.
func Token(key, raw string) slog.Attr {
	if raw == "" {
		return slog.String(key, "")
	}
	return slog.String(key, "fp:"+cryptox.FingerprintToken(raw)[:12])
}
