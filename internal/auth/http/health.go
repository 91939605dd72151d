package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Pinger is the part of store.Store readiness needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SignerCheck reports whether tokens can currently be minted and verified.
type SignerCheck func() error

// Health serves the liveness and readiness probes.
type Health struct {
	Started time.Time
	Version string
	DB      Pinger
	Signer  SignerCheck
}

func (h *Health) response(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.Started).Round(time.Second).String(),
		Version: h.Version,
		Checks:  checks,
	}
}

// Livez godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *Health) Livez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.response("ok", nil))
}

// Readyz godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the database and the token signer
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func (h *Health) Readyz(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())
	checks := &authsdk.HealthChecks{Database: "ok", Signer: "ok"}
	ready := true

	if err := h.DB.Ping(r.Context()); err != nil {
		log.Warn("readiness: database check failed", "err", err)
		checks.Database = "error: unreachable"
		ready = false
	}

	// Error text is not echoed; it can mention key sizes.
	if err := h.Signer(); err != nil {
		log.Warn("readiness: signer check failed", "err", err)
		checks.Signer = "error: signer unavailable"
		ready = false
	}

	if !ready {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, h.response("degraded", checks))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.response("ok", checks))
}
