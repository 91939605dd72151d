package authsdk

import (
	"context"
	"net/http"
)

// Probe selects a health endpoint.
type Probe string

const (
	Liveness  Probe = "/livez"
	Readiness Probe = "/readyz"
)

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.Health(ctx, Liveness)
}

// GetReadiness checks if the service can serve logins.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.Health(ctx, Readiness)
}

// Health queries probe. A degraded readiness answer still decodes its body:
// the report is returned together with an *APIError carrying the 503.
func (c *SDKClient) Health(ctx context.Context, probe Probe) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, string(probe), nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if resp.StatusCode == http.StatusServiceUnavailable {
		if err := decodeJSON(resp, &health, http.StatusServiceUnavailable); err != nil {
			return nil, err
		}
		return &health, &APIError{StatusCode: resp.StatusCode, Message: health.Status}
	}

	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
