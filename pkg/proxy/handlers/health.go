package handlers

import (
	"net/http"

	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/proxy"
)

// UpstreamHealthResponse is the body of the upstream health endpoint.
type UpstreamHealthResponse struct {
	Provider            string `json:"provider"`
	Healthy             bool   `json:"healthy"`
	LastCheck           int64  `json:"last_check,omitempty"`
	LastError           string `json:"last_error,omitempty"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	TotalRequests       int64  `json:"total_requests"`
	FailedRequests      int64  `json:"failed_requests"`
}

// UpstreamHealthHandler reports the provider's passive health: the state
// derived from recent relay calls and probes. It never calls the upstream.
type UpstreamHealthHandler struct {
	provider providers.Provider
}

// NewUpstreamHealthHandler creates an upstream health handler.
func NewUpstreamHealthHandler(p providers.Provider) *UpstreamHealthHandler {
	return &UpstreamHealthHandler{provider: p}
}

// ServeHTTP implements http.Handler.
func (h *UpstreamHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		_ = proxy.WriteError(w, proxy.NewMethodNotAllowed())
		return
	}

	health := h.provider.GetHealth()
	resp := UpstreamHealthResponse{
		Provider:            h.provider.GetName(),
		Healthy:             health.IsHealthy,
		ConsecutiveFailures: health.ConsecutiveFailures,
		TotalRequests:       health.TotalRequests,
		FailedRequests:      health.FailedRequests,
	}
	if !health.LastCheck.IsZero() {
		resp.LastCheck = health.LastCheck.Unix()
	}
	if health.LastError != nil {
		resp.LastError = health.LastError.Error()
	}

	status := http.StatusOK
	if !health.IsHealthy {
		status = http.StatusServiceUnavailable
	}
	_ = proxy.WriteJSONResponse(w, status, resp)
}
