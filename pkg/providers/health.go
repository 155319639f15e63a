package providers

import (
	"log/slog"
	"time"
)

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns detailed health information.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// RecordCheck records the outcome of a health check.
func (p *HTTPProvider) RecordCheck(err error) {
	p.updateHealth(err == nil, err)
}

// recordRequest records request counters and health together.
func (p *HTTPProvider) recordRequest(success bool, err error) {
	p.healthMu.Lock()
	p.health.TotalRequests++
	if !success {
		p.health.FailedRequests++
	}
	p.healthMu.Unlock()

	p.updateHealth(success, err)
}

// updateHealth updates the provider's health status. Upstream HTTP errors
// count as reachable; only transport failures count against health.
func (p *HTTPProvider) updateHealth(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	now := time.Now()
	p.health.LastCheck = now

	if success {
		if !p.health.IsHealthy {
			slog.Info("provider marked healthy",
				"provider", p.config.Name,
				"previous_failures", p.health.ConsecutiveFailures,
			)
		}
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = now
		return
	}

	p.health.ConsecutiveFailures++
	p.health.LastError = err

	if p.health.ConsecutiveFailures >= UnhealthyThreshold && p.health.IsHealthy {
		p.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", p.config.Name,
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}
