package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// HealthChecker provides health check functionality for the provider chain
type HealthChecker struct {
	providers []outbound.LLMProvider
	timeout   time.Duration
	logger    *zap.Logger
}

// HealthStatus represents the health status of the providers
type HealthStatus struct {
	Overall   string            `json:"overall"`
	Providers map[string]bool   `json:"providers"`
	Details   map[string]string `json:"details"`
	LastCheck time.Time         `json:"last_check"`
}

// NewHealthChecker creates a new AI health checker
func NewHealthChecker(providers []outbound.LLMProvider, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		providers: providers,
		timeout:   10 * time.Second,
		logger:    logger.Named("ai-health"),
	}
}

// CheckHealth checks every provider. Overall is "healthy" when all answer,
// "degraded" when some do and "critical" when none do.
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Providers: make(map[string]bool, len(h.providers)),
		Details:   make(map[string]string, len(h.providers)),
		LastCheck: time.Now(),
	}

	healthy := 0
	for _, p := range h.providers {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := p.HealthCheck(checkCtx)
		cancel()

		if err != nil {
			status.Providers[p.Name()] = false
			status.Details[p.Name()] = "Unhealthy: " + err.Error()
			h.logger.Warn("Provider health check failed", zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		status.Providers[p.Name()] = true
		status.Details[p.Name()] = "Healthy"
		healthy++
	}

	switch {
	case healthy == 0:
		status.Overall = "critical"
	case healthy < len(h.providers):
		status.Overall = "degraded"
	default:
		status.Overall = "healthy"
	}

	h.logger.Debug("AI health check completed",
		zap.String("overall_status", status.Overall),
		zap.Int("healthy_providers", healthy),
		zap.Int("total_providers", len(h.providers)))

	return status
}
