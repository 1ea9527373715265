package database

import (
	"context"
	"log/slog"
	"time"
)

// Health statuses reported by the diagnostics reporter.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ContainerHealth is the probe result for one container.
type ContainerHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// HealthStatus aggregates connection and per-container health.
type HealthStatus struct {
	Status       string                     `json:"status"`
	ResponseTime int64                      `json:"response_time_ms"`
	Details      string                     `json:"details,omitempty"`
	Containers   map[string]ContainerHealth `json:"containers"`
}

// Health verifies the store connection and every known container. It never
// returns an error; all failure detail is captured in the result. When
// diagnostics are enabled, slow probes and failed checks emit a diagnostic
// log event.
func (c *Client) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	result := &HealthStatus{
		Status:     StatusHealthy,
		Containers: make(map[string]ContainerHealth, len(KnownContainers)),
	}

	if err := c.backend.Ping(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Details = err.Error()
		result.ResponseTime = time.Since(start).Milliseconds()
		c.diagnose("store ping failed", "error", err)
		return result
	}

	for _, name := range KnownContainers {
		probeStart := time.Now()
		ch := ContainerHealth{Status: StatusHealthy}
		if err := c.backend.ContainerExists(ctx, name); err != nil {
			ch.Status = StatusUnhealthy
			ch.Error = err.Error()
			result.Status = StatusUnhealthy
			c.diagnose("container check failed", "container", name, "error", err)
		}
		ch.ResponseTime = time.Since(probeStart).Milliseconds()
		result.Containers[name] = ch
	}

	result.ResponseTime = time.Since(start).Milliseconds()
	if d := time.Since(start); d > c.cfg.LatencyThreshold && c.cfg.LatencyThreshold > 0 {
		c.diagnose("health check exceeded latency threshold",
			"latency_ms", d.Milliseconds(),
			"threshold_ms", c.cfg.LatencyThreshold.Milliseconds())
	}
	return result
}

func (c *Client) diagnose(msg string, args ...any) {
	if c.cfg.DiagnosticsEnabled {
		slog.Warn(msg, args...)
	}
}
