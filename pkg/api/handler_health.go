package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/version"
)

// healthHandler reports store connectivity and per-container reachability.
// Degraded backends answer 503 so load balancers can rotate the instance out.
func (s *Server) healthHandler(c *gin.Context) {
	health := s.client.Health(c.Request.Context())

	checks := make(map[string]HealthCheck, len(health.Containers)+1)
	checks["store"] = HealthCheck{Status: health.Status, Message: health.Details}
	for name, ch := range health.Containers {
		checks["container:"+name] = HealthCheck{Status: ch.Status, Message: ch.Error}
	}

	code := http.StatusOK
	if health.Status != database.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{
		Status:  health.Status,
		Version: version.Full(),
		Checks:  checks,
	})
}
