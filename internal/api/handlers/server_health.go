package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// Health status values.
const (
	HealthStatusOk       = "ok"
	HealthStatusDegraded = "degraded"
)

// Health is the probe response body.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetLiveness handles GET /health/live, the Kubernetes liveness probe.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, Health{Status: HealthStatusOk})
}

// GetReadiness handles GET /health/ready, the Kubernetes readiness probe.
func (s *Server) GetReadiness(c *gin.Context) {
	checks := make(map[string]string)
	allHealthy := true

	if s.database != nil {
		if err := s.database.Ping(c.Request.Context()); err != nil {
			logger.Warn("readiness: database ping failed", zap.Error(err))
			checks["database"] = "error"
			allHealthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if err := s.store.Ping(c.Request.Context()); err != nil {
		logger.Warn("readiness: matrix store unavailable", zap.Error(err))
		checks["matrix"] = "error"
		allHealthy = false
	} else {
		checks["matrix"] = "ok"
	}

	status := HealthStatusOk
	httpStatus := http.StatusOK
	if !allHealthy {
		status = HealthStatusDegraded
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, Health{
		Status: status,
		Checks: checks,
	})
}
