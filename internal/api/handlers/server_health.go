package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventforge.io/eventforge/internal/api/middleware"
)

// Health status values.
const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// HealthView is the probe response body.
type HealthView struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthView{Status: healthOK})
}

// GetReadiness handles GET /health/ready.
func (s *Server) GetReadiness(c *gin.Context) {
	checks := make(map[string]string)
	status := healthOK
	httpStatus := http.StatusOK

	if err := s.store.Ping(c.Request.Context()); err != nil {
		middleware.RequestLogger(c.Request.Context()).Warn("Readiness check failed", zap.Error(err))
		checks["store"] = "error"
		status = healthDegraded
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	c.JSON(httpStatus, HealthView{Status: status, Checks: checks})
}
