package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"anime-api/pkg/logger"
	"anime-api/pkg/response"
)

const healthMessage = "Simple CRUD API for anime records with Go, Gin and PostgreSQL"

// HealthChecker returns a fixed success envelope. Used for liveness probing only.
func (h *Handler) HealthChecker(c *gin.Context) {
	response.Message(c, http.StatusOK, healthMessage)
}

// Ready returns 200 if every dependency answers a ping within 2s.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for name, dep := range h.deps {
		if err := dep.PingContext(ctx); err != nil {
			logger.Warn(ctx, "Readiness check failed", "dependency", name, "error", err)
			response.ErrorWithCode(c, http.StatusServiceUnavailable, fmt.Errorf("%s unavailable: %w", name, err))
			return
		}
	}
	response.Message(c, http.StatusOK, "ready")
}
