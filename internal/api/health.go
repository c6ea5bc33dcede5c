package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db      HealthChecker
	timeout time.Duration
	logger  *slog.Logger
}

func NewHealthHandler(db HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Health pings the database. It answers 503 while the store is unreachable
// so that load balancers stop routing to the instance.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK
	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Error = "database unavailable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}
