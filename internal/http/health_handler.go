package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger es satisfecho por *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	logger *zap.Logger
	db     Pinger
}

func NewHealthHandler(logger *zap.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

// Check maneja GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
