package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether the backing store can serve requests.
type ReadinessCheck func(ctx context.Context) error

const readyTimeout = 2 * time.Second

type healthHandler struct {
	check ReadinessCheck
}

func newHealthHandler(check ReadinessCheck) *healthHandler {
	return &healthHandler{check: check}
}

func (h *healthHandler) ready(c *gin.Context) {
	if h.check == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if err := h.check(ctx); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Readiness check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
