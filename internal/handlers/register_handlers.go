package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/SscSPs/erp_ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter builds the worker's operational HTTP surface.
func NewRouter(logger *slog.Logger, isProduction bool, check ReadinessCheck, gatherer prometheus.Gatherer) *gin.Engine {
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.StructuredLoggingMiddleware(logger))
	RegisterRoutes(r, check, gatherer)
	return r
}

// RegisterRoutes sets up the health and metrics routes.
func RegisterRoutes(r *gin.Engine, check ReadinessCheck, gatherer prometheus.Gatherer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	h := newHealthHandler(check)
	r.GET("/ready", h.ready)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}
}
