package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SscSPs/erp_ledger/internal/handlers"
	"github.com/SscSPs/erp_ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type HealthHandlerTestSuite struct {
	suite.Suite
	registry *prometheus.Registry
	checkErr error
	router   *gin.Engine
}

func (s *HealthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.checkErr = nil
	s.registry = prometheus.NewRegistry()
	rec := metrics.NewRecorder(s.registry)
	rec.GenerationCompleted("success")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = handlers.NewRouter(logger, false, func(context.Context) error { return s.checkErr }, s.registry)
}

func (s *HealthHandlerTestSuite) serve(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HealthHandlerTestSuite) TestHealth() {
	w := s.serve("/health")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *HealthHandlerTestSuite) TestReady() {
	w := s.serve("/ready")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ready")
}

func (s *HealthHandlerTestSuite) TestReady_StoreDown() {
	s.checkErr = errors.New("connection refused")
	w := s.serve("/ready")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "connection refused")
}

func (s *HealthHandlerTestSuite) TestMetrics() {
	w := s.serve("/metrics")
	s.Equal(http.StatusOK, w.Code)
	s.True(strings.Contains(w.Body.String(), `ledger_recurring_generations_total{result="success"} 1`))
}

func TestHealthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HealthHandlerTestSuite))
}
