package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.GET("/hello", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("from request context")
		middleware.GetLoggerFromContext(c).Info("from gin context")
		c.Status(http.StatusNoContent)
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		out = append(out, rec)
	}
	return out
}

func TestStructuredLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, "req-42", l["request_id"])
		assert.Equal(t, "/hello", l["path"])
	}
	assert.Equal(t, "Request completed", lines[2]["msg"])
	assert.Equal(t, "INFO", lines[2]["level"])
}

func TestStructuredLoggingMiddleware_GeneratesIDAndErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.EqualValues(t, http.StatusInternalServerError, lines[0]["status"])
}

func TestGetLoggerFromContext_Default(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, slog.Default(), middleware.GetLoggerFromContext(c))
}
