package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gw-dashboard-api/internal/handler"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	"github.com/noah-isme/gw-dashboard-api/pkg/config"
)

func testRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerRoutes(r, cfg, routeHandlers{
		metrics:    handler.NewMetricsHandler(service.NewMetricsService(), nil),
		sessions:   handler.NewSessionHandler(nil, 0),
		exports:    handler.NewExportHandler(nil),
		calculator: handler.NewCalculatorHandler(nil),
	})
	return r
}

func routeSet(r *gin.Engine) map[string]bool {
	set := map[string]bool{}
	for _, route := range r.Routes() {
		set[route.Method+" "+route.Path] = true
	}
	return set
}

func TestRegisterRoutesLayout(t *testing.T) {
	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
	cfg.Metrics.Enabled = true
	routes := routeSet(testRouter(cfg))

	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"GET /docs/*any",
		"GET /api/v1/screens",
		"POST /api/v1/screens/:screen/sessions",
		"GET /api/v1/sessions/:id",
		"POST /api/v1/sessions/:id/query",
		"POST /api/v1/sessions/:id/export",
		"POST /api/v1/sessions/:id/exports",
		"GET /api/v1/exports/download/:token",
		"GET /api/v1/exports/:jobId",
		"GET /api/v1/calculator/defaults",
		"POST /api/v1/calculator/compute",
		"POST /api/v1/calculator/report",
		"GET /api/v1/metrics/summary",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	assert.False(t, routes["GET /api/v1/health"])
	assert.False(t, routes["GET /api/v1/metrics"])
}

func TestRegisterRoutesProductionWithoutMetrics(t *testing.T) {
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	r := testRouter(cfg)
	routes := routeSet(r)

	assert.False(t, routes["GET /metrics"])
	assert.False(t, routes["GET /api/v1/metrics/summary"])
	assert.False(t, routes["GET /docs/*any"])

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
