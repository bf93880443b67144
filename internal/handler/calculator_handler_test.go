package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	"github.com/noah-isme/gw-dashboard-api/pkg/scenario"
)

func newCalculatorHandler(t *testing.T) *CalculatorHandler {
	t.Helper()
	sc, err := scenario.Default()
	require.NoError(t, err)
	return NewCalculatorHandler(service.NewCalculatorService(scenario.NewStaticStore(sc), nil, service.CalculatorConfig{}, nil))
}

func TestCalculatorHandlerComputeDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCalculatorHandler(t)

	c, w := newGinContext(http.MethodPost, "/calculator/compute?curve=true", nil)
	h.Compute(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.CalculatorResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 5106000.0, envelope.Data.GrandTotal)
	assert.Equal(t, 256, envelope.Data.Breakeven.MinStudentsNeeded)
	assert.Len(t, envelope.Data.Curve, 426)
}

func TestCalculatorHandlerComputeValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCalculatorHandler(t)
	c, w := newGinContext(http.MethodPost, "/calculator/compute", []byte(`{"divisions":[{"division":"x","students":-1,"fee":10}]}`))
	h.Compute(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculatorHandlerReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCalculatorHandler(t)

	c, w := newGinContext(http.MethodPost, "/calculator/report?format=csv", nil)
	h.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "breakeven_report.csv")

	c, w = newGinContext(http.MethodPost, "/calculator/report?format=docx", nil)
	h.Report(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculatorHandlerDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCalculatorHandler(t)
	c, w := newGinContext(http.MethodGet, "/calculator/defaults", nil)
	h.Defaults(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "salaryStep")
}
