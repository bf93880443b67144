package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/response"
	"github.com/noah-isme/gw-dashboard-api/pkg/scenario"
)

type calculatorService interface {
	Defaults() *scenario.Scenario
	Compute(ctx context.Context, req dto.CalculatorRequest, withCurve bool) (*models.CalculatorResult, error)
	Report(ctx context.Context, req dto.CalculatorRequest, format models.ExportFormat) (*service.RenderedFile, error)
}

// CalculatorHandler exposes the breakeven calculator.
type CalculatorHandler struct {
	calc calculatorService
}

// NewCalculatorHandler constructs the handler.
func NewCalculatorHandler(calc calculatorService) *CalculatorHandler {
	return &CalculatorHandler{calc: calc}
}

// Defaults godoc
// @Summary Calculator default inputs and step sizes
// @Tags Calculator
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calculator/defaults [get]
func (h *CalculatorHandler) Defaults(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.calc.Defaults(), nil)
}

// Compute godoc
// @Summary Recompute the breakeven model
// @Tags Calculator
// @Accept json
// @Produce json
// @Param curve query bool false "Include the attrition curve"
// @Param payload body dto.CalculatorRequest false "Inputs; omitted sections use defaults"
// @Success 200 {object} response.Envelope
// @Router /calculator/compute [post]
func (h *CalculatorHandler) Compute(c *gin.Context) {
	req, ok := bindCalculatorRequest(c)
	if !ok {
		return
	}
	withCurve, _ := strconv.ParseBool(c.DefaultQuery("curve", "false"))
	result, err := h.calc.Compute(c.Request.Context(), req, withCurve)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Report godoc
// @Summary Download the breakeven comparison report
// @Tags Calculator
// @Accept json
// @Produce octet-stream
// @Param format query string false "csv, xlsx or pdf" default(pdf)
// @Param payload body dto.CalculatorRequest false "Inputs; omitted sections use defaults"
// @Success 200 {file} binary
// @Router /calculator/report [post]
func (h *CalculatorHandler) Report(c *gin.Context) {
	req, ok := bindCalculatorRequest(c)
	if !ok {
		return
	}
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatPDF))))
	file, err := h.calc.Report(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func bindCalculatorRequest(c *gin.Context) (dto.CalculatorRequest, bool) {
	var req dto.CalculatorRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return req, false
	}
	return req, true
}
