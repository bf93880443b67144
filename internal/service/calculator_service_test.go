package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/scenario"
)

func newCalculatorForTest(t *testing.T) *CalculatorService {
	t.Helper()
	sc, err := scenario.Default()
	require.NoError(t, err)
	return NewCalculatorService(scenario.NewStaticStore(sc), nil, CalculatorConfig{}, zap.NewNop())
}

func hasKind(diags []models.Diagnostic, kind models.DiagnosticKind) bool {
	for _, d := range diags {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func TestCalculatorComputeDefaults(t *testing.T) {
	svc := newCalculatorForTest(t)
	res, err := svc.Compute(context.Background(), dto.CalculatorRequest{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1944000.0, res.Management.Total)
	assert.Equal(t, 2112000.0, res.Academic.Total)
	assert.Equal(t, 1050000.0, res.OtherExpenses.Total)
	assert.Equal(t, 5106000.0, res.GrandTotal)
	assert.Equal(t, 9000000.0, res.Revenue.TotalRevenue)
	assert.Equal(t, 425, res.Revenue.TotalStudents)

	require.True(t, res.Breakeven.Defined)
	assert.Equal(t, 20000.0, res.Breakeven.AverageFee)
	assert.Equal(t, 256, res.Breakeven.MinStudentsNeeded)
	assert.Equal(t, -256, res.Breakeven.MaxStudentsCanLeave)
	assert.False(t, res.Breakeven.Feasible)
	assert.True(t, hasKind(res.Diagnostics, models.DiagnosticInfeasibleModel))

	require.NotNil(t, res.WhatIf)
	assert.Equal(t, 0, res.WhatIf.RemainingStudents)
	assert.Equal(t, -5106000.0, res.WhatIf.Profit)
	assert.Nil(t, res.Curve)
	assert.InDelta(t, 5106000, float64(res.Headline.TotalCostWithPayout), 1)
}

func TestCalculatorComputeFeasibleBaseline(t *testing.T) {
	svc := newCalculatorForTest(t)
	students := 400
	res, err := svc.Compute(context.Background(), dto.CalculatorRequest{
		Baseline: &models.BaselineInput{Revenue: 6000000, Cost: 4000000, StudentsOverride: &students},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 7106000.0, res.Breakeven.PayoutAdjustedCost)
	assert.Equal(t, 356, res.Breakeven.MinStudentsNeeded)
	assert.Equal(t, 44, res.Breakeven.MaxStudentsCanLeave)
	assert.True(t, res.Breakeven.Feasible)
	assert.False(t, hasKind(res.Diagnostics, models.DiagnosticInfeasibleModel))

	require.NotNil(t, res.WhatIf)
	assert.Equal(t, 400, res.WhatIf.RemainingStudents)
	assert.Equal(t, 894000.0, res.WhatIf.Profit)
	require.Len(t, res.Curve, 426)
	assert.Equal(t, 425, res.Curve[425].RemainingStudents)
}

func TestCalculatorComputeUndefinedBreakeven(t *testing.T) {
	svc := newCalculatorForTest(t)
	res, err := svc.Compute(context.Background(), dto.CalculatorRequest{
		Divisions: []models.DivisionModel{{Division: "Free", Students: 100, Fee: 0}},
	}, true)
	require.NoError(t, err)
	assert.False(t, res.Breakeven.Defined)
	assert.Nil(t, res.WhatIf)
	assert.Nil(t, res.Curve)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "Your model is not profitable per student, cannot cover owner payout.", res.Diagnostics[0].Message)
}

func TestCalculatorComputeRejectsNegativeInputs(t *testing.T) {
	svc := newCalculatorForTest(t)
	_, err := svc.Compute(context.Background(), dto.CalculatorRequest{
		Management: []models.RoleCostLine{{Role: "Manager", MonthlySalary: -1, Months: 12}},
	}, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalculatorReportFormats(t *testing.T) {
	svc := newCalculatorForTest(t)
	ctx := context.Background()

	csvFile, err := svc.Report(ctx, dto.CalculatorRequest{}, models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "breakeven_report.csv", csvFile.Filename)
	assert.True(t, strings.HasPrefix(string(csvFile.Payload), "Metric,Your Model,Existing School\n"))
	assert.Contains(t, string(csvFile.Payload), "Grand Total Cost,5106000,0")

	xlsxFile, err := svc.Report(ctx, dto.CalculatorRequest{}, models.ExportFormatXLSX)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxFile.Payload, []byte("PK")))

	pdfFile, err := svc.Report(ctx, dto.CalculatorRequest{}, models.ExportFormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfFile.Payload, []byte("%PDF")))
	assert.Equal(t, "application/pdf", pdfFile.ContentType)

	_, err = svc.Report(ctx, dto.CalculatorRequest{}, models.ExportFormat("docx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, appErrors.FromError(err).Code)
}
