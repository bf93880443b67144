package service

import (
	"context"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/export"
	"github.com/noah-isme/gw-dashboard-api/pkg/scenario"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

type scenarioSource interface {
	Current() *scenario.Scenario
}

// CalculatorConfig tunes the what-if curve.
type CalculatorConfig struct {
	CurveMaxPoints int
}

// CalculatorService recomputes the breakeven model from the current inputs.
// It keeps no state between calls.
type CalculatorService struct {
	scenarios scenarioSource
	validator *validator.Validate
	csv       *export.CSVExporter
	xlsx      *export.XLSXExporter
	pdf       *export.PDFExporter
	cfg       CalculatorConfig
	logger    *zap.Logger
}

// NewCalculatorService constructs the service.
func NewCalculatorService(scenarios scenarioSource, validate *validator.Validate, cfg CalculatorConfig, logger *zap.Logger) *CalculatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CurveMaxPoints <= 0 {
		cfg.CurveMaxPoints = defaultCurveMaxPoints
	}
	return &CalculatorService{
		scenarios: scenarios,
		validator: validate,
		csv:       export.NewCSVExporter(),
		xlsx:      export.NewXLSXExporter(),
		pdf:       export.NewPDFExporter(),
		cfg:       cfg,
		logger:    logger,
	}
}

// Defaults returns the active scenario with its step granularities.
func (s *CalculatorService) Defaults() *scenario.Scenario {
	return s.scenarios.Current()
}

// Compute fills omitted sections from the scenario, validates bounds and
// recomputes every derived figure.
func (s *CalculatorService) Compute(ctx context.Context, req dto.CalculatorRequest, withCurve bool) (*models.CalculatorResult, error) {
	req = s.fillDefaults(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calculator payload")
	}

	res := &models.CalculatorResult{
		Management:    AggregateCostTable(req.Management),
		Academic:      AggregateCostTable(req.Academic),
		OtherExpenses: AggregateExpenses(req.OtherExpenses),
		Revenue:       AggregateRevenue(req.Divisions),
	}
	res.GrandTotal = GrandTotalCost(res.Management, res.Academic, res.OtherExpenses)
	res.Proposed = DeriveUnitMetrics(res.Revenue.TotalRevenue, res.GrandTotal, res.Revenue.TotalStudents)
	res.Baseline = BaselineModel(*req.Baseline)
	res.Headline = Headline(res.Proposed, res.Baseline)

	avgFee := AverageFee(res.Revenue.Divisions)
	baselineStudents := res.Baseline.TotalStudents
	res.Breakeven = SolveBreakeven(res.Proposed, res.Baseline.TotalProfit, avgFee, baselineStudents)
	res.Diagnostics = breakevenGuidance(res.Breakeven, res.Baseline)

	if res.Breakeven.Defined {
		remaining := ClampRemaining(req.RemainingStudents, baselineStudents, res.Revenue.TotalStudents)
		profit := ProfitAfterAttrition(remaining, avgFee, res.Breakeven.PayoutAdjustedCost)
		res.WhatIf = &models.WhatIf{RemainingStudents: remaining, Profit: profit}
		res.Diagnostics = append(res.Diagnostics, whatIfGuidance(*res.WhatIf))
		if withCurve {
			res.Curve = ProfitCurve(res.Revenue.TotalStudents, avgFee, res.Breakeven.PayoutAdjustedCost, s.cfg.CurveMaxPoints)
		}
	}
	return res, nil
}

// Report renders the model comparison in the requested format.
func (s *CalculatorService) Report(ctx context.Context, req dto.CalculatorRequest, format models.ExportFormat) (*RenderedFile, error) {
	res, err := s.Compute(ctx, req, false)
	if err != nil {
		return nil, err
	}
	data := ComparisonDataset(res)
	var payload []byte
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(data)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(data, "Breakeven")
	case models.ExportFormatPDF:
		notes := make([]string, 0, len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			notes = append(notes, d.Message)
		}
		payload, err = s.pdf.Render(data, "Breakeven Analysis After Paying Existing Owner Profit", notes...)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported report format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render breakeven report")
	}
	s.logger.Debug("breakeven report rendered", zap.String("format", string(format)), zap.Int("bytes", len(payload)))
	return &RenderedFile{
		Filename:    "breakeven_report." + string(format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *CalculatorService) fillDefaults(req dto.CalculatorRequest) dto.CalculatorRequest {
	sc := s.scenarios.Current()
	if req.Management == nil {
		req.Management = roleLines(sc.Management)
	}
	if req.Academic == nil {
		req.Academic = roleLines(sc.Academic)
	}
	if req.OtherExpenses == nil {
		req.OtherExpenses = make([]models.ExpenseLine, 0, len(sc.OtherExpenses.Items))
		for _, item := range sc.OtherExpenses.Items {
			req.OtherExpenses = append(req.OtherExpenses, models.ExpenseLine{Label: item.Label, Amount: item.Amount})
		}
	}
	if req.Divisions == nil {
		req.Divisions = make([]models.DivisionModel, 0, len(sc.Divisions.Items))
		for _, d := range sc.Divisions.Items {
			req.Divisions = append(req.Divisions, models.DivisionModel{Division: d.Division, Students: d.Students, Fee: d.Fee})
		}
	}
	if req.Baseline == nil {
		baseline := models.BaselineInput{Revenue: sc.Baseline.Revenue, Cost: sc.Baseline.Cost}
		for _, d := range sc.Baseline.Divisions {
			baseline.Divisions = append(baseline.Divisions, models.BaselineDivision{Division: d.Division, Students: d.Students})
		}
		req.Baseline = &baseline
	}
	return req
}

func roleLines(section scenario.RoleSection) []models.RoleCostLine {
	lines := make([]models.RoleCostLine, 0, len(section.Roles))
	for _, r := range section.Roles {
		lines = append(lines, models.RoleCostLine{Role: r.Role, MonthlySalary: r.MonthlySalary, Months: r.Months})
	}
	return lines
}

func breakevenGuidance(b models.BreakevenResult, baseline models.UnitMetrics) []models.Diagnostic {
	if !b.Defined {
		return []models.Diagnostic{{
			Kind:    models.DiagnosticInfeasibleModel,
			Level:   models.LevelError,
			Scope:   "breakeven",
			Message: "Your model is not profitable per student, cannot cover owner payout.",
		}}
	}
	out := []models.Diagnostic{{
		Kind:  models.DiagnosticGuidance,
		Level: models.LevelInfo,
		Scope: "breakeven",
		Message: fmt.Sprintf("You need at least %d students to cover payout to owner (%s).",
			b.MinStudentsNeeded, money(baseline.TotalProfit)),
	}}
	if !b.Feasible {
		return append(out,
			models.Diagnostic{
				Kind:  models.DiagnosticInfeasibleModel,
				Level: models.LevelError,
				Scope: "breakeven",
				Message: fmt.Sprintf("Breakeven students required (%d) are more than existing school students (%d).",
					b.MinStudentsNeeded, baseline.TotalStudents),
			},
			models.Diagnostic{
				Kind:    models.DiagnosticInfeasibleModel,
				Level:   models.LevelWarning,
				Scope:   "breakeven",
				Message: "Consider strategies to increase enrollment or reduce costs.",
			})
	}
	return append(out, models.Diagnostic{
		Kind:  models.DiagnosticGuidance,
		Level: models.LevelSuccess,
		Scope: "breakeven",
		Message: fmt.Sprintf("Breakeven students (%d) are less than or equal to existing school students (%d).",
			b.MinStudentsNeeded, baseline.TotalStudents),
	})
}

func whatIfGuidance(w models.WhatIf) models.Diagnostic {
	msg := fmt.Sprintf("Profit after payout with %d students: %s.", w.RemainingStudents, money(w.Profit))
	if w.Profit >= 0 {
		return models.Diagnostic{Kind: models.DiagnosticGuidance, Level: models.LevelSuccess, Scope: "what_if", Message: msg + " Still profitable."}
	}
	return models.Diagnostic{Kind: models.DiagnosticInfeasibleModel, Level: models.LevelWarning, Scope: "what_if", Message: msg + " At a loss."}
}

// ComparisonDataset lays out the proposed and existing models side by side.
func ComparisonDataset(res *models.CalculatorResult) tabular.Dataset {
	cols := []string{"Metric", "Your Model", "Existing School"}
	row := func(metric string, mine tabular.Value, existing tabular.Value) tabular.Record {
		return tabular.Record{"Metric": tabular.String(metric), "Your Model": mine, "Existing School": existing}
	}
	num := func(v float64) tabular.Value { return tabular.Number(math.Round(v*100) / 100) }

	records := []tabular.Record{
		row("Management Cost", num(res.Management.Total), tabular.Null()),
		row("Academic Cost", num(res.Academic.Total), tabular.Null()),
		row("Other Expenses", num(res.OtherExpenses.Total), tabular.Null()),
		row("Grand Total Cost", num(res.GrandTotal), num(res.Baseline.TotalCost)),
		row("Total Revenue", num(res.Revenue.TotalRevenue), num(res.Baseline.TotalRevenue)),
		row("Total Students", num(float64(res.Revenue.TotalStudents)), num(float64(res.Baseline.TotalStudents))),
		row("Per Student Revenue", num(res.Proposed.RevenuePerStudent), num(res.Baseline.RevenuePerStudent)),
		row("Per Student Costing", num(res.Proposed.CostPerStudent), num(res.Baseline.CostPerStudent)),
		row("Per Student Profit", num(res.Proposed.ProfitPerStudent), num(res.Baseline.ProfitPerStudent)),
		row("Total Profit", num(res.Proposed.TotalProfit), num(res.Baseline.TotalProfit)),
		row("Average Fee", num(res.Breakeven.AverageFee), tabular.Null()),
		row("Payout Adjusted Cost", num(res.Breakeven.PayoutAdjustedCost), tabular.Null()),
	}
	if res.Breakeven.Defined {
		records = append(records,
			row("Min Students Needed", num(float64(res.Breakeven.MinStudentsNeeded)), tabular.Null()),
			row("Max Students Can Leave", num(float64(res.Breakeven.MaxStudentsCanLeave)), tabular.Null()),
		)
	}
	records = append(records,
		row("Total Cost With Payout", num(float64(res.Headline.TotalCostWithPayout)), tabular.Null()),
		row("Profit Per Student After All Cost", num(float64(res.Headline.ProfitPerStudentAfterAllCost)), tabular.Null()),
	)
	return tabular.Dataset{Name: "breakeven", Columns: cols, Records: records}
}

func money(v float64) string {
	return humanize.Commaf(math.Round(v*100) / 100)
}
