package models

// RoleCostLine is one salaried role: Total = MonthlySalary × Months.
type RoleCostLine struct {
	Role          string  `json:"role" validate:"required"`
	MonthlySalary float64 `json:"monthly_salary" validate:"gte=0"`
	Months        int     `json:"months" validate:"gte=1"`
	Total         float64 `json:"total"`
}

// CostTable is a list of role lines with their sum.
type CostTable struct {
	Lines []RoleCostLine `json:"lines"`
	Total float64        `json:"total"`
}

// ExpenseLine is a named flat expense.
type ExpenseLine struct {
	Label  string  `json:"label" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// ExpenseTable sums independent expense fields.
type ExpenseTable struct {
	Items []ExpenseLine `json:"items"`
	Total float64       `json:"total"`
}

// DivisionModel is one proposed division: Revenue = Students × Fee.
type DivisionModel struct {
	Division string  `json:"division" validate:"required"`
	Students int     `json:"students" validate:"gte=0"`
	Fee      float64 `json:"fee" validate:"gte=0"`
	Revenue  float64 `json:"revenue"`
}

// RevenueTable aggregates proposed divisions.
type RevenueTable struct {
	Divisions     []DivisionModel `json:"divisions"`
	TotalRevenue  float64         `json:"total_revenue"`
	TotalStudents int             `json:"total_students"`
}

// BaselineDivision is an existing-school division; only head counts are known.
type BaselineDivision struct {
	Division string `json:"division" validate:"required"`
	Students int    `json:"students" validate:"gte=0"`
}

// BaselineInput describes the existing school with aggregate money figures.
// StudentsOverride, when set, replaces the division head-count sum.
type BaselineInput struct {
	Divisions        []BaselineDivision `json:"divisions" validate:"dive"`
	Revenue          float64            `json:"revenue" validate:"gte=0"`
	Cost             float64            `json:"cost" validate:"gte=0"`
	StudentsOverride *int               `json:"students_override,omitempty" validate:"omitempty,gte=0"`
}

// UnitMetrics are the per-student figures of a model.
type UnitMetrics struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalCost         float64 `json:"total_cost"`
	TotalStudents     int     `json:"total_students"`
	RevenuePerStudent float64 `json:"revenue_per_student"`
	CostPerStudent    float64 `json:"cost_per_student"`
	ProfitPerStudent  float64 `json:"profit_per_student"`
	TotalProfit       float64 `json:"total_profit"`
}

// BreakevenResult is the enrollment threshold covering the baseline payout.
// When Defined is false no numeric solution exists and the counts are zero.
type BreakevenResult struct {
	Defined             bool    `json:"defined"`
	AverageFee          float64 `json:"average_fee"`
	PayoutAdjustedCost  float64 `json:"payout_adjusted_cost"`
	MinStudentsNeeded   int     `json:"min_students_needed"`
	MaxStudentsCanLeave int     `json:"max_students_can_leave"`
	Feasible            bool    `json:"feasible"`
}

// HeadlineMetrics are the comparison figures shown above the breakeven panel.
type HeadlineMetrics struct {
	TotalCostWithPayout          int64 `json:"total_cost_with_payout"`
	ProfitPerStudentAfterAllCost int64 `json:"profit_per_student_after_all_cost"`
}

// WhatIf evaluates profit at a chosen remaining enrollment.
type WhatIf struct {
	RemainingStudents int     `json:"remaining_students"`
	Profit            float64 `json:"profit"`
}

// CurvePoint is one sample of the attrition curve.
type CurvePoint struct {
	RemainingStudents int     `json:"remaining_students"`
	Profit            float64 `json:"profit"`
}

// CalculatorResult is the full recompute of every derived figure.
type CalculatorResult struct {
	Management    CostTable       `json:"management"`
	Academic      CostTable       `json:"academic"`
	OtherExpenses ExpenseTable    `json:"other_expenses"`
	GrandTotal    float64         `json:"grand_total_cost"`
	Revenue       RevenueTable    `json:"revenue"`
	Proposed      UnitMetrics     `json:"proposed"`
	Baseline      UnitMetrics     `json:"baseline"`
	Breakeven     BreakevenResult `json:"breakeven"`
	Headline      HeadlineMetrics `json:"headline"`
	WhatIf        *WhatIf         `json:"what_if,omitempty"`
	Curve         []CurvePoint    `json:"curve,omitempty"`
	Diagnostics   []Diagnostic    `json:"diagnostics,omitempty"`
}
