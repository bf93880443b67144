package service

import (
	"math"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
)

const defaultCurveMaxPoints = 500

// AggregateCostTable fills each line's Total (salary × months) and sums them.
func AggregateCostTable(lines []models.RoleCostLine) models.CostTable {
	table := models.CostTable{Lines: make([]models.RoleCostLine, len(lines))}
	for i, line := range lines {
		line.Total = line.MonthlySalary * float64(line.Months)
		table.Lines[i] = line
		table.Total += line.Total
	}
	return table
}

// AggregateExpenses sums independent named expenses.
func AggregateExpenses(items []models.ExpenseLine) models.ExpenseTable {
	table := models.ExpenseTable{Items: make([]models.ExpenseLine, len(items))}
	copy(table.Items, items)
	for _, item := range items {
		table.Total += item.Amount
	}
	return table
}

// GrandTotalCost adds the management, academic and other totals.
func GrandTotalCost(management, academic models.CostTable, other models.ExpenseTable) float64 {
	return management.Total + academic.Total + other.Total
}

// AggregateRevenue fills each division's revenue and totals revenue and head count.
func AggregateRevenue(divisions []models.DivisionModel) models.RevenueTable {
	table := models.RevenueTable{Divisions: make([]models.DivisionModel, len(divisions))}
	for i, d := range divisions {
		d.Revenue = float64(d.Students) * d.Fee
		table.Divisions[i] = d
		table.TotalRevenue += d.Revenue
		table.TotalStudents += d.Students
	}
	return table
}

// DeriveUnitMetrics computes per-student figures. With zero students every
// per-student figure is 0; total profit is always revenue - cost.
func DeriveUnitMetrics(revenue, cost float64, students int) models.UnitMetrics {
	m := models.UnitMetrics{
		TotalRevenue:  revenue,
		TotalCost:     cost,
		TotalStudents: students,
		TotalProfit:   revenue - cost,
	}
	if students > 0 {
		m.RevenuePerStudent = revenue / float64(students)
		m.CostPerStudent = cost / float64(students)
		m.ProfitPerStudent = m.RevenuePerStudent - m.CostPerStudent
	}
	return m
}

// BaselineStudents is the override when given, else the division head-count sum.
func BaselineStudents(b models.BaselineInput) int {
	if b.StudentsOverride != nil {
		return *b.StudentsOverride
	}
	total := 0
	for _, d := range b.Divisions {
		total += d.Students
	}
	return total
}

// BaselineModel derives the existing school's unit metrics from its aggregate
// revenue and cost.
func BaselineModel(b models.BaselineInput) models.UnitMetrics {
	return DeriveUnitMetrics(b.Revenue, b.Cost, BaselineStudents(b))
}

// AverageFee is the unweighted mean of the proposed fees.
func AverageFee(divisions []models.DivisionModel) float64 {
	if len(divisions) == 0 {
		return 0
	}
	var sum float64
	for _, d := range divisions {
		sum += d.Fee
	}
	return sum / float64(len(divisions))
}

// PayoutAdjustedCost is the proposed cost inflated by the profit owed to the
// existing owner.
func PayoutAdjustedCost(totalRevenue, totalProfit, baselineProfit float64) float64 {
	return (totalRevenue - totalProfit) + baselineProfit
}

// SolveBreakeven finds the enrollment covering the payout-adjusted cost. The
// minimum is floor(cost/avgFee)+1, which exceeds ceil by one when the division
// is exact. No solution exists unless profit per student and the average fee
// are positive.
func SolveBreakeven(proposed models.UnitMetrics, baselineProfit, avgFee float64, baselineStudents int) models.BreakevenResult {
	res := models.BreakevenResult{
		AverageFee:         avgFee,
		PayoutAdjustedCost: PayoutAdjustedCost(proposed.TotalRevenue, proposed.TotalProfit, baselineProfit),
	}
	if proposed.ProfitPerStudent <= 0 || avgFee <= 0 {
		return res
	}
	res.Defined = true
	res.MinStudentsNeeded = int(math.Floor(res.PayoutAdjustedCost/avgFee)) + 1
	res.MaxStudentsCanLeave = baselineStudents - res.MinStudentsNeeded
	res.Feasible = res.MinStudentsNeeded <= baselineStudents
	return res
}

// ProfitAfterAttrition is the profit left once payout-adjusted cost is paid
// from remaining × avgFee.
func ProfitAfterAttrition(remaining int, avgFee, payoutAdjustedCost float64) float64 {
	return float64(remaining)*avgFee - payoutAdjustedCost
}

// ProfitCurve samples ProfitAfterAttrition over [0, totalStudents] inclusive.
// Every head count is used while it fits in maxPoints; otherwise an even
// stride that keeps both ends.
func ProfitCurve(totalStudents int, avgFee, payoutAdjustedCost float64, maxPoints int) []models.CurvePoint {
	if totalStudents < 0 {
		totalStudents = 0
	}
	if maxPoints <= 0 {
		maxPoints = defaultCurveMaxPoints
	}
	if maxPoints < 2 {
		maxPoints = 2
	}
	n := totalStudents + 1
	if n <= maxPoints {
		points := make([]models.CurvePoint, 0, n)
		for s := 0; s <= totalStudents; s++ {
			points = append(points, models.CurvePoint{RemainingStudents: s, Profit: ProfitAfterAttrition(s, avgFee, payoutAdjustedCost)})
		}
		return points
	}
	points := make([]models.CurvePoint, 0, maxPoints)
	for i := 0; i < maxPoints; i++ {
		s := i * totalStudents / (maxPoints - 1)
		points = append(points, models.CurvePoint{RemainingStudents: s, Profit: ProfitAfterAttrition(s, avgFee, payoutAdjustedCost)})
	}
	return points
}

// Headline computes the truncated comparison figures.
func Headline(proposed, baseline models.UnitMetrics) models.HeadlineMetrics {
	return models.HeadlineMetrics{
		TotalCostWithPayout:          int64(proposed.CostPerStudent*float64(proposed.TotalStudents) + baseline.TotalProfit),
		ProfitPerStudentAfterAllCost: int64(proposed.ProfitPerStudent - baseline.ProfitPerStudent),
	}
}

// ClampRemaining resolves the what-if head count: the requested value or the
// baseline count, bounded to [0, totalStudents].
func ClampRemaining(requested *int, baselineStudents, totalStudents int) int {
	v := baselineStudents
	if requested != nil {
		v = *requested
	}
	if v < 0 {
		v = 0
	}
	if v > totalStudents {
		v = totalStudents
	}
	return v
}
