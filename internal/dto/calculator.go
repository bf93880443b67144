package dto

import "github.com/noah-isme/gw-dashboard-api/internal/models"

// CalculatorRequest carries the current calculator inputs. Omitted sections
// fall back to the scenario defaults.
type CalculatorRequest struct {
	Management        []models.RoleCostLine  `json:"management,omitempty" validate:"omitempty,dive"`
	Academic          []models.RoleCostLine  `json:"academic,omitempty" validate:"omitempty,dive"`
	OtherExpenses     []models.ExpenseLine   `json:"otherExpenses,omitempty" validate:"omitempty,dive"`
	Divisions         []models.DivisionModel `json:"divisions,omitempty" validate:"omitempty,dive"`
	Baseline          *models.BaselineInput  `json:"baseline,omitempty"`
	RemainingStudents *int                   `json:"remainingStudents,omitempty" validate:"omitempty,gte=0"`
}
