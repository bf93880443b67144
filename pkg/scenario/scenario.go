package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// RoleDefault is one salaried designation with its default pay.
type RoleDefault struct {
	Role          string  `yaml:"role" json:"role"`
	MonthlySalary float64 `yaml:"monthly_salary" json:"monthlySalary"`
	Months        int     `yaml:"months" json:"months"`
}

// RoleSection groups roles sharing a salary input step.
type RoleSection struct {
	SalaryStep float64       `yaml:"salary_step" json:"salaryStep"`
	Roles      []RoleDefault `yaml:"roles" json:"roles"`
}

// ExpenseDefault is a named flat expense.
type ExpenseDefault struct {
	Label  string  `yaml:"label" json:"label"`
	Amount float64 `yaml:"amount" json:"amount"`
}

// ExpenseSection groups flat expenses.
type ExpenseSection struct {
	Step  float64          `yaml:"step" json:"step"`
	Items []ExpenseDefault `yaml:"items" json:"items"`
}

// DivisionDefault is a proposed-model division.
type DivisionDefault struct {
	Division string  `yaml:"division" json:"division"`
	Students int     `yaml:"students" json:"students"`
	Fee      float64 `yaml:"fee" json:"fee"`
}

// DivisionSection groups proposed divisions.
type DivisionSection struct {
	FeeStep float64           `yaml:"fee_step" json:"feeStep"`
	Items   []DivisionDefault `yaml:"items" json:"items"`
}

// BaselineDivisionDefault is an existing-school division (head count only).
type BaselineDivisionDefault struct {
	Division string `yaml:"division" json:"division"`
	Students int    `yaml:"students" json:"students"`
}

// BaselineSection describes the existing school.
type BaselineSection struct {
	AmountStep float64                   `yaml:"amount_step" json:"amountStep"`
	Divisions  []BaselineDivisionDefault `yaml:"divisions" json:"divisions"`
	Revenue    float64                   `yaml:"revenue" json:"revenue"`
	Cost       float64                   `yaml:"cost" json:"cost"`
}

// Scenario holds every calculator default.
type Scenario struct {
	Name          string          `yaml:"name" json:"name"`
	Currency      string          `yaml:"currency" json:"currency"`
	Management    RoleSection     `yaml:"management" json:"management"`
	Academic      RoleSection     `yaml:"academic" json:"academic"`
	OtherExpenses ExpenseSection  `yaml:"other_expenses" json:"otherExpenses"`
	Divisions     DivisionSection `yaml:"divisions" json:"divisions"`
	Baseline      BaselineSection `yaml:"baseline" json:"baseline"`
}

// Default returns the embedded scenario.
func Default() (*Scenario, error) {
	return Parse(defaultYAML)
}

// Load reads a scenario file; an empty path yields the embedded default.
func Load(path string) (*Scenario, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates scenario YAML.
func Parse(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) validate() error {
	for _, section := range []RoleSection{s.Management, s.Academic} {
		for _, r := range section.Roles {
			if r.Role == "" {
				return errors.New("scenario role without a name")
			}
			if r.MonthlySalary < 0 || r.Months < 1 {
				return fmt.Errorf("scenario role %q: salary must be >= 0 and months >= 1", r.Role)
			}
		}
	}
	for _, item := range s.OtherExpenses.Items {
		if item.Amount < 0 {
			return fmt.Errorf("scenario expense %q: amount must be >= 0", item.Label)
		}
	}
	for _, d := range s.Divisions.Items {
		if d.Students < 0 || d.Fee < 0 {
			return fmt.Errorf("scenario division %q: students and fee must be >= 0", d.Division)
		}
	}
	for _, d := range s.Baseline.Divisions {
		if d.Students < 0 {
			return fmt.Errorf("scenario baseline division %q: students must be >= 0", d.Division)
		}
	}
	if s.Baseline.Revenue < 0 || s.Baseline.Cost < 0 {
		return errors.New("scenario baseline revenue and cost must be >= 0")
	}
	return nil
}
