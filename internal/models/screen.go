package models

// ScreenID names one of the issue dashboards.
type ScreenID string

const (
	ScreenStudentIssues ScreenID = "student-issues"
	ScreenTeacherIssues ScreenID = "teacher-issues"
)

// SelectMode governs how many values a cascade stage accepts.
type SelectMode string

const (
	SelectSingle SelectMode = "single"
	SelectMulti  SelectMode = "multi"
)

// AllSentinel is the single-select value meaning "no constraint".
const AllSentinel = "All"

// ScreenSchema describes the cascade and summary columns of a screen.
type ScreenSchema struct {
	ID                  ScreenID   `json:"id"`
	Title               string     `json:"title"`
	Mode                SelectMode `json:"mode"`
	Columns             []string   `json:"columns"`
	StatColumns         []string   `json:"stat_columns"`
	DistributionColumns []string   `json:"distribution_columns,omitempty"`
}

var screens = []ScreenSchema{
	{
		ID:          ScreenStudentIssues,
		Title:       "Student Issue Dashboard",
		Mode:        SelectSingle,
		Columns:     []string{"Class", "Subject", "Resolver Teacher"},
		StatColumns: []string{"Class", "Subject", "Resolver Teacher"},
	},
	{
		ID:                  ScreenTeacherIssues,
		Title:               "Teacher Issue Dashboard",
		Mode:                SelectMulti,
		Columns:             []string{"Issue In Class", "Issue In Subject", "Teachers Name", "Issue Type", "Final Status"},
		StatColumns:         []string{"Issue In Class", "Issue In Subject", "Teachers Name", "Issue Type"},
		DistributionColumns: []string{"Issue In Class", "Issue In Subject", "Issue Type"},
	},
}

// Screens lists every known screen schema.
func Screens() []ScreenSchema {
	out := make([]ScreenSchema, len(screens))
	copy(out, screens)
	return out
}

// LookupScreen resolves a screen by id.
func LookupScreen(id string) (ScreenSchema, bool) {
	for _, s := range screens {
		if string(s.ID) == id {
			return s, true
		}
	}
	return ScreenSchema{}, false
}
