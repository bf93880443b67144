package models

// DiagnosticKind classifies a non-fatal problem surfaced with a result.
type DiagnosticKind string

const (
	DiagnosticParseError      DiagnosticKind = "PARSE_ERROR"
	DiagnosticSchemaWarning   DiagnosticKind = "SCHEMA_WARNING"
	DiagnosticEmptyResult     DiagnosticKind = "EMPTY_RESULT"
	DiagnosticInfeasibleModel DiagnosticKind = "INFEASIBLE_MODEL"
	DiagnosticGuidance        DiagnosticKind = "GUIDANCE"
)

// DiagnosticLevel is the severity shown to the user.
type DiagnosticLevel string

const (
	LevelInfo    DiagnosticLevel = "info"
	LevelWarning DiagnosticLevel = "warning"
	LevelError   DiagnosticLevel = "error"
	LevelSuccess DiagnosticLevel = "success"
)

// Diagnostic is scoped to the smallest affected unit: a file, a cascade
// stage or a derived metric.
type Diagnostic struct {
	Kind    DiagnosticKind  `json:"kind"`
	Level   DiagnosticLevel `json:"level"`
	Scope   string          `json:"scope,omitempty"`
	Message string          `json:"message"`
}
