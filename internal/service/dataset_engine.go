package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// CascadeResult is the evaluated filter cascade of a screen.
type CascadeResult struct {
	Stages      []models.CascadeStage
	Filtered    tabular.Dataset
	Diagnostics []models.Diagnostic
}

// BuildCascade walks the screen's cascade columns in order. Each stage's
// candidates are the distinct non-null values left by the earlier stages,
// so a choice upstream narrows every list below it. Missing columns become
// pass-through stages with a schema warning.
func BuildCascade(data tabular.Dataset, schema models.ScreenSchema, selections map[string][]string) (*CascadeResult, error) {
	result := &CascadeResult{Stages: make([]models.CascadeStage, 0, len(schema.Columns))}

	known := make(map[string]struct{}, len(schema.Columns))
	for _, col := range schema.Columns {
		known[col] = struct{}{}
	}
	unknown := make([]string, 0)
	for col := range selections {
		if _, ok := known[col]; !ok {
			unknown = append(unknown, col)
		}
	}
	sort.Strings(unknown)
	for _, col := range unknown {
		result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
			Kind:    models.DiagnosticSchemaWarning,
			Level:   models.LevelWarning,
			Scope:   col,
			Message: fmt.Sprintf("'%s' is not a filter of this screen; selection ignored", col),
		})
	}

	current := data
	for _, col := range schema.Columns {
		selected, err := normalizeSelection(schema.Mode, col, selections[col])
		if err != nil {
			return nil, err
		}
		stage := models.CascadeStage{
			Column:     col,
			Mode:       schema.Mode,
			Candidates: []string{},
			Selected:   selected,
			RowsIn:     current.Len(),
		}
		if !current.Has(col) {
			stage.Missing = true
			stage.RowsOut = current.Len()
			result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
				Kind:    models.DiagnosticSchemaWarning,
				Level:   models.LevelWarning,
				Scope:   col,
				Message: fmt.Sprintf("'%s' column not found", col),
			})
			result.Stages = append(result.Stages, stage)
			continue
		}
		for _, v := range current.Distinct(col) {
			stage.Candidates = append(stage.Candidates, v.Text())
		}
		if len(selected) > 0 {
			stage.Active = true
			current = current.Filter(matchAny(col, selected))
		}
		stage.RowsOut = current.Len()
		result.Stages = append(result.Stages, stage)
	}
	result.Filtered = current
	return result, nil
}

// ApplyCascade returns only the narrowed dataset of BuildCascade.
func ApplyCascade(data tabular.Dataset, schema models.ScreenSchema, selections map[string][]string) (tabular.Dataset, []models.Diagnostic, error) {
	res, err := BuildCascade(data, schema, selections)
	if err != nil {
		return tabular.Dataset{}, nil, err
	}
	return res.Filtered, res.Diagnostics, nil
}

// ApplySearch keeps records where any column's text contains term, ignoring
// case. An empty term is the identity.
func ApplySearch(data tabular.Dataset, term string) tabular.Dataset {
	if term == "" {
		return data
	}
	columns := data.Columns
	return data.Filter(func(rec tabular.Record) bool {
		for _, col := range columns {
			if rec.Get(col).ContainsFold(term) {
				return true
			}
		}
		return false
	})
}

// Statistics counts distinct non-null values per requested column. Columns
// missing from the dataset are omitted.
func Statistics(data tabular.Dataset, columns []string) map[string]int {
	out := make(map[string]int, len(columns))
	for _, col := range columns {
		if !data.Has(col) {
			continue
		}
		out[col] = len(data.Distinct(col))
	}
	return out
}

// Distribution counts records per distinct non-null value of column, most
// frequent first.
func Distribution(data tabular.Dataset, column string) []models.ValueCount {
	if !data.Has(column) {
		return nil
	}
	counts := make(map[tabular.Value]int)
	for _, rec := range data.Records {
		v := rec.Get(column)
		if v.IsNull() {
			continue
		}
		counts[v]++
	}
	values := make([]tabular.Value, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i].Less(values[j])
	})
	out := make([]models.ValueCount, 0, len(values))
	for _, v := range values {
		out = append(out, models.ValueCount{Value: v.Text(), Count: counts[v]})
	}
	return out
}

// Summarize builds the record counters shown beside a filtered view.
func Summarize(total, filtered, searched tabular.Dataset, filesMerged int) models.DatasetSummary {
	return models.DatasetSummary{
		TotalRecords:    total.Len(),
		FilteredRecords: filtered.Len(),
		HiddenRecords:   total.Len() - filtered.Len(),
		SearchMatches:   searched.Len(),
		FilesMerged:     filesMerged,
	}
}

// ActiveFilters lists the stages that constrained the view.
func ActiveFilters(stages []models.CascadeStage) []models.ActiveFilter {
	out := make([]models.ActiveFilter, 0)
	for _, st := range stages {
		if !st.Active {
			continue
		}
		out = append(out, models.ActiveFilter{Column: st.Column, Values: st.Selected})
	}
	return out
}

// EmptyResultDiagnostic reports a view with zero rows, or nil.
func EmptyResultDiagnostic(view tabular.Dataset, search string) *models.Diagnostic {
	if view.Len() > 0 {
		return nil
	}
	msg := "No records match the selected filters"
	if search != "" {
		msg = fmt.Sprintf("No records found matching '%s'", search)
	}
	return &models.Diagnostic{Kind: models.DiagnosticEmptyResult, Level: models.LevelInfo, Message: msg}
}

func normalizeSelection(mode models.SelectMode, column string, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" || (mode == models.SelectSingle && v == models.AllSentinel) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if mode == models.SelectSingle && len(out) > 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("'%s' accepts a single value", column))
	}
	return out, nil
}

func matchAny(column string, values []string) func(tabular.Record) bool {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(rec tabular.Record) bool {
		v := rec.Get(column)
		if v.IsNull() {
			return false
		}
		_, ok := set[v.Text()]
		return ok
	}
}
