package models

import (
	"time"

	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// SourceStatus reports whether an uploaded file made it into the merge.
type SourceStatus string

const (
	SourceParsed SourceStatus = "parsed"
	SourceFailed SourceStatus = "failed"
)

// SourceReport is the per-file outcome of an upload batch.
type SourceReport struct {
	Index   int          `json:"index"`
	File    string       `json:"file"`
	Format  string       `json:"format,omitempty"`
	Size    int64        `json:"size"`
	Status  SourceStatus `json:"status"`
	Rows    int          `json:"rows"`
	Columns []string     `json:"columns,omitempty"`
	Cached  bool         `json:"cached"`
	Error   string       `json:"error,omitempty"`
}

// Session binds one screen to one merged dataset. It is never mutated after
// creation apart from its access time.
type Session struct {
	ID          string          `json:"id"`
	Screen      ScreenID        `json:"screen"`
	Merged      tabular.Dataset `json:"-"`
	Sources     []SourceReport  `json:"sources"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	LastAccess  time.Time       `json:"last_access"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// FilesMerged counts the sources that parsed successfully.
func (s *Session) FilesMerged() int {
	n := 0
	for _, src := range s.Sources {
		if src.Status == SourceParsed {
			n++
		}
	}
	return n
}

// CascadeStage is one evaluated filter stage.
type CascadeStage struct {
	Column     string     `json:"column"`
	Mode       SelectMode `json:"mode"`
	Candidates []string   `json:"candidates"`
	Selected   []string   `json:"selected"`
	Active     bool       `json:"active"`
	Missing    bool       `json:"missing"`
	RowsIn     int        `json:"rows_in"`
	RowsOut    int        `json:"rows_out"`
}

// ActiveFilter lists the values constraining one column.
type ActiveFilter struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// ValueCount is one bar of a distribution.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DatasetSummary mirrors the sidebar metrics of a screen.
type DatasetSummary struct {
	TotalRecords    int `json:"total_records"`
	FilteredRecords int `json:"filtered_records"`
	HiddenRecords   int `json:"hidden_records"`
	SearchMatches   int `json:"search_matches"`
	FilesMerged     int `json:"files_merged"`
}
