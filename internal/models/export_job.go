package models

import "time"

// ExportFormat enumerates dataset download formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ExportScope selects the filtered view or the whole merge.
type ExportScope string

const (
	ExportScopeFiltered ExportScope = "filtered"
	ExportScopeAll      ExportScope = "all"
)

// Filename returns the download name for scope and format.
func (s ExportScope) Filename(format ExportFormat) string {
	if s == ExportScopeAll {
		return "all_merged_data." + string(format)
	}
	return "merged_filtered_data." + string(format)
}

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is a stored snapshot export of one session view.
type ExportJob struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"session_id"`
	Format       ExportFormat        `json:"format"`
	Scope        ExportScope         `json:"scope"`
	Selections   map[string][]string `json:"selections,omitempty"`
	Search       string              `json:"search,omitempty"`
	Status       ExportStatus        `json:"status"`
	Rows         int                 `json:"rows"`
	RelativePath string              `json:"-"`
	ResultURL    *string             `json:"result_url,omitempty"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}
