package dto

import (
	"time"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// QueryRequest captures POST /sessions/:id/query payload. Selections maps a
// cascade column to its chosen values.
type QueryRequest struct {
	Selections map[string][]string `json:"selections"`
	Search     string              `json:"search"`
	Page       int                 `json:"page" validate:"gte=0,lte=1000000"`
	PageSize   int                 `json:"pageSize" validate:"gte=0,lte=1000"`
}

// SessionResponse describes a freshly created or fetched session.
type SessionResponse struct {
	ID           string                `json:"id"`
	Screen       models.ScreenID       `json:"screen"`
	Columns      []string              `json:"columns"`
	TotalRecords int                   `json:"totalRecords"`
	FilesMerged  int                   `json:"filesMerged"`
	FilesFailed  int                   `json:"filesFailed"`
	Sources      []models.SourceReport `json:"sources"`
	Diagnostics  []models.Diagnostic   `json:"diagnostics,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	ExpiresAt    time.Time             `json:"expiresAt"`
}

// QueryResponse is one evaluated view of a session.
type QueryResponse struct {
	SessionID     string                         `json:"sessionId"`
	Screen        models.ScreenID                `json:"screen"`
	Stages        []models.CascadeStage          `json:"stages"`
	Columns       []string                       `json:"columns"`
	Rows          []tabular.Record               `json:"rows"`
	Summary       models.DatasetSummary          `json:"summary"`
	Statistics    map[string]int                 `json:"statistics"`
	Distributions map[string][]models.ValueCount `json:"distributions,omitempty"`
	ActiveFilters []models.ActiveFilter          `json:"activeFilters"`
	Diagnostics   []models.Diagnostic            `json:"diagnostics,omitempty"`
}
