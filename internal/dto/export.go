package dto

import (
	"time"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
)

// ExportRequest captures POST /sessions/:id/export(s) payload.
type ExportRequest struct {
	Format     models.ExportFormat `json:"format" validate:"required,oneof=csv xlsx pdf"`
	Scope      models.ExportScope  `json:"scope" validate:"omitempty,oneof=filtered all"`
	Selections map[string][]string `json:"selections"`
	Search     string              `json:"search"`
}

// ExportJobResponse exposes snapshot job metadata.
type ExportJobResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Format    models.ExportFormat `json:"format"`
	Scope     models.ExportScope  `json:"scope"`
	Rows      int                 `json:"rows"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
