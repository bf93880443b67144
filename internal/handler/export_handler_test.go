package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
)

type exportServiceMock struct {
	rendered    *service.RenderedFile
	renderErr   error
	job         *dto.ExportJobResponse
	download    *service.ExportDownload
	downloadErr error
	lastReq     dto.ExportRequest
}

func (m *exportServiceMock) Render(ctx context.Context, sessionID string, req dto.ExportRequest) (*service.RenderedFile, error) {
	m.lastReq = req
	return m.rendered, m.renderErr
}

func (m *exportServiceMock) CreateJob(ctx context.Context, sessionID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	m.lastReq = req
	return m.job, nil
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id string) (*dto.ExportJobResponse, error) {
	if m.job == nil || m.job.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return m.job, nil
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{rendered: &service.RenderedFile{
		Filename:    "merged_filtered_data.csv",
		ContentType: models.ExportFormatCSV.ContentType(),
		Payload:     []byte("Class\n5\n"),
	}}
	h := NewExportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{Format: models.ExportFormatCSV, Search: "rao"})
	c, w := newGinContext(http.MethodPost, "/sessions/s/export", payload)
	c.Params = gin.Params{{Key: "id", Value: "s"}}
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Class\n5\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "merged_filtered_data.csv")
	assert.Equal(t, "rao", mockSvc.lastReq.Search)
}

func TestExportHandlerDownloadError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(&exportServiceMock{renderErr: appErrors.Clone(appErrors.ErrValidation, "invalid export payload")})
	c, w := newGinContext(http.MethodPost, "/sessions/s/export", []byte(`{"format":"docx"}`))
	h.Download(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerCreateJobAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{job: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued}}
	h := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/sessions/s/exports", []byte(`{"format":"xlsx","scope":"all"}`))
	c.Params = gin.Params{{Key: "id", Value: "s"}}
	h.CreateJob(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.ExportScopeAll, mockSvc.lastReq.Scope)

	c, w = newGinContext(http.MethodGet, "/exports/job-1", nil)
	c.Params = gin.Params{{Key: "jobId", Value: "job-1"}}
	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/exports/other", nil)
	c.Params = gin.Params{{Key: "jobId", Value: "other"}}
	h.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerDownloadSigned(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "merged_filtered_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)

	h := NewExportHandler(&exportServiceMock{download: &service.ExportDownload{
		File:        f,
		Filename:    "merged_filtered_data.csv",
		ContentType: "text/csv",
		ExpiresAt:   time.Now().Add(time.Hour),
	}})
	c, w := newGinContext(http.MethodGet, "/exports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	h.DownloadSigned(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a,b\n1,2\n", w.Body.String())

	h = NewExportHandler(&exportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")})
	c, w = newGinContext(http.MethodGet, "/exports/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}
	h.DownloadSigned(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
