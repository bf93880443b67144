package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/middleware"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/response"
)

type sessionService interface {
	Screens() []models.ScreenSchema
	Create(ctx context.Context, screen string, uploads []service.Upload) (*dto.SessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, error)
	Query(ctx context.Context, id string, req dto.QueryRequest) (*dto.QueryResponse, *models.Pagination, error)
}

// SessionHandler exposes upload sessions and their filtered views.
type SessionHandler struct {
	sessions    sessionService
	maxFileSize int64
}

// NewSessionHandler constructs the handler. Uploads larger than maxFileSize
// are truncated to maxFileSize+1 bytes so the size check still rejects them.
func NewSessionHandler(sessions sessionService, maxFileSize int64) *SessionHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &SessionHandler{sessions: sessions, maxFileSize: maxFileSize}
}

// Screens godoc
// @Summary List dashboard screens
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /screens [get]
func (h *SessionHandler) Screens(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.sessions.Screens(), nil)
}

// Create godoc
// @Summary Upload a batch of CSV/XLSX files into a new session
// @Tags Sessions
// @Accept multipart/form-data
// @Produce json
// @Param screen path string true "Screen ID"
// @Param files formData file true "Upload files"
// @Success 201 {object} response.Envelope
// @Router /screens/{screen}/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["files[]"]
	}
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		content, err := h.readUpload(fh)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("unable to read %s", fh.Filename)))
			return
		}
		uploads = append(uploads, service.Upload{Filename: fh.Filename, Content: content})
	}

	session, err := h.sessions.Create(c.Request.Context(), c.Param("screen"), uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	cached := 0
	for _, src := range session.Sources {
		if src.Cached {
			cached++
		}
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusCreated, session, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Session metadata and per-file reports
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Query godoc
// @Summary Evaluate filters, search and paging over a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.QueryRequest true "Query"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/query [post]
func (h *SessionHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	result, pagination, err := h.sessions.Query(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, pagination, middleware.ExtractMeta(c))
}

func (h *SessionHandler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
}
