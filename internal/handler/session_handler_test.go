package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
)

type sessionServiceMock struct {
	uploads   []service.Upload
	screen    string
	query     dto.QueryRequest
	createErr error
	getErr    error
}

func (m *sessionServiceMock) Screens() []models.ScreenSchema { return models.Screens() }

func (m *sessionServiceMock) Create(ctx context.Context, screen string, uploads []service.Upload) (*dto.SessionResponse, error) {
	m.screen = screen
	m.uploads = uploads
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &dto.SessionResponse{
		ID:      "sess-1",
		Screen:  models.ScreenID(screen),
		Sources: []models.SourceReport{{Index: 1, File: uploads[0].Filename, Status: models.SourceParsed, Cached: true}},
	}, nil
}

func (m *sessionServiceMock) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.SessionResponse{ID: id}, nil
}

func (m *sessionServiceMock) Query(ctx context.Context, id string, req dto.QueryRequest) (*dto.QueryResponse, *models.Pagination, error) {
	m.query = req
	return &dto.QueryResponse{SessionID: id}, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 0}, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestSessionHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{}
	h := NewSessionHandler(mockSvc, 4)

	body, contentType := multipartBody(t, map[string]string{"a.csv": "Class\n5\n"})
	c, w := newGinContext(http.MethodPost, "/screens/student-issues/sessions", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/screens/student-issues/sessions", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "screen", Value: "student-issues"}}

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "student-issues", mockSvc.screen)
	require.Len(t, mockSvc.uploads, 1)
	assert.Equal(t, "a.csv", mockSvc.uploads[0].Filename)
	assert.Len(t, mockSvc.uploads[0].Content, 5, "content is capped at limit+1 bytes")

	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestSessionHandlerCreateRejectsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(&sessionServiceMock{}, 0)
	c, w := newGinContext(http.MethodPost, "/screens/student-issues/sessions", []byte(`{}`))
	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerGetMapsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(&sessionServiceMock{getErr: appErrors.ErrSessionExpired}, 0)
	c, w := newGinContext(http.MethodGet, "/sessions/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Get(c)
	require.Equal(t, http.StatusGone, w.Code)
}

func TestSessionHandlerQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{}
	h := NewSessionHandler(mockSvc, 0)

	payload, _ := json.Marshal(dto.QueryRequest{Selections: map[string][]string{"Class": {"5"}}, Search: "rao"})
	c, w := newGinContext(http.MethodPost, "/sessions/sess-1/query", payload)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	h.Query(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rao", mockSvc.query.Search)
	assert.Equal(t, []string{"5"}, mockSvc.query.Selections["Class"])

	c, w = newGinContext(http.MethodPost, "/sessions/sess-1/query", []byte(`{"page":"x"}`))
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	h.Query(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerScreens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(&sessionServiceMock{}, 0)
	c, w := newGinContext(http.MethodGet, "/screens", nil)
	h.Screens(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "teacher-issues")
}
