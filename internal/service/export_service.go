package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/export"
	"github.com/noah-isme/gw-dashboard-api/pkg/jobs"
	"github.com/noah-isme/gw-dashboard-api/pkg/storage"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// JobTypeExport tags snapshot export jobs on the shared queue.
const JobTypeExport = "export"

// RenderedFile is an in-memory download.
type RenderedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportDownload is a resolved signed download.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

type sessionViewer interface {
	View(ctx context.Context, id string, selections map[string][]string, search string, scope models.ExportScope) (*SessionView, error)
}

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

type exportPayload struct {
	Data  tabular.Dataset
	Title string
}

// ExportService renders session views and manages stored snapshot exports.
type ExportService struct {
	sessions  sessionViewer
	jobsRepo  exportJobStore
	queue     jobDispatcher
	storage   fileStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	xlsx      *export.XLSXExporter
	pdf       *export.PDFExporter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sessions sessionViewer, jobsRepo exportJobStore, queue jobDispatcher, files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &ExportService{
		sessions:  sessions,
		jobsRepo:  jobsRepo,
		queue:     queue,
		storage:   files,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		xlsx:      export.NewXLSXExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Render produces the requested view as a download.
func (s *ExportService) Render(ctx context.Context, sessionID string, req dto.ExportRequest) (*RenderedFile, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	view, err := s.sessions.View(ctx, sessionID, req.Selections, req.Search, req.Scope)
	if err != nil {
		return nil, err
	}
	if len(view.Data.Columns) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session has no parsed data to export")
	}
	payload, err := s.render(view.Data, req.Format, exportTitle(view.Schema, req.Scope))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.RecordExport(req.Format, req.Scope)
	return &RenderedFile{
		Filename:    req.Scope.Filename(req.Format),
		ContentType: req.Format.ContentType(),
		Payload:     payload,
	}, nil
}

// CreateJob snapshots the view now and queues it for rendering and storage.
func (s *ExportService) CreateJob(ctx context.Context, sessionID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	view, err := s.sessions.View(ctx, sessionID, req.Selections, req.Search, req.Scope)
	if err != nil {
		return nil, err
	}
	if len(view.Data.Columns) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session has no parsed data to export")
	}
	job := &models.ExportJob{
		SessionID:  sessionID,
		Format:     req.Format,
		Scope:      req.Scope,
		Selections: req.Selections,
		Search:     req.Search,
		Status:     models.ExportStatusQueued,
		Rows:       view.Data.Len(),
	}
	if err := s.jobsRepo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	payload := exportPayload{Data: view.Data, Title: exportTitle(view.Schema, req.Scope)}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeExport, Payload: payload}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return jobResponse(job), nil
}

// Process is the queue handler for JobTypeExport.
func (s *ExportService) Process(ctx context.Context, j jobs.Job) error {
	job, err := s.jobsRepo.GetByID(ctx, j.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", j.ID, err)
	}
	payload, ok := j.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("export job %s: unexpected payload %T", j.ID, j.Payload)
	}
	processing := models.ExportStatusProcessing
	_ = s.jobsRepo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing})

	data, err := s.render(payload.Data, job.Format, payload.Title)
	if err != nil {
		return fmt.Errorf("render export job %s: %w", job.ID, err)
	}
	relPath, err := s.storage.Save(job.ID+"/"+job.Scope.Filename(job.Format), data)
	if err != nil {
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	finished := models.ExportStatusFinished
	now := time.Now().UTC()
	rows := payload.Data.Len()
	if err := s.jobsRepo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Rows:         &rows,
		RelativePath: &relPath,
		ResultURL:    &url,
		ExpiresAt:    &expiresAt,
		FinishedAt:   &now,
	}); err != nil {
		return err
	}
	s.metrics.RecordExport(job.Format, job.Scope)
	s.logger.Info("export stored", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("rows", rows))
	return nil
}

// HandleGiveUp marks export jobs failed once the queue stops retrying them.
func (s *ExportService) HandleGiveUp(j jobs.Job, err error) {
	if j.Type != JobTypeExport {
		return
	}
	s.markFailed(context.Background(), j.ID, err.Error())
}

// GetStatus exposes job metadata.
func (s *ExportService) GetStatus(ctx context.Context, id string) (*dto.ExportJobResponse, error) {
	job, err := s.jobsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExportJobNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return jobResponse(job), nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.jobsRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrExportJobNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.ErrNotReady
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) || job.RelativePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(relPath),
		ContentType: job.Format.ContentType(),
		ExpiresAt:   expiresAt,
	}, nil
}

// Cleanup purges stored files and job records older than the result TTL.
func (s *ExportService) Cleanup(ctx context.Context) (int, error) {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return 0, err
	}
	stale, err := s.jobsRepo.ListFinishedBefore(ctx, time.Now().UTC().Add(-s.cfg.ResultTTL))
	if err != nil {
		return len(deleted), err
	}
	for _, job := range stale {
		if job.RelativePath != "" {
			if err := s.storage.Delete(job.RelativePath); err != nil {
				s.logger.Warn("failed to delete export file", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
		_ = s.jobsRepo.Delete(ctx, job.ID)
	}
	if len(deleted) > 0 || len(stale) > 0 {
		s.logger.Info("exports cleaned", zap.Int("files", len(deleted)), zap.Int("jobs", len(stale)))
	}
	return len(deleted), nil
}

func (s *ExportService) validate(req dto.ExportRequest) (dto.ExportRequest, error) {
	if req.Scope == "" {
		req.Scope = models.ExportScopeFiltered
	}
	if err := s.validator.Struct(req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	return req, nil
}

func (s *ExportService) render(data tabular.Dataset, format models.ExportFormat, title string) ([]byte, error) {
	switch format {
	case models.ExportFormatCSV:
		return s.csv.Render(data)
	case models.ExportFormatXLSX:
		return s.xlsx.Render(data, export.DefaultSheetName)
	case models.ExportFormatPDF:
		return s.pdf.Render(data, title)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func (s *ExportService) markFailed(ctx context.Context, id, msg string) {
	status := models.ExportStatusFailed
	now := time.Now().UTC()
	if err := s.jobsRepo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &status,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
}

func exportTitle(schema models.ScreenSchema, scope models.ExportScope) string {
	title := schema.Title
	if title == "" {
		title = "Merged Data"
	}
	if scope == models.ExportScopeAll {
		return title + " (all merged data)"
	}
	return title + " (filtered)"
}

func jobResponse(job *models.ExportJob) *dto.ExportJobResponse {
	return &dto.ExportJobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Format:    job.Format,
		Scope:     job.Scope,
		Rows:      job.Rows,
		ResultURL: job.ResultURL,
		ExpiresAt: job.ExpiresAt,
		Error:     job.ErrorMessage,
	}
}
