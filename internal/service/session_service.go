package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

const (
	defaultPageSize = 50
)

type sessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	DeleteExpired(ctx context.Context) int
	Count() int
}

type batchIngester interface {
	Ingest(ctx context.Context, uploads []Upload) (*IngestResult, error)
}

// SessionView is a derived dataset of one session.
type SessionView struct {
	Session     *models.Session
	Schema      models.ScreenSchema
	Data        tabular.Dataset
	Diagnostics []models.Diagnostic
}

// SessionService owns upload batches and evaluates views over them. Each
// session keeps its own merged dataset; nothing is shared across sessions.
type SessionService struct {
	repo      sessionStore
	ingest    batchIngester
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(repo sessionStore, ingest batchIngester, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, ingest: ingest, metrics: metrics, validator: validate, logger: logger}
}

// Screens lists the available screen schemas.
func (s *SessionService) Screens() []models.ScreenSchema {
	return models.Screens()
}

// Create ingests an upload batch into a new session for screen.
func (s *SessionService) Create(ctx context.Context, screen string, uploads []Upload) (*dto.SessionResponse, error) {
	schema, ok := models.LookupScreen(screen)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown screen %q", screen))
	}
	result, err := s.ingest.Ingest(ctx, uploads)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:          uuid.NewString(),
		Screen:      schema.ID,
		Merged:      result.Merged,
		Sources:     result.Sources,
		Diagnostics: result.Diagnostics,
	}
	if result.Parsed > 0 {
		for _, col := range schema.Columns {
			if !result.Merged.Has(col) {
				session.Diagnostics = append(session.Diagnostics, models.Diagnostic{
					Kind:    models.DiagnosticSchemaWarning,
					Level:   models.LevelWarning,
					Scope:   col,
					Message: fmt.Sprintf("'%s' column not found", col),
				})
			}
		}
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	s.metrics.SetActiveSessions(s.repo.Count())
	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("screen", string(schema.ID)),
		zap.Int("rows", session.Merged.Len()),
		zap.Int("files_failed", result.Failed),
	)
	return sessionResponse(session), nil
}

// Get returns session metadata and per-file reports.
func (s *SessionService) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

// Query evaluates the cascade, search and page of a session.
func (s *SessionService) Query(ctx context.Context, id string, req dto.QueryRequest) (*dto.QueryResponse, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query payload")
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	schema, _ := models.LookupScreen(string(session.Screen))

	cascade, err := BuildCascade(session.Merged, schema, req.Selections)
	if err != nil {
		return nil, nil, err
	}
	searched := ApplySearch(cascade.Filtered, req.Search)

	diagnostics := cascade.Diagnostics
	if d := EmptyResultDiagnostic(searched, req.Search); d != nil {
		diagnostics = append(diagnostics, *d)
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	rows := searched.Slice((page-1)*size, size)

	var distributions map[string][]models.ValueCount
	if len(schema.DistributionColumns) > 0 {
		distributions = make(map[string][]models.ValueCount, len(schema.DistributionColumns))
		for _, col := range schema.DistributionColumns {
			if counts := Distribution(searched, col); len(counts) > 0 {
				distributions[col] = counts
			}
		}
	}

	resp := &dto.QueryResponse{
		SessionID:     session.ID,
		Screen:        session.Screen,
		Stages:        cascade.Stages,
		Columns:       searched.Columns,
		Rows:          rows.Records,
		Summary:       Summarize(session.Merged, cascade.Filtered, searched, session.FilesMerged()),
		Statistics:    Statistics(searched, schema.StatColumns),
		Distributions: distributions,
		ActiveFilters: ActiveFilters(cascade.Stages),
		Diagnostics:   diagnostics,
	}
	return resp, &models.Pagination{Page: page, PageSize: size, TotalCount: searched.Len()}, nil
}

// View returns the dataset to export: the whole merge for scope all, else the
// cascade and search applied.
func (s *SessionService) View(ctx context.Context, id string, selections map[string][]string, search string, scope models.ExportScope) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	schema, _ := models.LookupScreen(string(session.Screen))
	view := &SessionView{Session: session, Schema: schema}
	if scope == models.ExportScopeAll {
		view.Data = session.Merged
		return view, nil
	}
	filtered, diags, err := ApplyCascade(session.Merged, schema, selections)
	if err != nil {
		return nil, err
	}
	view.Data = ApplySearch(filtered, search)
	view.Diagnostics = diags
	return view, nil
}

// PurgeExpired drops idle sessions and returns how many were removed.
func (s *SessionService) PurgeExpired(ctx context.Context) int {
	removed := s.repo.DeleteExpired(ctx)
	s.metrics.SetActiveSessions(s.repo.Count())
	if removed > 0 {
		s.logger.Info("expired sessions purged", zap.Int("removed", removed))
	}
	return removed
}

func (s *SessionService) load(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, repository.ErrSessionNotFound):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	case errors.Is(err, repository.ErrSessionExpired):
		return nil, appErrors.ErrSessionExpired
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
}

func sessionResponse(session *models.Session) *dto.SessionResponse {
	merged := session.FilesMerged()
	return &dto.SessionResponse{
		ID:           session.ID,
		Screen:       session.Screen,
		Columns:      session.Merged.Columns,
		TotalRecords: session.Merged.Len(),
		FilesMerged:  merged,
		FilesFailed:  len(session.Sources) - merged,
		Sources:      session.Sources,
		Diagnostics:  session.Diagnostics,
		CreatedAt:    session.CreatedAt,
		ExpiresAt:    session.ExpiresAt,
	}
}
